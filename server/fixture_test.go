package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/lia-server/events"
	fakefavoriterepo "github.com/jrsteele09/lia-server/favorites/repofake"
	"github.com/jrsteele09/lia-server/internal/config"
	fakeinviterepo "github.com/jrsteele09/lia-server/invites/repofake"
	"github.com/jrsteele09/lia-server/lists"
	fakelistrepo "github.com/jrsteele09/lia-server/lists/repofake"
	"github.com/jrsteele09/lia-server/server"
	fakesessionrepo "github.com/jrsteele09/lia-server/sessions/repofakes"
	"github.com/jrsteele09/lia-server/users"
	fakeuserrepo "github.com/jrsteele09/lia-server/users/repofake"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	rootUsername = "root"
	rootPassword = "root-password"
	testPassword = "correct horse battery staple"
	testTTL      = time.Hour
)

// testConfig pins the settings the tests depend on regardless of the
// environment the tests run in.
type testConfig struct {
	config.Config
	allowAccountCreation bool
	recreateRoot         bool
}

func (testConfig) GetEnv() string                  { return "TEST" }
func (testConfig) GetSessionTTL() time.Duration    { return testTTL }
func (testConfig) GetSessionCookieName() string    { return "lia-token" }
func (testConfig) GetRootUser() string             { return rootUsername }
func (testConfig) GetRootPassword() string         { return rootPassword }
func (c testConfig) GetAllowAccountCreation() bool { return c.allowAccountCreation }
func (c testConfig) GetRecreateRoot() bool         { return c.recreateRoot }
func (testConfig) GetAllowedOrigins() config.AllowedOrigins {
	return config.AllowedOrigins{"http://localhost:5173": {}}
}

// testFixture holds all test dependencies
type testFixture struct {
	now         time.Time
	config      testConfig
	userRepo    *fakeuserrepo.FakeUserRepo
	sessionRepo *fakesessionrepo.FakeSessionRepo
	listRepo    *fakelistrepo.FakeListRepo
	inviteRepo  *fakeinviterepo.FakeInviteRepo
	repos       server.Repos
	bus         *events.MemBus
	reader      *sdkmetric.ManualReader
	meter       *sdkmetric.MeterProvider
	server      *server.Server
	httpServer  *httptest.Server
}

type fixtureOption func(*testFixture)

func withAccountCreation() fixtureOption {
	return func(f *testFixture) { f.config.allowAccountCreation = true }
}

// setupTestFixture creates a running test server over in-memory repos
func setupTestFixture(t *testing.T, options ...fixtureOption) *testFixture {
	t.Helper()

	f := &testFixture{
		now:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		config:      testConfig{Config: config.New()},
		userRepo:    fakeuserrepo.NewFakeUserRepo(),
		sessionRepo: fakesessionrepo.NewFakeSessionRepo(),
		listRepo:    fakelistrepo.NewFakeListRepo(),
		inviteRepo:  fakeinviterepo.NewFakeInviteRepo(),
		reader:      sdkmetric.NewManualReader(),
	}
	for _, opt := range options {
		opt(f)
	}
	f.meter = sdkmetric.NewMeterProvider(sdkmetric.WithReader(f.reader))
	f.repos = server.Repos{
		Users:     f.userRepo,
		Sessions:  f.sessionRepo,
		Lists:     f.listRepo,
		Items:     fakelistrepo.NewFakeItemRepo(),
		Invites:   f.inviteRepo,
		Joined:    fakeinviterepo.NewFakeJoinedRepo(),
		Favorites: fakefavoriterepo.NewFakeFavoriteRepo(),
	}

	var err error
	f.bus, err = events.NewMemBus(events.MemBusConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.bus.Close() })

	f.server = f.newServer(t)
	f.httpServer = httptest.NewServer(f.server)
	t.Cleanup(f.httpServer.Close)
	return f
}

func (f *testFixture) newServer(t *testing.T, options ...server.ServerOption) *server.Server {
	t.Helper()
	options = append([]server.ServerOption{
		server.WithNowTime(func() time.Time { return f.now }),
		server.WithMeter(f.meter.Meter("test")),
	}, options...)

	s, err := server.New(context.Background(), f.config, f.repos, f.bus, options...)
	require.NoError(t, err)
	return s
}

// createUser stores a non-admin user directly in the repo.
func (f *testFixture) createUser(t *testing.T, username string) *users.User {
	t.Helper()
	user, err := users.New(username, testPassword, false)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Upsert(context.Background(), user))
	return user
}

// testClient is an HTTP client with its own cookie jar, standing in for one browser.
type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (f *testFixture) newClient(t *testing.T) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: f.httpServer.URL, client: &http.Client{Jar: jar}}
}

// loggedIn returns a client whose session is logged in as username.
func (f *testFixture) loggedIn(t *testing.T, username, password string) *testClient {
	t.Helper()
	c := f.newClient(t)
	status, body := c.do(http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status, string(body))
	return c
}

func (c *testClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

// doJSON performs a request, requires wantStatus and decodes the body into out.
func (c *testClient) doJSON(method, path string, body any, wantStatus int, out any) {
	c.t.Helper()
	status, data := c.do(method, path, body)
	require.Equal(c.t, wantStatus, status, string(data))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(data, out))
	}
}

// requireError checks the status and machine readable code of an error response.
func (c *testClient) requireError(method, path string, body any, wantStatus int, wantCode string) map[string]string {
	c.t.Helper()
	status, data := c.do(method, path, body)
	require.Equal(c.t, wantStatus, status, string(data))

	var errBody map[string]string
	require.NoError(c.t, json.Unmarshal(data, &errBody))
	require.Equal(c.t, wantCode, errBody["error"])
	return errBody
}

func (c *testClient) sessionCookie() *http.Cookie {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base, nil)
	require.NoError(c.t, err)
	for _, cookie := range c.client.Jar.Cookies(req.URL) {
		if cookie.Name == "lia-token" {
			return cookie
		}
	}
	return nil
}

func (c *testClient) createList(name string) *lists.GroceryList {
	c.t.Helper()
	var list lists.GroceryList
	c.doJSON(http.MethodPost, "/grocery/lists/create",
		map[string]any{"name": name, "stores": []string{"wegmans"}, "type": "grocery"},
		http.StatusCreated, &list)
	return &list
}
