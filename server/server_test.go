package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/lia-server/server"
	"github.com/jrsteele09/lia-server/sessions"
	"github.com/jrsteele09/lia-server/users"
	"github.com/stretchr/testify/require"
)

func TestRootUserBootstrap(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	root, err := f.userRepo.GetByUsername(ctx, rootUsername)
	require.NoError(t, err)
	require.True(t, root.Admin)
	require.True(t, root.CheckPassword(rootPassword))

	t.Run("existing root is kept", func(t *testing.T) {
		f.newServer(t)
		again, err := f.userRepo.GetByUsername(ctx, rootUsername)
		require.NoError(t, err)
		require.Equal(t, root.ID, again.ID)
	})

	t.Run("non-admin root is promoted", func(t *testing.T) {
		demoted := *root
		demoted.Admin = false
		require.NoError(t, f.userRepo.Upsert(ctx, &demoted))

		f.newServer(t)
		again, err := f.userRepo.GetByUsername(ctx, rootUsername)
		require.NoError(t, err)
		require.Equal(t, root.ID, again.ID)
		require.True(t, again.Admin)
	})

	t.Run("recreate replaces root", func(t *testing.T) {
		f.config.recreateRoot = true
		defer func() { f.config.recreateRoot = false }()

		f.newServer(t)
		again, err := f.userRepo.GetByUsername(ctx, rootUsername)
		require.NoError(t, err)
		require.NotEqual(t, root.ID, again.ID)
		require.True(t, again.Admin)

		_, err = f.userRepo.GetByID(ctx, root.ID)
		require.Error(t, err)
	})
}

func TestRoutesRegistered(t *testing.T) {
	f := setupTestFixture(t)
	routes := f.server.Routes()

	for _, want := range []string{
		"GET " + server.RouteAuthSession,
		"POST " + server.RouteAuthLogin,
		"GET " + server.RouteUserLists,
		"POST " + server.RouteListItem,
		"DELETE " + server.RouteList,
		"POST " + server.RouteInviteAccount,
		"GET " + server.RouteEvents,
		server.RouteNotFound,
	} {
		require.Contains(t, routes, want)
	}
}

func TestRoot(t *testing.T) {
	f := setupTestFixture(t)
	c := f.newClient(t)

	status, body := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body)

	for _, tt := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/grocery/lists/x"},
		{http.MethodGet, "/user/unknown"},
		{http.MethodPost, "/nope"},
		{http.MethodDelete, "/user"},
	} {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			body := c.requireError(tt.method, tt.path, nil, http.StatusNotFound, "not_found")
			require.Equal(t, "not found", body["error_description"])
		})
	}
}

func TestCORS(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("preflight from an allowed origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, f.httpServer.URL+"/grocery/lists/create", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
		require.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Methods"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, f.httpServer.URL+"/auth/session", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://evil.example")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight on an unrouted path", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, f.httpServer.URL+"/nope", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight without origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, f.httpServer.URL+"/user", nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestNewRequiresRepos(t *testing.T) {
	f := setupTestFixture(t)
	repos := f.repos
	repos.Invites = nil

	_, err := server.New(context.Background(), f.config, repos, f.bus)
	require.Error(t, err)
}

func TestDanglingUserIsDemoted(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.createUser(t, "bob")
	c := f.loggedIn(t, "bob", testPassword)

	var user users.RedactedUser
	c.doJSON(http.MethodGet, "/user", nil, http.StatusOK, &user)
	require.NoError(t, f.userRepo.Delete(ctx, user.ID))

	c.requireError(http.MethodGet, "/user", nil, http.StatusUnauthorized, "unauthorized")

	var session sessions.Session
	c.doJSON(http.MethodGet, "/auth/session", nil, http.StatusOK, &session)
	require.Empty(t, session.UserID)
}
