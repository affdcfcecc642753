package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/lia-server/auth"
	"github.com/jrsteele09/lia-server/events"
	fakefavoriterepo "github.com/jrsteele09/lia-server/favorites/repofake"
	"github.com/jrsteele09/lia-server/invites"
	fakeinviterepo "github.com/jrsteele09/lia-server/invites/repofake"
	"github.com/jrsteele09/lia-server/lists"
	fakelistrepo "github.com/jrsteele09/lia-server/lists/repofake"
	"github.com/jrsteele09/lia-server/sessions"
	fakesessionrepo "github.com/jrsteele09/lia-server/sessions/repofakes"
	"github.com/jrsteele09/lia-server/users"
	fakeuserrepo "github.com/jrsteele09/lia-server/users/repofake"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	testTTL      = time.Hour
	testPassword = "correct horse battery staple"
)

// testFixture holds all test dependencies
type testFixture struct {
	now         time.Time
	userRepo    *fakeuserrepo.FakeUserRepo
	sessionRepo *fakesessionrepo.FakeSessionRepo
	listRepo    *fakelistrepo.FakeListRepo
	inviteRepo  *fakeinviterepo.FakeInviteRepo
	reader      *sdkmetric.ManualReader
	manager     *sessions.Manager
	lists       *lists.Service
	registry    *invites.Registry
	service     *auth.Service
	guard       *auth.Guard
	resolver    *auth.Resolver
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{
		now:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		userRepo:    fakeuserrepo.NewFakeUserRepo(),
		sessionRepo: fakesessionrepo.NewFakeSessionRepo(),
		listRepo:    fakelistrepo.NewFakeListRepo(),
		inviteRepo:  fakeinviterepo.NewFakeInviteRepo(),
		reader:      sdkmetric.NewManualReader(),
	}
	nowTime := func() time.Time { return f.now }

	bus, err := events.NewMemBus(events.MemBusConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	f.manager, err = sessions.NewManager(f.sessionRepo, f.userRepo, testTTL, sessions.WithNowTime(nowTime))
	require.NoError(t, err)

	f.lists, err = lists.NewService(lists.Repos{Lists: f.listRepo, Items: fakelistrepo.NewFakeItemRepo()}, bus)
	require.NoError(t, err)

	f.registry, err = invites.NewRegistry(invites.Repos{
		Invites:   f.inviteRepo,
		Joined:    fakeinviterepo.NewFakeJoinedRepo(),
		Favorites: fakefavoriterepo.NewFakeFavoriteRepo(),
	}, f.lists, invites.WithNowTime(nowTime))
	require.NoError(t, err)

	f.service, err = auth.NewService(f.userRepo, f.manager, f.registry, options...)
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(f.reader))
	f.guard, err = auth.NewGuard(auth.GuardRepos{
		Users:   f.userRepo,
		Lists:   f.listRepo,
		Invites: f.inviteRepo,
	}, f.manager, f.registry, auth.WithMeter(mp.Meter("test")))
	require.NoError(t, err)

	f.resolver, err = auth.NewResolver(f.listRepo, f.inviteRepo)
	require.NoError(t, err)
	return f
}

func (f *testFixture) createUser(t *testing.T, username string, admin bool) *users.User {
	t.Helper()
	user, err := users.New(username, testPassword, admin)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Upsert(context.Background(), user))
	return user
}

// loggedIn returns a session token bound to user.
func (f *testFixture) loggedIn(t *testing.T, user *users.User) string {
	t.Helper()
	ctx := context.Background()
	s, err := f.manager.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, f.manager.Bind(ctx, s, user))
	return s.ID
}

func (f *testFixture) createList(t *testing.T, owner *users.User) *lists.GroceryList {
	t.Helper()
	list, err := f.lists.Create(context.Background(), owner.ID, lists.CreateRequest{
		Name:   "Groceries",
		Stores: []string{"wegmans"},
		Type:   lists.TypeGrocery,
	})
	require.NoError(t, err)
	return list
}
