package server_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/lia-server/invites"
	"github.com/jrsteele09/lia-server/sessions"
	"github.com/jrsteele09/lia-server/users"
	"github.com/stretchr/testify/require"
)

func TestSessionEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	c := f.newClient(t)

	var first sessions.Session
	c.doJSON(http.MethodGet, "/auth/session", nil, http.StatusOK, &first)
	require.Len(t, first.ID, 22)
	require.Empty(t, first.UserID)

	cookie := c.sessionCookie()
	require.NotNil(t, cookie)
	require.Equal(t, first.ID, cookie.Value)

	t.Run("known cookie is reused", func(t *testing.T) {
		var again sessions.Session
		c.doJSON(http.MethodGet, "/auth/session", nil, http.StatusOK, &again)
		require.Equal(t, first.ID, again.ID)
	})

	t.Run("expired session is replaced", func(t *testing.T) {
		f.now = f.now.Add(testTTL + time.Minute)

		var fresh sessions.Session
		c.doJSON(http.MethodGet, "/auth/session", nil, http.StatusOK, &fresh)
		require.NotEqual(t, first.ID, fresh.ID)
		require.Equal(t, fresh.ID, c.sessionCookie().Value)

		_, err := f.sessionRepo.Get(context.Background(), first.ID)
		require.Error(t, err)
	})
}

func TestGuardedRequestWithExpiredSession(t *testing.T) {
	f := setupTestFixture(t)
	c := f.loggedIn(t, rootUsername, rootPassword)
	expired := c.sessionCookie().Value

	f.now = f.now.Add(testTTL + time.Second)

	body := c.requireError(http.MethodGet, "/user", nil, http.StatusUnauthorized, "unauthorized")
	require.Contains(t, body["error_description"], "session expired")
	_, err := f.sessionRepo.Get(context.Background(), expired)
	require.Error(t, err)

	// The next request is issued a fresh anonymous session rather than failing on the dead token.
	body = c.requireError(http.MethodGet, "/user", nil, http.StatusUnauthorized, "unauthorized")
	require.Contains(t, body["error_description"], "not logged in")
	require.NotEqual(t, expired, c.sessionCookie().Value)
}

func TestLoginLogout(t *testing.T) {
	f := setupTestFixture(t)
	c := f.newClient(t)

	c.requireError(http.MethodGet, "/user", nil, http.StatusUnauthorized, "unauthorized")

	var user users.RedactedUser
	c.doJSON(http.MethodPost, "/auth/login", map[string]string{"username": rootUsername, "password": rootPassword}, http.StatusOK, &user)
	require.Equal(t, rootUsername, user.Username)
	require.True(t, user.Admin)

	var me users.RedactedUser
	c.doJSON(http.MethodGet, "/user", nil, http.StatusOK, &me)
	require.Equal(t, user, me)

	session := c.sessionCookie().Value
	status, _ := c.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, status)

	c.requireError(http.MethodGet, "/user", nil, http.StatusUnauthorized, "unauthorized")
	require.Equal(t, session, c.sessionCookie().Value, "logout keeps the session")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := setupTestFixture(t)
	c := f.newClient(t)

	unknown := c.requireError(http.MethodPost, "/auth/login",
		map[string]string{"username": "mallory", "password": rootPassword}, http.StatusNotFound, "not_found")
	wrong := c.requireError(http.MethodPost, "/auth/login",
		map[string]string{"username": rootUsername, "password": "nope"}, http.StatusNotFound, "not_found")
	require.Equal(t, unknown, wrong)

	t.Run("oversized password", func(t *testing.T) {
		c.requireError(http.MethodPost, "/auth/login",
			map[string]string{"username": rootUsername, "password": strings.Repeat("x", 513)}, http.StatusNotFound, "not_found")
	})

	t.Run("malformed body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, c.base+"/auth/login", strings.NewReader("{"))
		require.NoError(t, err)
		resp, err := c.client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateAccount(t *testing.T) {
	t.Run("disabled without invite", func(t *testing.T) {
		f := setupTestFixture(t)
		c := f.newClient(t)
		c.requireError(http.MethodPost, "/auth/create",
			map[string]string{"username": "bob", "password": testPassword}, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("open sign up logs the session in", func(t *testing.T) {
		f := setupTestFixture(t, withAccountCreation())
		c := f.newClient(t)

		var user users.RedactedUser
		c.doJSON(http.MethodPost, "/auth/create",
			map[string]string{"username": "bob", "password": testPassword}, http.StatusCreated, &user)
		require.Equal(t, "bob", user.Username)
		require.False(t, user.Admin)

		var me users.RedactedUser
		c.doJSON(http.MethodGet, "/user", nil, http.StatusOK, &me)
		require.Equal(t, user.ID, me.ID)

		other := f.newClient(t)
		other.requireError(http.MethodPost, "/auth/create",
			map[string]string{"username": "bob", "password": testPassword}, http.StatusConflict, "conflict")
	})

	t.Run("invalid username", func(t *testing.T) {
		f := setupTestFixture(t, withAccountCreation())
		c := f.newClient(t)
		c.requireError(http.MethodPost, "/auth/create",
			map[string]string{"username": " ", "password": testPassword}, http.StatusBadRequest, "invalid_request")
	})

	t.Run("single use invite", func(t *testing.T) {
		f := setupTestFixture(t)
		admin := f.loggedIn(t, rootUsername, rootPassword)

		var invite invites.Invite
		admin.doJSON(http.MethodPost, "/invites/account_creation?uses=1", nil, http.StatusCreated, &invite)
		require.Equal(t, invites.KindAccount, invite.Kind)
		require.Equal(t, 1, *invite.Account.UsesRemaining)

		c := f.newClient(t)
		c.doJSON(http.MethodPost, "/auth/create",
			map[string]any{"username": "bob", "password": testPassword, "invite": invite.URI}, http.StatusCreated, nil)

		late := f.newClient(t)
		late.requireError(http.MethodPost, "/auth/create",
			map[string]any{"username": "carol", "password": testPassword, "invite": invite.URI}, http.StatusNotFound, "not_found")
	})

	t.Run("expired invite", func(t *testing.T) {
		f := setupTestFixture(t)
		admin := f.loggedIn(t, rootUsername, rootPassword)

		expires := f.now.Add(time.Hour).Format(time.RFC3339)
		var invite invites.Invite
		admin.doJSON(http.MethodPost, "/invites/account_creation?expires="+expires, nil, http.StatusCreated, &invite)

		f.now = f.now.Add(2 * time.Hour)
		c := f.newClient(t)
		c.requireError(http.MethodPost, "/auth/create",
			map[string]any{"username": "bob", "password": testPassword, "invite": invite.URI}, http.StatusNotFound, "not_found")
	})
}

func TestAccountInviteRequiresAdmin(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t, "bob")
	c := f.loggedIn(t, "bob", testPassword)

	c.requireError(http.MethodPost, "/invites/account_creation", nil, http.StatusForbidden, "forbidden")

	admin := f.loggedIn(t, rootUsername, rootPassword)
	admin.requireError(http.MethodPost, "/invites/account_creation?uses=many", nil, http.StatusBadRequest, "invalid_request")
	admin.requireError(http.MethodPost, "/invites/account_creation?uses=0", nil, http.StatusBadRequest, "invalid_request")
	admin.requireError(http.MethodPost, "/invites/account_creation?expires=tomorrow", nil, http.StatusBadRequest, "invalid_request")

	var invite invites.Invite
	admin.doJSON(http.MethodPost, "/invites/account_creation", nil, http.StatusCreated, &invite)
	require.Nil(t, invite.Account.UsesRemaining)
	require.Nil(t, invite.Account.Expires)

	t.Run("redeem by type", func(t *testing.T) {
		var redeemed invites.Invite
		c.doJSON(http.MethodGet, "/invites/account/"+invite.URI, nil, http.StatusOK, &redeemed)
		require.Equal(t, invite.ID, redeemed.ID)

		c.requireError(http.MethodGet, "/invites/list/"+invite.URI, nil, http.StatusNotFound, "not_found")
		c.requireError(http.MethodGet, "/invites/bogus/"+invite.URI, nil, http.StatusBadRequest, "invalid_request")
	})
}
