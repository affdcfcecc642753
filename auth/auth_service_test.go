package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/lia-server/auth"
	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestSessionIssuesAnonymousSessions(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	s, err := f.service.Session(ctx, "")
	require.NoError(t, err)
	require.False(t, s.Authenticated())

	again, err := f.service.Session(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, again.ID)

	unknown, err := f.service.Session(ctx, "not-a-session")
	require.NoError(t, err)
	require.NotEqual(t, "not-a-session", unknown.ID)

	f.now = f.now.Add(testTTL + time.Second)
	fresh, err := f.service.Session(ctx, s.ID)
	require.NoError(t, err)
	require.NotEqual(t, s.ID, fresh.ID)

	_, err = f.manager.Resolve(ctx, s.ID)
	require.ErrorIs(t, err, apperrors.ErrNoSession)
}

func TestLoginTrimsUsername(t *testing.T) {
	f := setupTestFixture(t, auth.WithAccountCreation(true))
	ctx := context.Background()

	s, err := f.service.Session(ctx, "")
	require.NoError(t, err)
	created, err := f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: " alice ", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "alice", created.Username)
	require.NoError(t, f.service.Logout(ctx, s))

	got, err := f.service.Login(ctx, s, auth.LoginRequest{Username: " alice ", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestLoginLogout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "alice", false)

	s, err := f.service.Session(ctx, "")
	require.NoError(t, err)

	_, err = f.service.Login(ctx, s, auth.LoginRequest{Username: "alice"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.service.Login(ctx, s, auth.LoginRequest{Username: "alice", Password: strings.Repeat("a", 513)})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	got, err := f.service.Login(ctx, s, auth.LoginRequest{Username: "alice", Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.ID, s.UserID)

	require.NoError(t, f.service.Logout(ctx, s))
	stored, err := f.manager.Resolve(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, stored.Authenticated())
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without invite", func(t *testing.T) {
		f := setupTestFixture(t)
		s, err := f.service.Session(ctx, "")
		require.NoError(t, err)

		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "bob", Password: testPassword})
		require.ErrorIs(t, err, auth.ErrAccountCreationDisabled)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("open sign up", func(t *testing.T) {
		f := setupTestFixture(t, auth.WithAccountCreation(true))
		s, err := f.service.Session(ctx, "")
		require.NoError(t, err)

		user, err := f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: " bob ", Password: testPassword})
		require.NoError(t, err)
		require.Equal(t, "bob", user.Username)
		require.False(t, user.Admin)
		require.Equal(t, user.ID, s.UserID)

		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "bob", Password: testPassword})
		require.ErrorIs(t, err, apperrors.ErrUsernameTaken)

		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "carol", Password: strings.Repeat("a", 513)})
		require.ErrorIs(t, err, apperrors.ErrPasswordTooLong)
	})

	t.Run("invite uses are spent", func(t *testing.T) {
		f := setupTestFixture(t)
		f.createUser(t, "taken", false)
		invite, err := f.registry.CreateAccountInvite(ctx, utils.Ptr(1), nil)
		require.NoError(t, err)

		s, err := f.service.Session(ctx, "")
		require.NoError(t, err)

		// A username conflict does not consume the invite.
		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "taken", Password: testPassword, Invite: &invite.URI})
		require.ErrorIs(t, err, apperrors.ErrConflict)

		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "dave", Password: testPassword, Invite: &invite.URI})
		require.NoError(t, err)

		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "erin", Password: testPassword, Invite: &invite.URI})
		require.ErrorIs(t, err, apperrors.ErrNotFound)

		_, err = f.service.CreateAccount(ctx, s, auth.CreateAccountRequest{Username: "erin", Password: testPassword, Invite: utils.Ptr("bogus")})
		require.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
