package users_test

import (
	"strings"
	"testing"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/users"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	p, err := users.NewPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Len(t, p.Salt, 64)
	require.Len(t, p.Hashed, 64)

	require.True(t, p.Verify("correct horse battery staple"))
	require.False(t, p.Verify("correct horse battery stapler"))
	require.False(t, p.Verify(""))
}

func TestPasswordSaltIsRandom(t *testing.T) {
	a, err := users.NewPassword("same")
	require.NoError(t, err)
	b, err := users.NewPassword("same")
	require.NoError(t, err)

	require.NotEqual(t, a.Salt, b.Salt)
	require.NotEqual(t, a.Hashed, b.Hashed)
}

func TestPasswordLengthLimit(t *testing.T) {
	t.Run("512 bytes accepted", func(t *testing.T) {
		max := strings.Repeat("a", users.MaxPasswordLength)
		p, err := users.NewPassword(max)
		require.NoError(t, err)
		require.True(t, p.Verify(max))
	})

	t.Run("513 bytes rejected on create", func(t *testing.T) {
		_, err := users.NewPassword(strings.Repeat("a", users.MaxPasswordLength+1))
		require.ErrorIs(t, err, apperrors.ErrPasswordTooLong)
		require.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("513 bytes fails closed on verify", func(t *testing.T) {
		p, err := users.NewPassword("short")
		require.NoError(t, err)
		require.False(t, p.Verify(strings.Repeat("a", users.MaxPasswordLength+1)))
	})
}

func TestPasswordCorruptStoredValue(t *testing.T) {
	require.False(t, users.Password{Hashed: "zz", Salt: "00"}.Verify("x"))
	require.False(t, users.Password{Hashed: "00", Salt: "zz"}.Verify("x"))
	require.False(t, users.Password{}.Verify(""))
}
