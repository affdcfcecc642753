package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/lia-server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "lia-token", c.GetSessionCookieName())
	require.Equal(t, 30*24*time.Hour, c.GetSessionTTL())
	require.False(t, c.GetAllowAccountCreation())
	require.Equal(t, "root", c.GetRootUser())
	require.Equal(t, "root", c.GetRootPassword())
	require.False(t, c.GetRecreateRoot())
	require.Equal(t, config.StoreDriverSQLite, c.GetStoreDriver())
	require.Equal(t, 16, c.GetEventsReplaySize())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5173"))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_TTL", "60")
	t.Setenv("ALLOW_ACCOUNT_CREATION", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	c := config.New()
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, time.Minute, c.GetSessionTTL())
	require.True(t, c.GetAllowAccountCreation())
	require.Equal(t, "https://a.example, https://b.example", c.GetAllowedOrigins().String())
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("EVENTS_REPLAY", "-3")

	c := config.New()
	require.Equal(t, 30*24*time.Hour, c.GetSessionTTL())
	require.Equal(t, 16, c.GetEventsReplaySize())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lia.yaml")
	err := os.WriteFile(path, []byte(`
port: "7000"
security:
  session_ttl: 120
  allow_account_creation: true
bootstrap:
  root_user: admin
store:
  driver: memory
events:
  replay: 4
`), 0o600)
	require.NoError(t, err)

	c, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7000", c.GetPort())
	require.Equal(t, 2*time.Minute, c.GetSessionTTL())
	require.True(t, c.GetAllowAccountCreation())
	require.Equal(t, "admin", c.GetRootUser())
	require.Equal(t, config.StoreDriverMemory, c.GetStoreDriver())
	require.Equal(t, 4, c.GetEventsReplaySize())

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv("ROOT_USER", "envroot")
		c, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "envroot", c.GetRootUser())
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
