package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "structured", cfg.Logging.Profile)

	require.Equal(t, "libsql", cfg.Store.Driver)
	require.NotEmpty(t, cfg.Store.Path)

	require.Equal(t, "openai", cfg.Engine.DefaultProvider)
	require.Equal(t, 60*time.Second, cfg.Engine.DefaultTimeout)
	require.Equal(t, "gpt-4o-mini", cfg.Engine.Providers["openai"].Model)
	require.True(t, cfg.Engine.Providers["openai"].Enabled)
	require.False(t, cfg.Engine.Providers["gemini"].Enabled)

	require.False(t, cfg.Intel.Enabled)
	require.Equal(t, 10*time.Second, cfg.Intel.Timeout)
	require.True(t, cfg.Intel.WhoisFallback)

	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, 9090, cfg.Metrics.Port)
	require.Equal(t, 4, cfg.Workers)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  host: 0.0.0.0
  port: 9000
engine:
  default_provider: gemini
  providers:
    gemini:
      enabled: true
intel:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "gemini", cfg.Engine.DefaultProvider)
	require.True(t, cfg.Engine.Providers["gemini"].Enabled)
	require.True(t, cfg.Intel.Enabled)

	// Values the file does not set keep their defaults.
	require.Equal(t, "gemini-2.0-flash", cfg.Engine.Providers["gemini"].Model)
	require.Equal(t, "libsql", cfg.Store.Driver)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PHISHNIX_SERVER_PORT", "7070")
	t.Setenv("PHISHNIX_LOGGING_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("TURSO_AUTH_TOKEN", "turso-token")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "sk-from-env", cfg.Engine.Providers["openai"].APIKey)
	require.Equal(t, "turso-token", cfg.Store.AuthToken)
}

func TestLoadRejectsBadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestGetConfigTracksLastLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Same(t, cfg, GetConfig())
}

func TestDefaultStorePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := DefaultStorePath()
	require.Contains(t, path, "phishnix")
	require.Equal(t, "phishnix.db", filepath.Base(path))
}
