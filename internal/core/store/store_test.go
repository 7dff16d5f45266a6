package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phishnix/phishnix/internal/config"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("MemoryPathPassesThrough", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: ":memory:"})
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})

	t.Run("PlainPathGetsFilePrefix", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "phishnix.db")
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: path})
		require.NoError(t, err)
		require.Equal(t, "file:"+path, dsn)
		require.DirExists(t, filepath.Dir(path))
	})

	t.Run("FileURLKeptAsIs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "phishnix.db")
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: "file:" + path})
		require.NoError(t, err)
		require.Equal(t, "file:"+path, dsn)
	})

	t.Run("LibsqlSchemeKeptAsIs", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: "libsql://db.example.turso.io"})
		require.NoError(t, err)
		require.Equal(t, "libsql://db.example.turso.io", dsn)
	})

	t.Run("URLTakesPrecedenceOverPath", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{
			URL:  "libsql://db.example.turso.io",
			Path: "/ignored.db",
		})
		require.NoError(t, err)
		require.Equal(t, "libsql://db.example.turso.io", dsn)
	})

	t.Run("AuthTokenAppendedToURL", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{
			URL:       "libsql://db.example.turso.io",
			AuthToken: "secret",
		})
		require.NoError(t, err)
		require.Contains(t, dsn, "authToken=secret")
	})

	t.Run("ExistingAuthTokenNotOverwritten", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{
			URL:       "libsql://db.example.turso.io?authToken=original",
			AuthToken: "other",
		})
		require.NoError(t, err)
		require.Contains(t, dsn, "authToken=original")
		require.NotContains(t, dsn, "other")
	})

	t.Run("EmptyConfigRejected", func(t *testing.T) {
		_, err := buildLibsqlDSN(config.StoreConfig{})
		require.Error(t, err)
	})
}

func TestOpenRejectsUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "postgres", Path: ":memory:"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported store driver")
}

func TestExtractFilePath(t *testing.T) {
	path, err := extractFilePath("file:/tmp/phishnix.db")
	require.NoError(t, err)
	require.Equal(t, "/tmp/phishnix.db", path)

	path, err = extractFilePath("file:relative.db")
	require.NoError(t, err)
	require.Equal(t, "relative.db", path)
}
