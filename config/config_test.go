package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does not
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "APP_VERSION", "APP_SHUTDOWN_TIMEOUT",
		"ROSTER_SOURCE", "ROSTER_FILE", "ROSTER_LOAD_TIMEOUT",
		"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"DB_MAX_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_DISABLED",
		"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT", "EVENTS_CHANNEL",
		"FEATURE_MIGRATE_ON_START", "FEATURE_ASYNC_EVENTS",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, RosterSourceNone, cfg.Roster.Source)
	assert.True(t, cfg.Redis.Disabled)
	assert.Equal(t, "campus-records:events", cfg.Redis.Channel)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, "text", cfg.Observability.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.Roster.LoadTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileImpliesFileSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROSTER_FILE", "roster.yaml")

	cfg, err := LoadFrom(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, RosterSourceFile, cfg.Roster.Source)
	assert.Equal(t, "roster.yaml", cfg.Roster.File)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROSTER_SOURCE", "POSTGRES")
	t.Setenv("DB_HOST", "db.campus")
	t.Setenv("DB_USER", "reader")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := LoadFrom(noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, RosterSourcePostgres, cfg.Roster.Source)
	assert.Equal(t, "postgres://reader:pw@db.campus:5432/sis?sslmode=require", cfg.Database.URL)
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"file without path":    {"ROSTER_SOURCE": "file"},
		"postgres without url": {"ROSTER_SOURCE": "postgres"},
		"unknown source":       {"ROSTER_SOURCE": "ldap"},
		"bad redis port":       {"REDIS_DISABLED": "false", "REDIS_PORT": "70000"},
		"unknown log format":   {"LOG_FORMAT": "xml"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}

			_, err := LoadFrom(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.Unsetenv("APP_NAME"))
	t.Cleanup(func() { _ = os.Unsetenv("APP_NAME") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=registrar-test\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "registrar-test", cfg.App.Name)
}

func TestLoad_EnvironmentBeatsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=error\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}
