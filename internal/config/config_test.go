package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "DATABASE_URL", "APP_TIMEZONE", "REDIS_ADDR", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.DSN, "dbname=inventory")
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL)
	assert.Empty(t, cfg.Redis.Addr)
	require.NotNil(t, cfg.Inventory.Location)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("JWT_ACCESS_TTL", "1h")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, time.UTC, cfg.Inventory.Location)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
}

func TestInvalidValues(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load("testdata/does-not-exist.env")
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := Load("testdata/does-not-exist.env")
		assert.ErrorContains(t, err, "APP_TIMEZONE")
	})

	t.Run("malformed duration falls back", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		t.Setenv("APP_TIMEZONE", "UTC")
		t.Setenv("REQUEST_TIMEOUT", "soon")
		cfg, err := Load("testdata/does-not-exist.env")
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	})
}
