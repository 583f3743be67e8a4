package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DEV_DB_DRIVER", "sqlite")
	t.Setenv("CANCELLATION_WINDOW_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Booking.CancellationWindow)
	assert.Equal(t, "TransporteUNI S.A.", cfg.Seed.CompanyName)
	assert.Equal(t, "0 3 * * *", cfg.Scheduler.TokenCleanupSpec)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
	assert.Same(t, cfg, AppConfig)
}

func TestLoad_ModePrefixedSettings(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_DB_DRIVER", "Postgres")
	t.Setenv("PROD_JWT_SECRET", "prod-secret")
	t.Setenv("CANCELLATION_WINDOW_MINUTES", "45")
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "prod-secret", cfg.JWT.Secret)
	assert.Equal(t, 45*time.Minute, cfg.Booking.CancellationWindow)
	assert.True(t, cfg.Seed.DemoData)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid APP_MODE")

	t.Setenv("APP_MODE", "dev")
	t.Setenv("DEV_DB_DRIVER", "oracle")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid DB_DRIVER")
}

func TestBuildDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := buildDialector(DatabaseConfig{Driver: driver, Host: "localhost", Port: "1", User: "u", DBName: "transporteuni"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := buildDialector(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)

	assert.Equal(t, "transporteuni.db", sqliteDSN(DatabaseConfig{DBName: "transporteuni"}))
	assert.Equal(t, "file::memory:", sqliteDSN(DatabaseConfig{DSN: "file::memory:"}))
}
