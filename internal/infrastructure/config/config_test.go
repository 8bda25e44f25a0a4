package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"POSGW_APP_NAME":                os.Getenv("POSGW_APP_NAME"),
		"POSGW_APP_ENV":                 os.Getenv("POSGW_APP_ENV"),
		"POSGW_APP_PORT":                os.Getenv("POSGW_APP_PORT"),
		"POSGW_DATABASE_HOST":           os.Getenv("POSGW_DATABASE_HOST"),
		"POSGW_DATABASE_PORT":           os.Getenv("POSGW_DATABASE_PORT"),
		"POSGW_DATABASE_USER":           os.Getenv("POSGW_DATABASE_USER"),
		"POSGW_DATABASE_PASSWORD":       os.Getenv("POSGW_DATABASE_PASSWORD"),
		"POSGW_DATABASE_DBNAME":         os.Getenv("POSGW_DATABASE_DBNAME"),
		"POSGW_DATABASE_SSLMODE":        os.Getenv("POSGW_DATABASE_SSLMODE"),
		"POSGW_DATABASE_MAX_OPEN_CONNS": os.Getenv("POSGW_DATABASE_MAX_OPEN_CONNS"),
		"POSGW_DATABASE_MAX_IDLE_CONNS": os.Getenv("POSGW_DATABASE_MAX_IDLE_CONNS"),
		"POSGW_JWT_SECRET":              os.Getenv("POSGW_JWT_SECRET"),
		"POSGW_POLICY_CACHE_TTL":        os.Getenv("POSGW_POLICY_CACHE_TTL"),
		"POSGW_IDEMPOTENCY_RETENTION":   os.Getenv("POSGW_IDEMPOTENCY_RETENTION"),
		"POSGW_RECONCILE_SERVICE_ROLE":  os.Getenv("POSGW_RECONCILE_SERVICE_ROLE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pos-gateway", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "posgw", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30*time.Second, cfg.Policy.CacheTTL)
		assert.Equal(t, 48*time.Hour, cfg.Idempotency.Retention)
		assert.Equal(t, "POS User", cfg.Reconcile.ServiceRole)
	})

	t.Run("loads values from environment variables with POSGW prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("POSGW_APP_NAME", "test-app")
		os.Setenv("POSGW_APP_PORT", "9000")
		os.Setenv("POSGW_DATABASE_HOST", "testdb.local")
		os.Setenv("POSGW_DATABASE_PORT", "5433")
		os.Setenv("POSGW_POLICY_CACHE_TTL", "10s")
		os.Setenv("POSGW_IDEMPOTENCY_RETENTION", "72h")
		os.Setenv("POSGW_RECONCILE_SERVICE_ROLE", "POS Service")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 10*time.Second, cfg.Policy.CacheTTL)
		assert.Equal(t, 72*time.Hour, cfg.Idempotency.Retention)
		assert.Equal(t, "POS Service", cfg.Reconcile.ServiceRole)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("POSGW_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("POSGW_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("POSGW_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"POSGW_APP_ENV":                                os.Getenv("POSGW_APP_ENV"),
		"POSGW_JWT_SECRET":                             os.Getenv("POSGW_JWT_SECRET"),
		"POSGW_DATABASE_PASSWORD":                      os.Getenv("POSGW_DATABASE_PASSWORD"),
		"POSGW_DATABASE_SSLMODE":                       os.Getenv("POSGW_DATABASE_SSLMODE"),
		"POSGW_DISCOVERY_ALLOW_CLIENT_SECRET_RESPONSE": os.Getenv("POSGW_DISCOVERY_ALLOW_CLIENT_SECRET_RESPONSE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	setValidProductionBase := func() {
		os.Setenv("POSGW_APP_ENV", "production")
		os.Setenv("POSGW_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("POSGW_DATABASE_PASSWORD", "secure-password")
		os.Setenv("POSGW_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("POSGW_APP_ENV", "production")
		os.Setenv("POSGW_DATABASE_PASSWORD", "secure-password")
		os.Setenv("POSGW_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("POSGW_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("POSGW_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires secret material when secret response enabled", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("POSGW_DISCOVERY_ALLOW_CLIENT_SECRET_RESPONSE", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oauth_client_secret")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "pass%40word%23123")
	})
}
