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
		"SELLERHUB_APP_NAME":                os.Getenv("SELLERHUB_APP_NAME"),
		"SELLERHUB_APP_ENV":                 os.Getenv("SELLERHUB_APP_ENV"),
		"SELLERHUB_APP_PORT":                os.Getenv("SELLERHUB_APP_PORT"),
		"SELLERHUB_DATABASE_HOST":           os.Getenv("SELLERHUB_DATABASE_HOST"),
		"SELLERHUB_DATABASE_PORT":           os.Getenv("SELLERHUB_DATABASE_PORT"),
		"SELLERHUB_DATABASE_USER":           os.Getenv("SELLERHUB_DATABASE_USER"),
		"SELLERHUB_DATABASE_PASSWORD":       os.Getenv("SELLERHUB_DATABASE_PASSWORD"),
		"SELLERHUB_DATABASE_DBNAME":         os.Getenv("SELLERHUB_DATABASE_DBNAME"),
		"SELLERHUB_DATABASE_SSLMODE":        os.Getenv("SELLERHUB_DATABASE_SSLMODE"),
		"SELLERHUB_DATABASE_MAX_OPEN_CONNS": os.Getenv("SELLERHUB_DATABASE_MAX_OPEN_CONNS"),
		"SELLERHUB_DATABASE_MAX_IDLE_CONNS": os.Getenv("SELLERHUB_DATABASE_MAX_IDLE_CONNS"),
		"SELLERHUB_QUEUE_MAX_RETRIES":       os.Getenv("SELLERHUB_QUEUE_MAX_RETRIES"),
		"SELLERHUB_SYNC_ORDER_INTERVAL":     os.Getenv("SELLERHUB_SYNC_ORDER_INTERVAL"),
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

		assert.Equal(t, "sellerhub-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "sellerhub", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)

		assert.Equal(t, 15*time.Minute, cfg.Sync.OrderInterval)
		assert.Equal(t, time.Minute, cfg.Sync.StoreStagger)
		assert.Equal(t, 100, cfg.Sync.PageLimit)
		assert.Equal(t, 7*24*time.Hour, cfg.Sync.Lookback)

		assert.Equal(t, 3, cfg.Queue.Workers)
		assert.Equal(t, 3, cfg.Queue.MaxRetries)
		assert.Equal(t, 10*time.Second, cfg.Queue.BackoffBase)

		assert.Equal(t, 30, cfg.Marketplace.TimeoutSeconds)
	})

	t.Run("loads values from environment variables with SELLERHUB prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SELLERHUB_APP_NAME", "test-app")
		os.Setenv("SELLERHUB_APP_ENV", "testing")
		os.Setenv("SELLERHUB_APP_PORT", "9000")
		os.Setenv("SELLERHUB_DATABASE_HOST", "testdb.local")
		os.Setenv("SELLERHUB_DATABASE_PORT", "5433")
		os.Setenv("SELLERHUB_DATABASE_USER", "testuser")
		os.Setenv("SELLERHUB_DATABASE_PASSWORD", "testpass")
		os.Setenv("SELLERHUB_DATABASE_DBNAME", "testdb")
		os.Setenv("SELLERHUB_DATABASE_SSLMODE", "require")
		os.Setenv("SELLERHUB_SYNC_ORDER_INTERVAL", "5m")
		os.Setenv("SELLERHUB_QUEUE_MAX_RETRIES", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 5*time.Minute, cfg.Sync.OrderInterval)
		assert.Equal(t, 5, cfg.Queue.MaxRetries)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SELLERHUB_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SELLERHUB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("SELLERHUB_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("SELLERHUB_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SELLERHUB_APP_ENV":                  os.Getenv("SELLERHUB_APP_ENV"),
		"SELLERHUB_DATABASE_PASSWORD":        os.Getenv("SELLERHUB_DATABASE_PASSWORD"),
		"SELLERHUB_DATABASE_SSLMODE":         os.Getenv("SELLERHUB_DATABASE_SSLMODE"),
		"SELLERHUB_CRYPTO_CREDENTIAL_KEY":    os.Getenv("SELLERHUB_CRYPTO_CREDENTIAL_KEY"),
		"SELLERHUB_MARKETPLACE_AUTH_URL":     os.Getenv("SELLERHUB_MARKETPLACE_AUTH_URL"),
		"SELLERHUB_MARKETPLACE_API_BASE_URL": os.Getenv("SELLERHUB_MARKETPLACE_API_BASE_URL"),
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
		os.Setenv("SELLERHUB_APP_ENV", "production")
		os.Setenv("SELLERHUB_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SELLERHUB_DATABASE_SSLMODE", "require")
		os.Setenv("SELLERHUB_CRYPTO_CREDENTIAL_KEY", "aSBhbSBhIHZlcnkgc2VjdXJlIDMyIGJ5dGUga2V5IQ==")
		os.Setenv("SELLERHUB_MARKETPLACE_AUTH_URL", "https://auth.marketplace.example/token")
		os.Setenv("SELLERHUB_MARKETPLACE_API_BASE_URL", "https://api.marketplace.example")
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SELLERHUB_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("SELLERHUB_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires credential key in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SELLERHUB_CRYPTO_CREDENTIAL_KEY")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "crypto.credential_key is required in production")
	})

	t.Run("requires marketplace endpoints in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("SELLERHUB_MARKETPLACE_AUTH_URL")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "marketplace.auth_url")
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
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.local", Port: 6380}
	assert.Equal(t, "cache.local:6380", cfg.Addr())
}
