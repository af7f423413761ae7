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
		"SHIPPING_APP_NAME":                os.Getenv("SHIPPING_APP_NAME"),
		"SHIPPING_APP_ENV":                 os.Getenv("SHIPPING_APP_ENV"),
		"SHIPPING_APP_PORT":                os.Getenv("SHIPPING_APP_PORT"),
		"SHIPPING_DATABASE_HOST":           os.Getenv("SHIPPING_DATABASE_HOST"),
		"SHIPPING_DATABASE_PORT":           os.Getenv("SHIPPING_DATABASE_PORT"),
		"SHIPPING_DATABASE_USER":           os.Getenv("SHIPPING_DATABASE_USER"),
		"SHIPPING_DATABASE_PASSWORD":       os.Getenv("SHIPPING_DATABASE_PASSWORD"),
		"SHIPPING_DATABASE_DBNAME":         os.Getenv("SHIPPING_DATABASE_DBNAME"),
		"SHIPPING_DATABASE_SSLMODE":        os.Getenv("SHIPPING_DATABASE_SSLMODE"),
		"SHIPPING_DATABASE_MAX_OPEN_CONNS": os.Getenv("SHIPPING_DATABASE_MAX_OPEN_CONNS"),
		"SHIPPING_DATABASE_MAX_IDLE_CONNS": os.Getenv("SHIPPING_DATABASE_MAX_IDLE_CONNS"),
		"SHIPPING_ESHIPZ_BASE_URL":         os.Getenv("SHIPPING_ESHIPZ_BASE_URL"),
		"SHIPPING_ESHIPZ_TIMEOUT_SECONDS":  os.Getenv("SHIPPING_ESHIPZ_TIMEOUT_SECONDS"),
		"SHIPPING_CACHE_RATES_TTL":         os.Getenv("SHIPPING_CACHE_RATES_TTL"),
		"SHIPPING_STORAGE_ENABLED":         os.Getenv("SHIPPING_STORAGE_ENABLED"),
		"SHIPPING_STORAGE_BUCKET":          os.Getenv("SHIPPING_STORAGE_BUCKET"),
		"SHIPPING_STORAGE_ACCESS_KEY":      os.Getenv("SHIPPING_STORAGE_ACCESS_KEY"),
		"SHIPPING_STORAGE_SECRET_KEY":      os.Getenv("SHIPPING_STORAGE_SECRET_KEY"),
		"SHIPPING_SCHEDULER_ENABLED":       os.Getenv("SHIPPING_SCHEDULER_ENABLED"),
		"SHIPPING_SCHEDULER_INTERVAL":      os.Getenv("SHIPPING_SCHEDULER_INTERVAL"),
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

		assert.Equal(t, "shipping-connector", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "shipping", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "https://app.eshipz.com", cfg.Eshipz.BaseURL)
		assert.Equal(t, 30, cfg.Eshipz.TimeoutSeconds)
		assert.Equal(t, 10*time.Minute, cfg.Cache.RatesTTL)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Storage.Enabled)
		assert.False(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 30*time.Minute, cfg.Scheduler.Interval)
		assert.Equal(t, 4, cfg.Scheduler.MaxConcurrent)
		assert.Equal(t, time.Minute, cfg.Scheduler.JobTimeout)
		assert.Equal(t, 50, cfg.Scheduler.PageSize)
	})

	t.Run("loads scheduler settings from environment", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_SCHEDULER_ENABLED", "true")
		os.Setenv("SHIPPING_SCHEDULER_INTERVAL", "5m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.Scheduler.Enabled)
		assert.Equal(t, 5*time.Minute, cfg.Scheduler.Interval)
	})

	t.Run("loads values from environment variables with SHIPPING prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_APP_NAME", "test-app")
		os.Setenv("SHIPPING_APP_ENV", "testing")
		os.Setenv("SHIPPING_APP_PORT", "9000")
		os.Setenv("SHIPPING_DATABASE_HOST", "testdb.local")
		os.Setenv("SHIPPING_DATABASE_PORT", "5433")
		os.Setenv("SHIPPING_DATABASE_USER", "testuser")
		os.Setenv("SHIPPING_DATABASE_PASSWORD", "testpass")
		os.Setenv("SHIPPING_DATABASE_DBNAME", "testdb")
		os.Setenv("SHIPPING_DATABASE_SSLMODE", "require")
		os.Setenv("SHIPPING_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("SHIPPING_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("SHIPPING_ESHIPZ_BASE_URL", "http://localhost:8081")
		os.Setenv("SHIPPING_ESHIPZ_TIMEOUT_SECONDS", "5")
		os.Setenv("SHIPPING_CACHE_RATES_TTL", "30s")

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
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "http://localhost:8081", cfg.Eshipz.BaseURL)
		assert.Equal(t, 5, cfg.Eshipz.TimeoutSeconds)
		assert.Equal(t, 30*time.Second, cfg.Cache.RatesTTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SHIPPING_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("enabled storage requires bucket and credentials", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket is required")

		os.Setenv("SHIPPING_STORAGE_BUCKET", "labels")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage credentials are required")

		os.Setenv("SHIPPING_STORAGE_ACCESS_KEY", "key")
		os.Setenv("SHIPPING_STORAGE_SECRET_KEY", "secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Storage.Enabled)
		assert.Equal(t, "labels", cfg.Storage.Bucket)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SHIPPING_APP_ENV":            os.Getenv("SHIPPING_APP_ENV"),
		"SHIPPING_DATABASE_PASSWORD":  os.Getenv("SHIPPING_DATABASE_PASSWORD"),
		"SHIPPING_DATABASE_SSLMODE":   os.Getenv("SHIPPING_DATABASE_SSLMODE"),
		"SHIPPING_HTTP_CORS_ALLOW_ORIGINS": os.Getenv("SHIPPING_HTTP_CORS_ALLOW_ORIGINS"),
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

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_APP_ENV", "production")
		os.Setenv("SHIPPING_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_APP_ENV", "production")
		os.Setenv("SHIPPING_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SHIPPING_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHIPPING_APP_ENV", "production")
		os.Setenv("SHIPPING_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SHIPPING_DATABASE_SSLMODE", "require")

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
