package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points ENV_FILE at a path that does not exist and clears every
// config key, restoring the original values when the test ends.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for key := range defaults {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	for _, name := range projectIDEnvs {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoad(t *testing.T) {
	t.Run("it should apply defaults", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)

		// WHEN
		cfg, err := Load()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 9090, cfg.MetricsPort)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Empty(t, cfg.ProjectID)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 2*time.Second, cfg.ReadHeaderTimeout)
		assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
		assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.Equal(t, ":9090", cfg.MetricsAddr())
	})

	t.Run("it should load from env vars", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)
		t.Setenv("PORT", "3000")
		t.Setenv("METRICS_PORT", "0")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("SHUTDOWN_TIMEOUT", "3s")
		t.Setenv("GOOGLE_CLOUD_PROJECT", "  demo-project  ")

		// WHEN
		cfg, err := Load()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "", cfg.MetricsAddr())
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "demo-project", cfg.ProjectID)
	})

	t.Run("it should fall back to the other project ID variables", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)
		t.Setenv("GCLOUD_PROJECT", "fallback-project")

		// WHEN
		cfg, err := Load()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, "fallback-project", cfg.ProjectID)
	})

	t.Run("it should not accept a greeting override", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)
		t.Setenv("GREETING_MESSAGE", "Hello from Go")

		// WHEN
		cfg, err := Load()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, Config{
			Port:              8080,
			MetricsPort:       9090,
			LogLevel:          "info",
			ShutdownTimeout:   10 * time.Second,
			ReadTimeout:       5 * time.Second,
			ReadHeaderTimeout: 2 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}, *cfg)
	})

	t.Run("it should read the env file without overriding the environment", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)
		envFile := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("PORT=4000\nLOG_LEVEL=warn\n"), 0o600))
		t.Setenv("ENV_FILE", envFile)
		t.Setenv("LOG_LEVEL", "error")

		// WHEN
		cfg, err := Load()

		// THEN
		require.NoError(t, err)
		assert.Equal(t, 4000, cfg.Port)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("it should fail on a malformed duration", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)
		t.Setenv("WRITE_TIMEOUT", "soon")

		// WHEN
		_, err := Load()

		// THEN
		require.Error(t, err)
	})

	t.Run("it should fail validation", func(t *testing.T) {
		// GIVEN
		isolateEnv(t)
		t.Setenv("PORT", "70000")

		// WHEN
		_, err := Load()

		// THEN
		require.ErrorContains(t, err, "PORT")
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:              8080,
			MetricsPort:       9090,
			LogLevel:          "info",
			ShutdownTimeout:   time.Second,
			ReadTimeout:       time.Second,
			ReadHeaderTimeout: time.Second,
			WriteTimeout:      time.Second,
			IdleTimeout:       time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"metrics disabled", func(c *Config) { c.MetricsPort = 0 }, ""},
		{"port zero", func(c *Config) { c.Port = 0 }, "PORT"},
		{"metrics port negative", func(c *Config) { c.MetricsPort = -1 }, "METRICS_PORT"},
		{"ports collide", func(c *Config) { c.MetricsPort = c.Port }, "must differ"},
		{"unknown level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "SHUTDOWN_TIMEOUT"},
		{"negative idle timeout", func(c *Config) { c.IdleTimeout = -time.Second }, "IDLE_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
