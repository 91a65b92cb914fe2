// Package config loads runtime settings from the environment, optionally seeded
// from a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// projectIDEnvs are the variables Google Cloud runtimes use for the project ID,
// in order of precedence.
var projectIDEnvs = []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT", "PROJECT_ID"}

// Config holds every runtime setting. Keys map onto upper-cased environment
// variables, e.g. ShutdownTimeout <- SHUTDOWN_TIMEOUT. ProjectID is read from
// the first of projectIDEnvs that is set.
type Config struct {
	Port              int           `mapstructure:"port"`
	MetricsPort       int           `mapstructure:"metrics_port"`
	LogLevel          string        `mapstructure:"log_level"`
	ProjectID         string        `mapstructure:"project_id"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

var defaults = map[string]any{
	"port":                8080,
	"metrics_port":        9090,
	"log_level":           "info",
	"project_id":          "",
	"shutdown_timeout":    10 * time.Second,
	"read_timeout":        5 * time.Second,
	"read_header_timeout": 2 * time.Second,
	"write_timeout":       10 * time.Second,
	"idle_timeout":        60 * time.Second,
}

// Load reads ENV_FILE (default ".env") into the process environment without
// overriding variables that are already set, then resolves every key from the
// environment with the defaults above. A missing dotenv file is not an error.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"project_id"}, projectIDEnvs...)...); err != nil {
		return nil, fmt.Errorf("bind project id: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg.ProjectID = strings.TrimSpace(cfg.ProjectID)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting. A MetricsPort of 0 disables the
// admin listener.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be 1-65535", c.Port)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT %d: must be 0-65535", c.MetricsPort)
	}
	if c.MetricsPort == c.Port {
		return fmt.Errorf("METRICS_PORT must differ from PORT (%d)", c.Port)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
		{"READ_TIMEOUT", c.ReadTimeout},
		{"READ_HEADER_TIMEOUT", c.ReadHeaderTimeout},
		{"WRITE_TIMEOUT", c.WriteTimeout},
		{"IDLE_TIMEOUT", c.IdleTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			return fmt.Errorf("invalid %s %s: must be positive", t.name, t.value)
		}
	}
	return nil
}

// Addr is the public listener address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MetricsAddr is the admin listener address, empty when metrics are disabled.
func (c *Config) MetricsAddr() string {
	if c.MetricsPort == 0 {
		return ""
	}
	return fmt.Sprintf(":%d", c.MetricsPort)
}
