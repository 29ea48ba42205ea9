// Package config loads and validates console configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Backend BackendConfig `mapstructure:"backend"`
	Status  StatusConfig  `mapstructure:"status"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// BackendConfig points at the external audit API.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StatusConfig governs the status watcher cadences, in milliseconds.
type StatusConfig struct {
	PollIntervalMs  int `mapstructure:"poll_interval_ms"`
	TickIntervalMs  int `mapstructure:"tick_interval_ms"`
	StepAdvanceMs   int `mapstructure:"step_advance_ms"`
	RedirectDelayMs int `mapstructure:"redirect_delay_ms"`
}

// PollInterval returns the poll cadence as a duration.
func (c StatusConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// TickInterval returns the evaluation tick cadence as a duration.
func (c StatusConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// StepAdvance returns the synthetic advance interval as a duration.
func (c StatusConfig) StepAdvance() time.Duration {
	return time.Duration(c.StepAdvanceMs) * time.Millisecond
}

// RedirectDelay returns the completion redirect delay as a duration.
func (c StatusConfig) RedirectDelay() time.Duration {
	return time.Duration(c.RedirectDelayMs) * time.Millisecond
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("status.poll_interval_ms", 3000)
	v.SetDefault("status.tick_interval_ms", 1000)
	v.SetDefault("status.step_advance_ms", 30000)
	v.SetDefault("status.redirect_delay_ms", 800)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend.timeout_seconds must be > 0")
	}
	if c.Status.PollIntervalMs <= 0 {
		return fmt.Errorf("status.poll_interval_ms must be > 0")
	}
	if c.Status.TickIntervalMs <= 0 {
		return fmt.Errorf("status.tick_interval_ms must be > 0")
	}
	if c.Status.StepAdvanceMs <= 0 {
		return fmt.Errorf("status.step_advance_ms must be > 0")
	}
	if c.Status.RedirectDelayMs <= 0 {
		return fmt.Errorf("status.redirect_delay_ms must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required when auth.enabled is true")
	}
	return nil
}
