// Package config loads taskplan settings with Viper from a config file,
// TASKPLAN_* environment variables and built-in defaults, in increasing
// order of precedence below command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
)

// Config holds the application configuration.
type Config struct {
	Planner   PlannerConfig   `mapstructure:"planner" yaml:"planner"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`

	// File is the config file that was read, if any
	File string `mapstructure:"-" yaml:"-"`
}

// PlannerConfig bounds planning runs.
type PlannerConfig struct {
	RiskCeiling   float64       `mapstructure:"risk_ceiling" yaml:"risk_ceiling"`
	Accounting    string        `mapstructure:"accounting" yaml:"accounting"`
	MaxExpansions int           `mapstructure:"max_expansions" yaml:"max_expansions"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Parallelism   int           `mapstructure:"parallelism" yaml:"parallelism"`
	CacheSize     int           `mapstructure:"cache_size" yaml:"cache_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string `mapstructure:"level" yaml:"level"`
	Format    string `mapstructure:"format" yaml:"format"`
	AddSource bool   `mapstructure:"add_source" yaml:"add_source"`
}

// TelemetryConfig holds tracing settings.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	Environment string  `mapstructure:"environment" yaml:"environment"`
}

// ServerConfig holds plan server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// ValidationError reports an invalid configuration value
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// ErrorCode implements errors.Coder
func (e *ValidationError) ErrorCode() errors.ErrorCode {
	return errors.ErrCodeInvalidConfig
}

// Validate checks every section
func (c *Config) Validate() error {
	if _, err := c.PlannerConfig(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Reason: err.Error()}
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return &ValidationError{Field: "log.format", Reason: err.Error()}
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return &ValidationError{Field: "telemetry.sample_rate", Reason: fmt.Sprintf("must lie in [0, 1], got %v", c.Telemetry.SampleRate)}
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return &ValidationError{Field: "telemetry.endpoint", Reason: "required when telemetry is enabled"}
	}
	if c.Server.Addr == "" {
		return &ValidationError{Field: "server.addr", Reason: "cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ValidationError{Field: "server.shutdown_timeout", Reason: "must be positive"}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return &ValidationError{Field: "server.max_body_bytes", Reason: "must be positive"}
	}
	return nil
}

// PlannerConfig converts the planner section
func (c *Config) PlannerConfig() (planner.Config, error) {
	accounting, err := planner.ParseAccounting(c.Planner.Accounting)
	if err != nil {
		return planner.Config{}, err
	}
	cfg := planner.Config{
		RiskCeiling:   c.Planner.RiskCeiling,
		Accounting:    accounting,
		MaxExpansions: c.Planner.MaxExpansions,
		Timeout:       c.Planner.Timeout,
		Parallelism:   c.Planner.Parallelism,
		CacheSize:     c.Planner.CacheSize,
	}
	return cfg, cfg.Validate()
}

// LogConfig converts the log section. Output is left to the caller.
func (c *Config) LogConfig(serviceVersion string) (log.Config, error) {
	cfg := log.DefaultConfig()
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return cfg, &ValidationError{Field: "log.level", Reason: err.Error()}
	}
	format, err := log.ParseFormat(c.Log.Format)
	if err != nil {
		return cfg, &ValidationError{Field: "log.format", Reason: err.Error()}
	}
	cfg.Level = level
	cfg.Format = format
	cfg.AddSource = c.Log.AddSource
	cfg.ServiceVersion = serviceVersion
	return cfg, nil
}

// TelemetryConfig converts the telemetry section
func (c *Config) TelemetryConfig(serviceVersion string) telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = serviceVersion
	cfg.Enabled = c.Telemetry.Enabled
	cfg.Endpoint = c.Telemetry.Endpoint
	cfg.Insecure = c.Telemetry.Insecure
	cfg.SampleRate = c.Telemetry.SampleRate
	if c.Telemetry.Environment != "" {
		cfg.Environment = c.Telemetry.Environment
	}
	return cfg
}
