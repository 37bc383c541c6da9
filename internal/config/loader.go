package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/planner"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

// EnvPrefix prefixes every environment override, e.g. TASKPLAN_PLANNER_RISK_CEILING
const EnvPrefix = "TASKPLAN"

// Load reads configuration. An explicit path must exist; otherwise the
// project's .taskplan/config.yaml or ~/.taskplan/config.yaml is used when
// present, and defaults apply when neither is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = ux.DiscoverConfigFile(cwd, "config.yaml")
		}
	} else if _, err := os.Stat(path); stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.NewFileNotFoundError(path)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewFileUnmarshalError(path, formatOf(path), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func formatOf(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "config"
	}
	return strings.ToUpper(ext)
}

// Default returns the configuration used when no file or environment
// overrides exist
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	p := planner.DefaultConfig()
	v.SetDefault("planner.risk_ceiling", p.RiskCeiling)
	v.SetDefault("planner.accounting", p.Accounting.String())
	v.SetDefault("planner.max_expansions", p.MaxExpansions)
	v.SetDefault("planner.timeout", p.Timeout)
	v.SetDefault("planner.parallelism", p.Parallelism)
	v.SetDefault("planner.cache_size", p.CacheSize)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.environment", "development")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.max_body_bytes", 1<<20)
}

// Save writes cfg as YAML to path
func Save(cfg *Config, path string) error {
	v := viper.New()

	v.Set("planner.risk_ceiling", cfg.Planner.RiskCeiling)
	v.Set("planner.accounting", cfg.Planner.Accounting)
	v.Set("planner.max_expansions", cfg.Planner.MaxExpansions)
	v.Set("planner.timeout", cfg.Planner.Timeout.String())
	v.Set("planner.parallelism", cfg.Planner.Parallelism)
	v.Set("planner.cache_size", cfg.Planner.CacheSize)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.add_source", cfg.Log.AddSource)
	v.Set("telemetry.enabled", cfg.Telemetry.Enabled)
	v.Set("telemetry.endpoint", cfg.Telemetry.Endpoint)
	v.Set("telemetry.insecure", cfg.Telemetry.Insecure)
	v.Set("telemetry.sample_rate", cfg.Telemetry.SampleRate)
	v.Set("telemetry.environment", cfg.Telemetry.Environment)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.read_timeout", cfg.Server.ReadTimeout.String())
	v.Set("server.write_timeout", cfg.Server.WriteTimeout.String())
	v.Set("server.shutdown_timeout", cfg.Server.ShutdownTimeout.String())
	v.Set("server.max_body_bytes", cfg.Server.MaxBodyBytes)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return v.WriteConfigAs(path)
}
