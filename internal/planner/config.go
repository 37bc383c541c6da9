package planner

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Accounting selects the capacity each decomposition option is checked against.
type Accounting int

const (
	// AccountingSnapshot checks every option against the full pool
	AccountingSnapshot Accounting = iota
	// AccountingCumulative checks an option against the pool minus what the
	// partial plan has already reserved
	AccountingCumulative
)

func (a Accounting) String() string {
	switch a {
	case AccountingSnapshot:
		return "snapshot"
	case AccountingCumulative:
		return "cumulative"
	default:
		return "unknown"
	}
}

// ParseAccounting accepts "snapshot" and "cumulative"
func ParseAccounting(s string) (Accounting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snapshot":
		return AccountingSnapshot, nil
	case "cumulative":
		return AccountingCumulative, nil
	default:
		return AccountingSnapshot, &ConfigError{Field: "accounting", Reason: fmt.Sprintf("unknown mode %q (want snapshot or cumulative)", s)}
	}
}

func (a Accounting) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Accounting) UnmarshalText(text []byte) error {
	parsed, err := ParseAccounting(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Config bounds a planning run
type Config struct {
	// RiskCeiling is the highest risk any accepted step may carry
	RiskCeiling float64

	Accounting Accounting

	// MaxExpansions caps the number of search states popped; 0 disables the cap
	MaxExpansions int

	// Timeout caps wall-clock time per run; 0 disables it
	Timeout time.Duration

	// Parallelism is the number of options scored concurrently per expansion
	Parallelism int

	// CacheSize is the number of results kept; 0 disables caching
	CacheSize int
}

// DefaultConfig returns the settings used by the CLI when nothing is configured
func DefaultConfig() Config {
	return Config{
		RiskCeiling:   0.7,
		Accounting:    AccountingSnapshot,
		MaxExpansions: 100000,
		Parallelism:   1,
		CacheSize:     128,
	}
}

// Validate reports the first out-of-range field
func (c Config) Validate() error {
	if math.IsNaN(c.RiskCeiling) || c.RiskCeiling < 0 || c.RiskCeiling > 1 {
		return &ConfigError{Field: "risk_ceiling", Reason: fmt.Sprintf("must lie in [0, 1], got %v", c.RiskCeiling)}
	}
	if c.Accounting != AccountingSnapshot && c.Accounting != AccountingCumulative {
		return &ConfigError{Field: "accounting", Reason: fmt.Sprintf("unknown mode %d", c.Accounting)}
	}
	if c.MaxExpansions < 0 {
		return &ConfigError{Field: "max_expansions", Reason: "cannot be negative"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Reason: "cannot be negative"}
	}
	if c.Parallelism < 1 {
		return &ConfigError{Field: "parallelism", Reason: fmt.Sprintf("must be at least 1, got %d", c.Parallelism)}
	}
	if c.CacheSize < 0 {
		return &ConfigError{Field: "cache_size", Reason: "cannot be negative"}
	}
	return nil
}
