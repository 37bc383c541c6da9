package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format selects the slog handler
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat accepts text (or console) and json
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "console":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", s)
	}
}

// Config holds configuration for the logger
type Config struct {
	Level  Level
	Format Format

	// Output defaults to stderr so plan output on stdout stays machine readable
	Output io.Writer

	AddSource bool

	// ServiceName and ServiceVersion are attached to every record when set
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig logs at info level as text to stderr
func DefaultConfig() Config {
	return Config{
		Level:       LevelInfo,
		Format:      FormatText,
		Output:      os.Stderr,
		ServiceName: "taskplan",
	}
}

// DevelopmentConfig logs at debug level with source locations
func DevelopmentConfig() Config {
	c := DefaultConfig()
	c.Level = LevelDebug
	c.AddSource = true
	return c
}

// ProductionConfig logs JSON at info level, suitable for the plan server
func ProductionConfig() Config {
	c := DefaultConfig()
	c.Format = FormatJSON
	return c
}
