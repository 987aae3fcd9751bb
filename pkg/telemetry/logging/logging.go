// Package logging configures the process-wide structured logger. All
// components log through log/slog with a "component" attribute; this package
// owns level and format parsing so configuration stays declarative.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON outputs one JSON object per line.
	FormatJSON Format = "json"
	// FormatText outputs logfmt-style key=value pairs.
	FormatText Format = "text"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	// Default: info
	Level string `yaml:"level"`

	// Format selects the handler: "json" or "text".
	// Default: json
	Format string `yaml:"format"`

	// AddSource includes file:line in each record.
	AddSource bool `yaml:"add_source"`

	// RedactPII masks learner identifiers and credential-shaped values
	// before records reach the sink.
	RedactPII bool `yaml:"redact_pii"`

	// Writer is the output destination. Defaults to os.Stdout.
	Writer io.Writer `yaml:"-"`
}

// New builds a slog.Logger from cfg. It fails on an unknown level or format
// rather than silently defaulting, so configuration typos surface at startup.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}
	if cfg.RedactPII {
		opts.ReplaceAttr = redactAttr
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler), nil
}

// ParseLevel converts a level string to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// parseFormat converts a format string to a Format. Empty means JSON.
func parseFormat(s string) (Format, error) {
	switch s {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", s)
	}
}
