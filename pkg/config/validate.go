package config

import (
	"fmt"

	"cognitia-edu/minerva/pkg/telemetry/logging"
)

// Validate checks the configuration for values that would fail at runtime.
// It reports the first problem found; startup is the right time to stop.
func Validate(cfg *Config) error {
	switch cfg.Backend.Provider {
	case "openai":
		if cfg.Backend.APIKey == "" {
			return fmt.Errorf("backend: api_key is required for the openai provider")
		}
	case "scripted":
	default:
		return fmt.Errorf("backend: unknown provider %q", cfg.Backend.Provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.Salt == "" {
		return fmt.Errorf("cache: salt is required when caching is enabled")
	}

	switch cfg.Storage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("storage: unknown backend %q", cfg.Storage.Backend)
	}

	switch cfg.Aggregates.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("aggregates: unknown backend %q", cfg.Aggregates.Backend)
	}

	if _, err := logging.ParseLevel(cfg.Telemetry.Logging.Level); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}
