package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file, expands ${ENV} references in secret
// fields, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
	}

	expandSecrets(&cfg)
	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a fully defaulted configuration without reading a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// expandSecrets resolves ${ENV} references in fields that commonly carry
// secrets, so API keys and salts need not be written into the file.
func expandSecrets(cfg *Config) {
	cfg.Backend.APIKey = os.ExpandEnv(cfg.Backend.APIKey)
	cfg.Cache.Salt = os.ExpandEnv(cfg.Cache.Salt)
}
