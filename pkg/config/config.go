package config

import (
	"time"

	"cognitia-edu/minerva/pkg/telemetry/logging"
	"cognitia-edu/minerva/pkg/telemetry/metrics"
	"cognitia-edu/minerva/pkg/trace/retention"
)

// Config is the root configuration for the gateway.
type Config struct {
	Backend    BackendConfig    `yaml:"backend"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Governance GovernanceConfig `yaml:"governance"`
	Cache      CacheConfig      `yaml:"cache"`
	Storage    StorageConfig    `yaml:"storage"`
	Aggregates AggregatesConfig `yaml:"aggregates"`
	Risk       RiskConfig       `yaml:"risk"`
	Retention  retention.Config `yaml:"retention"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// BackendConfig selects and configures the language backend.
type BackendConfig struct {
	// Provider is "openai" or "scripted" (tests and demos).
	Provider string `yaml:"provider"`

	// APIKey authenticates against the provider. Supports ${ENV} expansion.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint (proxies, compatible servers).
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier used for generation.
	Model string `yaml:"model"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `yaml:"timeout"`
}

// ClassifierConfig configures the cognitive classifier.
type ClassifierConfig struct {
	// HistoryLimit bounds the recent traces given to the backend as context.
	HistoryLimit int `yaml:"history_limit"`

	// Timeout bounds the classification call before the heuristic fallback
	// takes over.
	Timeout time.Duration `yaml:"timeout"`

	// ExtraDelegationPatterns extends the stock delegation pattern list.
	ExtraDelegationPatterns []string `yaml:"extra_delegation_patterns"`
}

// GovernanceConfig configures the policy source.
type GovernanceConfig struct {
	// PolicyFile is the YAML policy file path.
	PolicyFile string `yaml:"policy_file"`

	// Watch enables hot-reload on policy file changes.
	Watch bool `yaml:"watch"`

	// ReloadDebounce coalesces rapid file events into one reload.
	ReloadDebounce time.Duration `yaml:"reload_debounce"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Enabled toggles response caching.
	Enabled bool `yaml:"enabled"`

	// Salt is the secret hash salt. Required when enabled; supports ${ENV}
	// expansion so the secret can stay out of the file.
	Salt string `yaml:"salt"`

	// MaxEntries bounds the cache size.
	MaxEntries int `yaml:"max_entries"`

	// TTL is how long entries stay valid.
	TTL time.Duration `yaml:"ttl"`

	// SweepInterval is the background expiry sweep period. 0 disables it.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// StorageConfig selects and configures trace storage.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the trace database path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// AggregatesConfig selects and configures the usage aggregate store.
type AggregatesConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLitePath is the aggregate database path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`
}

// RiskConfig configures the async risk analysis pool.
type RiskConfig struct {
	// Workers is the number of analysis goroutines.
	Workers int `yaml:"workers"`

	// QueueSize bounds the pending-analysis queue.
	QueueSize int `yaml:"queue_size"`
}

// TelemetryConfig groups logging and metrics configuration.
type TelemetryConfig struct {
	Logging logging.Config `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	metrics.Config `yaml:",inline"`

	// ListenAddress is the metrics HTTP listener address.
	ListenAddress string `yaml:"listen_address"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}
