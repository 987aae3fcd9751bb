package config

import "time"

// ApplyDefaults fills unset fields with production defaults. Called by Load;
// exported so tests can build configurations piecemeal.
func ApplyDefaults(cfg *Config) {
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = "openai"
	}
	if cfg.Backend.Model == "" {
		cfg.Backend.Model = "gpt-4o-mini"
	}
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}

	if cfg.Classifier.HistoryLimit <= 0 {
		cfg.Classifier.HistoryLimit = 6
	}
	if cfg.Classifier.Timeout <= 0 {
		cfg.Classifier.Timeout = 3 * time.Second
	}

	if cfg.Governance.PolicyFile == "" {
		cfg.Governance.PolicyFile = "policies.yaml"
	}
	if cfg.Governance.ReloadDebounce <= 0 {
		cfg.Governance.ReloadDebounce = 500 * time.Millisecond
	}

	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 1024
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/traces.db"
	}

	if cfg.Aggregates.Backend == "" {
		cfg.Aggregates.Backend = "sqlite"
	}
	if cfg.Aggregates.SQLitePath == "" {
		cfg.Aggregates.SQLitePath = "data/aggregates.db"
	}

	if cfg.Risk.Workers <= 0 {
		cfg.Risk.Workers = 2
	}
	if cfg.Risk.QueueSize <= 0 {
		cfg.Risk.QueueSize = 256
	}

	if cfg.Retention.TraceRetention <= 0 {
		cfg.Retention.TraceRetention = 180 * 24 * time.Hour
	}
	if cfg.Retention.RiskRetention <= 0 {
		cfg.Retention.RiskRetention = 365 * 24 * time.Hour
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = "0 3 * * *"
	}

	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = ":9090"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "minerva"
	}
}
