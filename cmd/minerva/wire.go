package main

import (
	"fmt"
	"log/slog"

	"cognitia-edu/minerva/pkg/aggregate"
	"cognitia-edu/minerva/pkg/backend"
	"cognitia-edu/minerva/pkg/cache"
	"cognitia-edu/minerva/pkg/classifier"
	"cognitia-edu/minerva/pkg/config"
	"cognitia-edu/minerva/pkg/gateway"
	"cognitia-edu/minerva/pkg/governance"
	"cognitia-edu/minerva/pkg/governance/source"
	"cognitia-edu/minerva/pkg/risk"
	"cognitia-edu/minerva/pkg/strategy"
	"cognitia-edu/minerva/pkg/telemetry/metrics"
	"cognitia-edu/minerva/pkg/trace"
	"cognitia-edu/minerva/pkg/trace/recorder"
	"cognitia-edu/minerva/pkg/trace/retention"
	"cognitia-edu/minerva/pkg/trace/storage"
)

// runtime bundles every long-lived object built from the configuration, so
// commands construct once and shut down in one place.
type runtime struct {
	gateway   *gateway.Gateway
	storage   trace.Storage
	cache     *cache.Cache
	pool      *risk.Pool
	policies  *source.FileSource
	enforcer  *retention.Enforcer
	collector *metrics.Collector
	logger    *slog.Logger
}

// buildRuntime wires the full component graph from cfg.
func buildRuntime(cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	lb, err := buildBackend(cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStorage(cfg)
	if err != nil {
		return nil, err
	}

	aggregates, err := buildAggregates(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	policies, err := source.NewFileSource(source.FileSourceConfig{
		Path:             cfg.Governance.PolicyFile,
		Watch:            cfg.Governance.Watch,
		DebounceInterval: cfg.Governance.ReloadDebounce,
	}, logger)
	if err != nil {
		store.Close()
		aggregates.Close()
		return nil, fmt.Errorf("loading policies: %w", err)
	}

	collector := metrics.NewCollector(cfg.Telemetry.Metrics.Config)

	var respCache *cache.Cache
	if cfg.Cache.Enabled {
		respCache, err = cache.New(cache.Config{
			Salt:          cfg.Cache.Salt,
			MaxEntries:    cfg.Cache.MaxEntries,
			DefaultTTL:    cfg.Cache.TTL,
			SweepInterval: cfg.Cache.SweepInterval,
		})
		if err != nil {
			store.Close()
			aggregates.Close()
			policies.Close()
			return nil, err
		}
	}

	pool := risk.NewPool(risk.NewAnalyzer(risk.DefaultRuleSets()...), store, risk.PoolConfig{
		Workers:   cfg.Risk.Workers,
		QueueSize: cfg.Risk.QueueSize,
		Logger:    logger,
		OnFinding: func(dim trace.Dimension, sev trace.Severity) {
			collector.RecordRiskFinding(string(dim), string(sev))
		},
		OnDropped: collector.RecordRiskDropped,
	})

	cls := classifier.New(lb, &classifier.Config{
		DelegationPatterns: append(classifier.DefaultDelegationPatterns(), cfg.Classifier.ExtraDelegationPatterns...),
		HistoryLimit:       cfg.Classifier.HistoryLimit,
		Timeout:            cfg.Classifier.Timeout,
	}, logger.With("component", "classifier"))

	router := strategy.NewRouter(lb, strategy.RouterConfig{
		Cache:             respCache,
		CacheTTL:          cfg.Cache.TTL,
		GenerationTimeout: cfg.Backend.Timeout,
		Logger:            logger,
	})

	gw, err := gateway.New(gateway.Components{
		Classifier: cls,
		Engine:     governance.NewEngine(governance.Messages{}, logger.With("component", "governance.engine")),
		Policies:   policies,
		Router:     router,
		Recorder:   recorder.New(store, logger),
		Storage:    store,
		Cache:      respCache,
		Aggregates: aggregates,
		RiskPool:   pool,
		Metrics:    collector,
		Logger:     logger,
	})
	if err != nil {
		pool.Close()
		store.Close()
		aggregates.Close()
		policies.Close()
		return nil, err
	}

	return &runtime{
		gateway:   gw,
		storage:   store,
		cache:     respCache,
		pool:      pool,
		policies:  policies,
		enforcer:  retention.NewEnforcer(store, cfg.Retention, logger),
		collector: collector,
		logger:    logger,
	}, nil
}

// shutdown releases components in dependency order: the pool drains before
// storage closes underneath it.
func (r *runtime) shutdown() {
	if r.enforcer != nil {
		r.enforcer.Stop()
	}
	r.pool.Close()
	if r.cache != nil {
		r.cache.Close()
	}
	r.policies.Close()
	if err := r.storage.Close(); err != nil {
		r.logger.Warn("closing trace storage", "error", err)
	}
}

func buildBackend(cfg *config.Config) (backend.LanguageBackend, error) {
	switch cfg.Backend.Provider {
	case "openai":
		b, err := backend.NewOpenAIBackend(backend.OpenAIConfig{
			APIKey:  cfg.Backend.APIKey,
			BaseURL: cfg.Backend.BaseURL,
			Model:   cfg.Backend.Model,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "scripted":
		sb := backend.NewScriptedBackend()
		sb.Default = "Let's reason through that together. What have you tried so far?"
		return sb, nil
	default:
		return nil, fmt.Errorf("unknown backend provider %q", cfg.Backend.Provider)
	}
}

func buildStorage(cfg *config.Config) (trace.Storage, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		sc := storage.DefaultSQLiteConfig()
		sc.Path = cfg.Storage.SQLitePath
		st, err := storage.NewSQLiteStorage(sc)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildAggregates(cfg *config.Config) (aggregate.Store, error) {
	switch cfg.Aggregates.Backend {
	case "sqlite":
		st, err := aggregate.NewSQLiteStore(cfg.Aggregates.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "memory":
		return aggregate.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown aggregates backend %q", cfg.Aggregates.Backend)
	}
}
