// Package metrics exposes the gateway's Prometheus instrumentation: one
// Collector owns every metric family and a private registry, so components
// record through a single typed surface instead of package-level globals.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric collection.
type Config struct {
	// Enabled toggles collection; a disabled collector records nothing.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: minerva
	Namespace string `yaml:"namespace"`

	// BackendLatencyBuckets are the histogram buckets for generation
	// latency, in seconds. Defaults cover 100ms to 30s.
	BackendLatencyBuckets []float64 `yaml:"backend_latency_buckets"`
}

// Collector owns the gateway's Prometheus metrics.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	interactions   *prometheus.CounterVec
	blocks         *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheSize      prometheus.Gauge
	fallbacks      prometheus.Counter
	riskFindings   *prometheus.CounterVec
	riskDropped    prometheus.Counter
}

// NewCollector creates a collector with its own registry.
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "minerva"
	}
	if len(cfg.BackendLatencyBuckets) == 0 {
		cfg.BackendLatencyBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
	}

	registry := prometheus.NewRegistry()
	c := &Collector{
		enabled:  cfg.Enabled,
		registry: registry,

		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "interactions_total",
			Help:      "Processed interactions by mode and outcome.",
		}, []string{"mode", "outcome"}),

		blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "policy_blocks_total",
			Help:      "Interactions blocked by the policy gate, by reason.",
		}, []string{"reason"}),

		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "backend_latency_seconds",
			Help:      "Language backend call latency by session mode.",
			Buckets:   cfg.BackendLatencyBuckets,
		}, []string{"mode"}),

		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_hits_total",
			Help:      "Response cache hits.",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_misses_total",
			Help:      "Response cache misses.",
		}),

		cacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "cache_entries",
			Help:      "Current response cache entry count.",
		}),

		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "classifier_fallbacks_total",
			Help:      "Classifications served by the heuristic fallback.",
		}),

		riskFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "risk_findings_total",
			Help:      "Risk findings by dimension and severity.",
		}, []string{"dimension", "severity"}),

		riskDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "risk_dropped_total",
			Help:      "Exchanges dropped by the risk analysis queue.",
		}),
	}

	registry.MustRegister(
		c.interactions, c.blocks, c.backendLatency,
		c.cacheHits, c.cacheMisses, c.cacheSize,
		c.fallbacks, c.riskFindings, c.riskDropped,
	)

	return c
}

// RecordInteraction counts one processed interaction.
// outcome is "answered", "blocked", "cached", or "error".
func (c *Collector) RecordInteraction(mode, outcome string) {
	if !c.enabled {
		return
	}
	c.interactions.WithLabelValues(mode, outcome).Inc()
}

// RecordBlock counts one policy block by reason.
func (c *Collector) RecordBlock(reason string) {
	if !c.enabled {
		return
	}
	c.blocks.WithLabelValues(reason).Inc()
}

// RecordBackendLatency observes one generation call's duration, labeled by
// the session mode that drove it.
func (c *Collector) RecordBackendLatency(mode string, d time.Duration) {
	if !c.enabled {
		return
	}
	c.backendLatency.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordCacheHit counts one response cache hit.
func (c *Collector) RecordCacheHit() {
	if !c.enabled {
		return
	}
	c.cacheHits.Inc()
}

// RecordCacheMiss counts one response cache miss.
func (c *Collector) RecordCacheMiss() {
	if !c.enabled {
		return
	}
	c.cacheMisses.Inc()
}

// UpdateCacheSize reports the current cache entry count.
func (c *Collector) UpdateCacheSize(n int) {
	if !c.enabled {
		return
	}
	c.cacheSize.Set(float64(n))
}

// RecordClassifierFallback counts one heuristic-fallback classification.
func (c *Collector) RecordClassifierFallback() {
	if !c.enabled {
		return
	}
	c.fallbacks.Inc()
}

// RecordRiskFinding counts one persisted risk finding.
func (c *Collector) RecordRiskFinding(dimension, severity string) {
	if !c.enabled {
		return
	}
	c.riskFindings.WithLabelValues(dimension, severity).Inc()
}

// RecordRiskDropped counts one exchange dropped by the analysis queue.
func (c *Collector) RecordRiskDropped() {
	if !c.enabled {
		return
	}
	c.riskDropped.Inc()
}

// Registry returns the collector's registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
