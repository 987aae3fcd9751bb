// Package retention enforces the trace and risk retention windows on a cron
// schedule. Traces age out unconditionally; risk findings age out only once
// resolved.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"cognitia-edu/minerva/pkg/trace"
)

// Config configures retention enforcement.
type Config struct {
	// TraceRetention is how long traces are kept.
	// Default: 180 days
	TraceRetention time.Duration `yaml:"trace_retention"`

	// RiskRetention is how long resolved risk findings are kept. Unresolved
	// findings are never pruned.
	// Default: 365 days
	RiskRetention time.Duration `yaml:"risk_retention"`

	// Schedule is the cron expression driving enforcement runs.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() Config {
	return Config{
		TraceRetention: 180 * 24 * time.Hour,
		RiskRetention:  365 * 24 * time.Hour,
		Schedule:       "0 3 * * *",
	}
}

// Enforcer prunes aged-out records from trace storage.
type Enforcer struct {
	storage trace.Storage
	cfg     Config
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewEnforcer creates a retention enforcer. Call Start to begin scheduled
// runs; RunOnce is available for manual and test invocation.
func NewEnforcer(storage trace.Storage, cfg Config, logger *slog.Logger) *Enforcer {
	if cfg.TraceRetention <= 0 {
		cfg.TraceRetention = 180 * 24 * time.Hour
	}
	if cfg.RiskRetention <= 0 {
		cfg.RiskRetention = 365 * 24 * time.Hour
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 3 * * *"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Enforcer{
		storage: storage,
		cfg:     cfg,
		logger:  logger.With("component", "retention"),
	}
}

// Start schedules enforcement runs. It fails only on an invalid schedule.
func (e *Enforcer) Start() error {
	c := cron.New()
	_, err := c.AddFunc(e.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := e.RunOnce(ctx); err != nil {
			e.logger.Error("retention run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", e.cfg.Schedule, err)
	}

	e.cron = c
	c.Start()
	e.logger.Info("retention enforcement scheduled", "schedule", e.cfg.Schedule)
	return nil
}

// Stop cancels scheduled runs and waits for an in-flight run to finish.
func (e *Enforcer) Stop() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
}

// RunOnce performs a single enforcement pass.
func (e *Enforcer) RunOnce(ctx context.Context) error {
	now := time.Now().UTC()

	traces, err := e.storage.DeleteTracesBefore(ctx, now.Add(-e.cfg.TraceRetention))
	if err != nil {
		return fmt.Errorf("pruning traces: %w", err)
	}

	risks, err := e.storage.DeleteResolvedRisksBefore(ctx, now.Add(-e.cfg.RiskRetention))
	if err != nil {
		return fmt.Errorf("pruning resolved risks: %w", err)
	}

	if traces > 0 || risks > 0 {
		e.logger.Info("retention pass complete", "traces_removed", traces, "risks_removed", risks)
	}
	return nil
}
