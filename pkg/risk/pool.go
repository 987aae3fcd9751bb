package risk

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cognitia-edu/minerva/pkg/trace"
)

// PoolConfig configures the analysis worker pool.
type PoolConfig struct {
	// Workers is the number of analysis goroutines.
	// Default: 2
	Workers int

	// QueueSize bounds the pending-analysis queue. Submissions beyond it
	// are dropped and logged, never block the interaction path.
	// Default: 256
	QueueSize int

	// SaveTimeout bounds each finding's persistence call.
	// Default: 5 seconds
	SaveTimeout time.Duration

	// Logger receives worker events. Defaults to slog.Default.
	Logger *slog.Logger

	// OnFinding is called for each persisted finding. Optional; used to
	// feed metrics.
	OnFinding func(dimension trace.Dimension, severity trace.Severity)

	// OnDropped is called when a submission is rejected because the queue
	// is full. Optional.
	OnDropped func()
}

// Pool runs risk analysis off the interaction path. Exchanges are submitted
// after the response is returned; analysis latency and failures are invisible
// to learners. Close drains the queue before returning.
type Pool struct {
	analyzer *Analyzer
	storage  trace.Storage

	jobs        chan *Input
	wg          sync.WaitGroup
	closeOnce   sync.Once
	saveTimeout time.Duration
	logger      *slog.Logger
	onFinding   func(trace.Dimension, trace.Severity)
	onDropped   func()
}

// NewPool starts the analysis workers.
func NewPool(analyzer *Analyzer, storage trace.Storage, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		analyzer:    analyzer,
		storage:     storage,
		jobs:        make(chan *Input, cfg.QueueSize),
		saveTimeout: cfg.SaveTimeout,
		logger:      logger.With("component", "risk-pool"),
		onFinding:   cfg.OnFinding,
		onDropped:   cfg.OnDropped,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}

	return p
}

// Submit queues an exchange for analysis. It never blocks: when the queue is
// full the exchange is dropped with a warning, trading completeness of risk
// coverage for interaction latency.
func (p *Pool) Submit(in *Input) {
	select {
	case p.jobs <- in:
	default:
		p.logger.Warn("analysis queue full, dropping exchange",
			"session_id", in.InputTrace.SessionID)
		if p.onDropped != nil {
			p.onDropped()
		}
	}
}

// Close stops accepting work, drains the queue, and waits for the workers.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for in := range p.jobs {
		for _, r := range p.analyzer.Analyze(in) {
			ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
			err := p.storage.SaveRisk(ctx, r)
			cancel()
			if err != nil {
				// Persistence failures lose the finding but must not
				// crash the worker.
				p.logger.Error("failed to persist risk finding",
					"kind", r.Kind, "dimension", r.Dimension, "error", err)
				continue
			}

			p.logger.Info("risk finding recorded",
				"kind", r.Kind,
				"dimension", r.Dimension,
				"severity", r.Severity,
				"session_id", r.SessionID)
			if p.onFinding != nil {
				p.onFinding(r.Dimension, r.Severity)
			}
		}
	}
}
