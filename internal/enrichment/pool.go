// Package enrichment runs slower, stronger classification of discover
// messages in the background and hands results to a Sink.
package enrichment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

// Job statuses reported to telemetry.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPanicked  = "panicked"
)

const (
	defaultWorkers    = 2
	defaultQueueSize  = 64
	defaultJobTimeout = 30 * time.Second
)

// Job is one text to enrich.
type Job struct {
	ID          string
	Text        string
	SubmittedAt time.Time
}

// Handler processes a job. Errors are logged, never returned to submitters.
type Handler func(ctx context.Context, job Job) error

// PoolConfig sizes the pool. Zero values take defaults; RatePerSecond 0
// disables rate limiting.
type PoolConfig struct {
	Workers       int
	QueueSize     int
	RatePerSecond float64
	Burst         int
	JobTimeout    time.Duration
}

// Pool is a fixed set of workers draining a bounded queue.
type Pool struct {
	jobs    chan Job
	handler Handler
	limiter *rate.Limiter
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewPool starts cfg.Workers workers running handler.
func NewPool(cfg PoolConfig, handler Handler, logger infralogger.Logger, tp *telemetry.Provider) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:      make(chan Job, cfg.QueueSize),
		handler:   handler,
		timeout:   cfg.JobTimeout,
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		telemetry: tp,
	}
	if cfg.RatePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), max(cfg.Burst, 1))
	}

	for i := range cfg.Workers {
		p.wg.Add(1)
		go p.worker(i)
	}

	logger.Info("Enrichment pool started",
		infralogger.Int("workers", cfg.Workers),
		infralogger.Int("queue_size", cfg.QueueSize),
		infralogger.Float64("rate_per_second", cfg.RatePerSecond),
	)
	return p
}

// Submit queues job without blocking. It returns false when the queue is
// full or the pool is shut down; the job is then dropped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.jobs <- job:
		p.telemetry.SetEnrichmentQueueDepth(len(p.jobs))
		return true
	default:
		p.telemetry.IncrementEnrichmentDropped()
		p.logger.Warn("Enrichment queue full, dropping job", infralogger.String("job_id", job.ID))
		return false
	}
}

// Enqueue wraps text in a new Job and submits it.
func (p *Pool) Enqueue(text string) bool {
	return p.Submit(Job{ID: uuid.NewString(), Text: text, SubmittedAt: time.Now()})
}

// Shutdown stops accepting jobs and waits for queued ones to finish. When ctx
// expires first, in-flight jobs are cancelled and ctx's error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("Enrichment pool drained")
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("enrichment shutdown: %w", ctx.Err())
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	p.logger.Debug("Worker started", infralogger.Int("worker_id", id))

	for job := range p.jobs {
		p.telemetry.SetEnrichmentQueueDepth(len(p.jobs))
		p.run(id, job)
	}

	p.logger.Debug("Worker finished", infralogger.Int("worker_id", id))
}

func (p *Pool) run(workerID int, job Job) {
	log := p.logger.With(infralogger.String("job_id", job.ID), infralogger.Int("worker_id", workerID))
	defer func() {
		if r := recover(); r != nil {
			p.telemetry.RecordEnrichmentJob(StatusPanicked)
			log.Error("Enrichment job panicked", infralogger.Any("panic", r))
		}
	}()

	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			p.telemetry.RecordEnrichmentJob(StatusFailed)
			log.Warn("Enrichment job cancelled while rate limited", infralogger.Error(err))
			return
		}
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	start := time.Now()
	if err := p.handler(ctx, job); err != nil {
		p.telemetry.RecordEnrichmentJob(StatusFailed)
		log.Warn("Enrichment job failed", infralogger.Error(err))
		return
	}
	p.telemetry.RecordEnrichmentJob(StatusCompleted)
	log.Debug("Enrichment job completed", infralogger.Duration("duration", time.Since(start)))
}
