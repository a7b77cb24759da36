package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/metrics"
)

const (
	defaultPollInterval   = 60 * time.Second
	defaultBatchSize      = 10
	defaultRetryBaseDelay = 5 * time.Minute
)

// RetryEligible reports whether a failed job's backoff window has elapsed.
// The wait doubles per attempt: 5m after the 1st, 10m after the 2nd, 20m
// after the 3rd. A job with no recorded attempt is eligible immediately.
func RetryEligible(job models.PublishingJob, now time.Time, baseDelay time.Duration) bool {
	if job.LastAttemptAt == nil || job.AttemptCount < 1 {
		return true
	}
	wait := baseDelay << (job.AttemptCount - 1)
	return !now.Before(job.LastAttemptAt.Add(wait))
}

// PollerParams configure the publishing poller.
type PollerParams struct {
	Logger         *logger.Logger
	Repository     Repository
	Processor      JobProcessor
	Metrics        *metrics.PublisherMetrics
	Interval       time.Duration
	BatchSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration
	Now            func() time.Time
}

// Poller discovers due and retryable jobs on a fixed cadence and hands them
// to the processor one at a time. A single poller instance owns the store;
// running two against the same database causes duplicate delivery attempts.
type Poller struct {
	logg           *logger.Logger
	repo           Repository
	processor      JobProcessor
	metrics        *metrics.PublisherMetrics
	interval       time.Duration
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	now            func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller builds a publishing poller.
func NewPoller(params PollerParams) (*Poller, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if params.Processor == nil {
		return nil, errors.New("processor is required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := params.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Poller{
		logg:           params.Logger,
		repo:           params.Repository,
		processor:      params.Processor,
		metrics:        params.Metrics,
		interval:       interval,
		batchSize:      batchSize,
		maxRetries:     maxRetries,
		retryBaseDelay: baseDelay,
		now:            now,
	}, nil
}

// Start launches the ticker goroutine with an immediate first tick. Calling
// Start on a running poller is a no-op; exactly one timer ever exists.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx, p.done)
	p.logg.Info(ctx, "publishing poller started")
}

// Stop cancels the ticker and waits for the current tick to finish. Stopping
// an already-stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.runTick(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logg.Info(context.Background(), "publishing poller stopped")
			return
		case <-ticker.C:
			p.runTick(ctx)
		}
	}
}

// runTick swallows tick errors so a bad tick never stops future ones.
func (p *Poller) runTick(ctx context.Context) {
	start := time.Now()
	err := p.tick(ctx)
	p.metrics.ObserveTick("full", time.Since(start))
	if err != nil {
		p.metrics.IncTickFailure()
		p.logg.Error(ctx, "publishing poller tick failed", err)
	}
}

// tick processes newly due jobs before backoff-eligible retries. Jobs run
// sequentially; the batch cap on both queries bounds tick duration.
func (p *Poller) tick(ctx context.Context) error {
	now := p.now().UTC()
	var errs error

	pending, err := p.repo.FindDuePending(ctx, now, p.batchSize)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("find due pending jobs: %w", err))
	}
	for _, job := range pending {
		if err := p.processor.ProcessJob(ctx, job.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("process job %s: %w", job.ID, err))
		}
	}

	failed, err := p.repo.FindRetryableFailed(ctx, p.batchSize, p.maxRetries)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("find retryable jobs: %w", err))
		return errs
	}
	for _, job := range failed {
		if !RetryEligible(job, now, p.retryBaseDelay) {
			continue
		}
		if err := p.processor.ProcessJob(ctx, job.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("process retry %s: %w", job.ID, err))
		}
	}
	return errs
}
