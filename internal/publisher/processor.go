package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/internal/connections"
	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	pkgerrors "github.com/dmcorrales/brandpulse-backend/pkg/errors"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/metrics"
	"github.com/dmcorrales/brandpulse-backend/pkg/socialpub"
)

const defaultMaxRetries = 3

const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeTerminal  = "terminal"
)

// ProcessorParams configure the job processor.
type ProcessorParams struct {
	Logger      *logger.Logger
	Repository  Repository
	Connections connections.Repository
	Publisher   socialpub.Publisher
	Metrics     *metrics.PublisherMetrics
	MaxRetries  int
	Now         func() time.Time
}

// Processor executes publishing jobs one at a time. It is the only writer of
// job rows; on posts it writes the status column and nothing else.
type Processor struct {
	logg        *logger.Logger
	repo        Repository
	connections connections.Repository
	publisher   socialpub.Publisher
	metrics     *metrics.PublisherMetrics
	maxRetries  int
	now         func() time.Time
}

// NewProcessor builds a job processor.
func NewProcessor(params ProcessorParams) (*Processor, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if params.Connections == nil {
		return nil, errors.New("connections repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publish client is required")
	}
	maxRetries := params.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Processor{
		logg:        params.Logger,
		repo:        params.Repository,
		connections: params.Connections,
		publisher:   params.Publisher,
		metrics:     params.Metrics,
		maxRetries:  maxRetries,
		now:         now,
	}, nil
}

// ProcessJob runs one delivery attempt for the given job. Delivery outcomes
// are persisted on the job row and never surface as a returned error; only
// store failures propagate. Calls against missing or terminal jobs are silent
// no-ops.
func (p *Processor) ProcessJob(ctx context.Context, jobID uuid.UUID) error {
	ctx = p.logg.WithJobID(ctx, jobID.String())

	job, err := p.repo.FindJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.logg.Warn(p.logg.WithField(ctx, "reason", "job_not_found"), "skipping job")
			return nil
		}
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if !p.runnable(job) {
		return nil
	}

	ctx = p.logg.WithPlatform(ctx, job.Platform.String())
	ctx = p.logg.WithPostID(ctx, job.ScheduledPostID.String())

	// Attempt ledger is committed before the external call so a crash
	// mid-delivery still counts the attempt.
	attempt := job.AttemptCount + 1
	attemptAt := p.now().UTC()
	err = p.repo.UpdateJob(ctx, job.ID, map[string]any{
		"status":          enums.JobStatusProcessing,
		"attempt_count":   attempt,
		"last_attempt_at": attemptAt,
	})
	if err != nil {
		return fmt.Errorf("mark job %s processing: %w", job.ID, err)
	}
	ctx = p.logg.WithField(ctx, "attempt", attempt)

	post, err := p.repo.FindPost(ctx, job.ScheduledPostID)
	if err != nil {
		return fmt.Errorf("load post %s: %w", job.ScheduledPostID, err)
	}
	ctx = p.logg.WithBusinessID(ctx, post.BusinessID.String())

	conn, err := p.connections.FindActive(ctx, post.BusinessID, post.LocationID, job.Platform)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			message := fmt.Sprintf("no active %s connection for business", job.Platform)
			return p.failAttempt(ctx, job, attempt, message)
		}
		return fmt.Errorf("load %s connection: %w", job.Platform, err)
	}

	result, err := p.publisher.Publish(ctx, socialpub.PublishParams{
		Platform:          job.Platform,
		ExternalAccountID: conn.ExternalAccountID,
		AccessToken:       conn.AccessToken,
		Caption:           post.Content.RenderCaption(),
		MediaURLs:         []string(post.MediaURLs),
	})
	if err != nil {
		return p.failAttempt(ctx, job, attempt, deliveryMessage(err))
	}

	err = p.repo.UpdateJob(ctx, job.ID, map[string]any{
		"status":      enums.JobStatusCompleted,
		"external_id": result.ExternalID,
		"error":       nil,
	})
	if err != nil {
		return fmt.Errorf("mark job %s completed: %w", job.ID, err)
	}
	p.metrics.IncJobOutcome(job.Platform.String(), outcomeCompleted)
	p.logg.Info(p.logg.WithField(ctx, "external_id", result.ExternalID), "publishing job completed")

	return p.rollupPostStatus(ctx, job.ScheduledPostID)
}

// runnable implements the precondition guard: only pending jobs and failed
// jobs with retry budget left may run again.
func (p *Processor) runnable(job *models.PublishingJob) bool {
	switch job.Status {
	case enums.JobStatusPending:
		return true
	case enums.JobStatusFailed:
		return job.AttemptCount < p.maxRetries
	default:
		return false
	}
}

// failAttempt records a delivery failure on the job. The final allowed
// attempt fails the owning post immediately, without waiting on its siblings.
func (p *Processor) failAttempt(ctx context.Context, job *models.PublishingJob, attempt int, message string) error {
	err := p.repo.UpdateJob(ctx, job.ID, map[string]any{
		"status": enums.JobStatusFailed,
		"error":  message,
	})
	if err != nil {
		return fmt.Errorf("mark job %s failed: %w", job.ID, err)
	}

	terminal := attempt >= p.maxRetries
	outcome := outcomeFailed
	if terminal {
		outcome = outcomeTerminal
	}
	p.metrics.IncJobOutcome(job.Platform.String(), outcome)
	p.logg.Warn(p.logg.WithField(ctx, "error", message), "publishing job attempt failed")

	if terminal {
		if err := p.repo.UpdatePostStatus(ctx, job.ScheduledPostID, enums.PostStatusFailed); err != nil {
			return fmt.Errorf("mark post %s failed: %w", job.ScheduledPostID, err)
		}
		p.logg.Warn(ctx, "post failed after final publishing attempt")
	}
	return nil
}

// rollupPostStatus recomputes the post status from its full job set. Jobs
// still in flight leave the post untouched.
func (p *Processor) rollupPostStatus(ctx context.Context, postID uuid.UUID) error {
	jobs, err := p.repo.ListJobsForPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("list jobs for post %s: %w", postID, err)
	}

	allCompleted := len(jobs) > 0
	anyTerminal := false
	for _, job := range jobs {
		if job.Status != enums.JobStatusCompleted {
			allCompleted = false
		}
		if job.Status == enums.JobStatusFailed && job.AttemptCount >= p.maxRetries {
			anyTerminal = true
		}
	}

	switch {
	case allCompleted:
		if err := p.repo.UpdatePostStatus(ctx, postID, enums.PostStatusPublished); err != nil {
			return fmt.Errorf("mark post %s published: %w", postID, err)
		}
		p.logg.Info(ctx, "post published on all platforms")
	case anyTerminal:
		if err := p.repo.UpdatePostStatus(ctx, postID, enums.PostStatusFailed); err != nil {
			return fmt.Errorf("mark post %s failed: %w", postID, err)
		}
	}
	return nil
}

// deliveryMessage extracts the human-readable message persisted into the
// job's error column. Coded errors carry the publish service's message
// verbatim; anything else falls back to the raw error text.
func deliveryMessage(err error) string {
	if err == nil {
		return "publish failed"
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
		return typed.Message()
	}
	return err.Error()
}
