package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

// Repository defines the job-store queries the pipeline relies on. Post
// writes go through UpdatePostStatus only; the pipeline never touches any
// other post column.
type Repository interface {
	FindDuePending(ctx context.Context, now time.Time, limit int) ([]models.PublishingJob, error)
	FindRetryableFailed(ctx context.Context, limit, maxRetries int) ([]models.PublishingJob, error)
	FindJob(ctx context.Context, id uuid.UUID) (*models.PublishingJob, error)
	FindPost(ctx context.Context, id uuid.UUID) (*models.ScheduledPost, error)
	ListJobsForPost(ctx context.Context, postID uuid.UUID) ([]models.PublishingJob, error)
	UpdateJob(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdatePostStatus(ctx context.Context, postID uuid.UUID, status enums.PostStatus) error
}

// JobProcessor executes a single publishing job end to end.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}
