package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a publisher repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindDuePending returns pending jobs whose owning post is due. Oldest jobs
// first so a full batch never starves earlier posts.
func (r *repository) FindDuePending(ctx context.Context, now time.Time, limit int) ([]models.PublishingJob, error) {
	var jobs []models.PublishingJob
	err := r.db.WithContext(ctx).
		Joins("JOIN scheduled_posts ON scheduled_posts.id = publishing_jobs.scheduled_post_id").
		Where("publishing_jobs.status = ?", enums.JobStatusPending).
		Where("scheduled_posts.scheduled_at <= ?", now).
		Where("scheduled_posts.status IN ?", []enums.PostStatus{enums.PostStatusScheduled, enums.PostStatusPublishing}).
		Order("publishing_jobs.created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindRetryableFailed returns failed jobs that still have retry budget.
// Backoff eligibility is evaluated in memory by the poller, not here.
func (r *repository) FindRetryableFailed(ctx context.Context, limit, maxRetries int) ([]models.PublishingJob, error) {
	var jobs []models.PublishingJob
	err := r.db.WithContext(ctx).
		Joins("JOIN scheduled_posts ON scheduled_posts.id = publishing_jobs.scheduled_post_id").
		Where("publishing_jobs.status = ?", enums.JobStatusFailed).
		Where("publishing_jobs.attempt_count < ?", maxRetries).
		Where("scheduled_posts.status IN ?", []enums.PostStatus{enums.PostStatusScheduled, enums.PostStatusPublishing, enums.PostStatusFailed}).
		Order("publishing_jobs.last_attempt_at ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) FindJob(ctx context.Context, id uuid.UUID) (*models.PublishingJob, error) {
	var job models.PublishingJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) FindPost(ctx context.Context, id uuid.UUID) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) ListJobsForPost(ctx context.Context, postID uuid.UUID) ([]models.PublishingJob, error) {
	var jobs []models.PublishingJob
	err := r.db.WithContext(ctx).
		Where("scheduled_post_id = ?", postID).
		Order("created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) UpdateJob(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PublishingJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdatePostStatus writes the status column only.
func (r *repository) UpdatePostStatus(ctx context.Context, postID uuid.UUID, status enums.PostStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ScheduledPost{}).
		Where("id = ?", postID).
		Update("status", status).Error
}
