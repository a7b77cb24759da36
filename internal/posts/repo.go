package posts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a posts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePost(ctx context.Context, post *models.ScheduledPost) (*models.ScheduledPost, error) {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *repository) CreateJobs(ctx context.Context, jobs []models.PublishingJob) error {
	if len(jobs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&jobs).Error
}

func (r *repository) FindPost(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := r.db.WithContext(ctx).
		Where("id = ?", postID).
		Where("business_id = ?", businessID).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) ListPosts(ctx context.Context, businessID uuid.UUID, limit int, cursor *pagination.Cursor, filters PostFilters) ([]models.ScheduledPost, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ScheduledPost{}).
		Where("business_id = ?", businessID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Platform != nil {
		query = query.Where("? = ANY(platforms)", filters.Platform.String())
	}
	if filters.LocationID != nil {
		query = query.Where("location_id = ?", *filters.LocationID)
	}
	if filters.DateFrom != nil {
		query = query.Where("scheduled_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("scheduled_at <= ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var posts []models.ScheduledPost
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) UpdatePost(ctx context.Context, postID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ScheduledPost{}).
		Where("id = ?", postID).
		Updates(updates).Error
}

// DeletePost removes the post row; job rows follow via the FK cascade, but
// the explicit delete keeps sqlite-backed tests honest.
func (r *repository) DeletePost(ctx context.Context, postID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("scheduled_post_id = ?", postID).
		Delete(&models.PublishingJob{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", postID).
		Delete(&models.ScheduledPost{}).Error
}

// DeletePendingJobs removes jobs for the given platforms only while they are
// still pending. In-flight and resolved jobs stay as delivery history.
func (r *repository) DeletePendingJobs(ctx context.Context, postID uuid.UUID, platforms []enums.Platform) error {
	if len(platforms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("scheduled_post_id = ?", postID).
		Where("platform IN ?", platforms).
		Where("status = ?", enums.JobStatusPending).
		Delete(&models.PublishingJob{}).Error
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

func (r *repository) ListLogs(ctx context.Context, businessID uuid.UUID, limit int, cursor *pagination.Cursor, filters LogFilters) ([]LogEntry, error) {
	query := r.db.WithContext(ctx).
		Table("publishing_jobs").
		Select(`publishing_jobs.id AS job_id,
publishing_jobs.scheduled_post_id AS post_id,
publishing_jobs.platform,
publishing_jobs.status,
publishing_jobs.attempt_count,
publishing_jobs.last_attempt_at,
publishing_jobs.external_id,
publishing_jobs.error,
scheduled_posts.scheduled_at,
publishing_jobs.created_at`).
		Joins("JOIN scheduled_posts ON scheduled_posts.id = publishing_jobs.scheduled_post_id").
		Where("scheduled_posts.business_id = ?", businessID)

	if filters.Status != nil {
		query = query.Where("publishing_jobs.status = ?", *filters.Status)
	}
	if filters.Platform != nil {
		query = query.Where("publishing_jobs.platform = ?", *filters.Platform)
	}
	if filters.DateFrom != nil {
		query = query.Where("publishing_jobs.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("publishing_jobs.created_at <= ?", *filters.DateTo)
	}
	if cursor != nil {
		query = query.Where(
			"(publishing_jobs.created_at < ?) OR (publishing_jobs.created_at = ? AND publishing_jobs.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []LogEntry
	err := query.
		Order("publishing_jobs.created_at DESC, publishing_jobs.id DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
