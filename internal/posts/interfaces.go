package posts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
)

// Repository defines persistence operations for scheduled posts and their jobs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePost(ctx context.Context, post *models.ScheduledPost) (*models.ScheduledPost, error)
	CreateJobs(ctx context.Context, jobs []models.PublishingJob) error
	FindPost(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error)
	ListPosts(ctx context.Context, businessID uuid.UUID, limit int, cursor *pagination.Cursor, filters PostFilters) ([]models.ScheduledPost, error)
	UpdatePost(ctx context.Context, postID uuid.UUID, updates map[string]any) error
	DeletePost(ctx context.Context, postID uuid.UUID) error
	DeletePendingJobs(ctx context.Context, postID uuid.UUID, platforms []enums.Platform) error
	ListJobsForPost(ctx context.Context, postID uuid.UUID) ([]models.PublishingJob, error)
	ListLogs(ctx context.Context, businessID uuid.UUID, limit int, cursor *pagination.Cursor, filters LogFilters) ([]LogEntry, error)
}

// Service defines the authoring operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, input CreatePostInput) (*models.ScheduledPost, error)
	Get(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error)
	List(ctx context.Context, businessID uuid.UUID, limit int, cursor string, filters PostFilters) (*PostList, error)
	Update(ctx context.Context, businessID, postID uuid.UUID, input UpdatePostInput) (*models.ScheduledPost, error)
	Duplicate(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error)
	Delete(ctx context.Context, businessID, postID uuid.UUID) error
	ListJobs(ctx context.Context, businessID, postID uuid.UUID) ([]models.PublishingJob, error)
	ListLogs(ctx context.Context, businessID uuid.UUID, limit int, cursor string, filters LogFilters) (*LogList, error)
}
