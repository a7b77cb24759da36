package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	"github.com/dmcorrales/brandpulse-backend/pkg/types"
)

// CreatePostInput captures everything needed to schedule a post.
type CreatePostInput struct {
	BusinessID  uuid.UUID
	LocationID  *uuid.UUID
	Platforms   []string
	Content     types.PostContent
	MediaURLs   []string
	ScheduledAt time.Time
	Timezone    string
	Status      enums.PostStatus
}

// UpdatePostInput carries partial edits; nil fields are left untouched.
type UpdatePostInput struct {
	Platforms   []string
	Content     *types.PostContent
	MediaURLs   []string
	ScheduledAt *time.Time
	Timezone    *string
	Status      *enums.PostStatus
}

// PostFilters describe the inputs supported by the scheduled-posts list.
type PostFilters struct {
	Status     *enums.PostStatus
	Platform   *enums.Platform
	LocationID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// PostList wraps the paginated posts plus the next page cursor.
type PostList struct {
	Posts      []models.ScheduledPost `json:"posts"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

// LogFilters describe the inputs supported by the publishing-logs list.
type LogFilters struct {
	Status   *enums.JobStatus
	Platform *enums.Platform
	DateFrom *time.Time
	DateTo   *time.Time
}

// LogEntry is one publishing attempt joined with its post context.
type LogEntry struct {
	JobID         uuid.UUID       `json:"jobId"`
	PostID        uuid.UUID       `json:"postId"`
	Platform      enums.Platform  `json:"platform"`
	Status        enums.JobStatus `json:"status"`
	AttemptCount  int             `json:"attemptCount"`
	LastAttemptAt *time.Time      `json:"lastAttemptAt,omitempty"`
	ExternalID    *string         `json:"externalId,omitempty"`
	Error         *string         `json:"error,omitempty"`
	ScheduledAt   time.Time       `json:"scheduledAt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// LogList wraps the paginated log entries plus the next page cursor.
type LogList struct {
	Entries    []LogEntry `json:"entries"`
	NextCursor string     `json:"nextCursor,omitempty"`
}
