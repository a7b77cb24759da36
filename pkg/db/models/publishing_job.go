package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

// PublishingJob records one platform delivery attempt for a scheduled post.
// The job, not the post, is the unit of retry.
type PublishingJob struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ScheduledPostID uuid.UUID       `gorm:"column:scheduled_post_id;type:uuid;not null" json:"scheduledPostId"`
	Platform        enums.Platform  `gorm:"column:platform;type:text;not null" json:"platform"`
	Status          enums.JobStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	AttemptCount    int             `gorm:"column:attempt_count;not null;default:0" json:"attemptCount"`
	LastAttemptAt   *time.Time      `gorm:"column:last_attempt_at;type:timestamptz" json:"lastAttemptAt,omitempty"`
	ExternalID      *string         `gorm:"column:external_id;type:text" json:"externalId,omitempty"`
	Error           *string         `gorm:"column:error;type:text" json:"error,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
