package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	"github.com/dmcorrales/brandpulse-backend/pkg/types"
)

// ScheduledPost is a piece of content queued for one or more social platforms.
type ScheduledPost struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID  uuid.UUID         `gorm:"column:business_id;type:uuid;not null" json:"businessId"`
	LocationID  *uuid.UUID        `gorm:"column:location_id;type:uuid" json:"locationId,omitempty"`
	Platforms   pq.StringArray    `gorm:"column:platforms;type:text[];not null" json:"platforms"`
	Content     types.PostContent `gorm:"column:content;type:jsonb;serializer:json" json:"content"`
	MediaURLs   pq.StringArray    `gorm:"column:media_urls;type:text[]" json:"mediaUrls,omitempty"`
	ScheduledAt time.Time         `gorm:"column:scheduled_at;type:timestamptz;not null" json:"scheduledAt"`
	Timezone    string            `gorm:"column:timezone;type:text;not null;default:'UTC'" json:"timezone"`
	Status      enums.PostStatus  `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	Jobs        []PublishingJob   `gorm:"foreignKey:ScheduledPostID;constraint:OnDelete:CASCADE" json:"jobs,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// PlatformSet returns the target platforms as typed values, skipping unknowns.
func (p ScheduledPost) PlatformSet() []enums.Platform {
	platforms := make([]enums.Platform, 0, len(p.Platforms))
	for _, raw := range p.Platforms {
		platform, err := enums.ParsePlatform(raw)
		if err != nil {
			continue
		}
		platforms = append(platforms, platform)
	}
	return platforms
}
