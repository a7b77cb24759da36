package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

// SocialConnection stores the credential used to deliver to one platform.
// The pipeline reads these; lifecycle is owned by the connections service.
type SocialConnection struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID        uuid.UUID              `gorm:"column:business_id;type:uuid;not null" json:"businessId"`
	LocationID        *uuid.UUID             `gorm:"column:location_id;type:uuid" json:"locationId,omitempty"`
	Platform          enums.Platform         `gorm:"column:platform;type:text;not null" json:"platform"`
	ExternalAccountID string                 `gorm:"column:external_account_id;type:text;not null" json:"externalAccountId"`
	AccessToken       string                 `gorm:"column:access_token;type:text;not null" json:"-"`
	Status            enums.ConnectionStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	CreatedAt         time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
