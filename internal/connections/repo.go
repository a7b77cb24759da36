package connections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a connections repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindActive resolves the active connection for a business, location and
// platform. A nil locationID matches only business-wide connections, never a
// location-scoped one.
func (r *repository) FindActive(ctx context.Context, businessID uuid.UUID, locationID *uuid.UUID, platform enums.Platform) (*models.SocialConnection, error) {
	query := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Where("platform = ?", platform).
		Where("status = ?", enums.ConnectionStatusActive)
	if locationID == nil {
		query = query.Where("location_id IS NULL")
	} else {
		query = query.Where("location_id = ?", *locationID)
	}

	var conn models.SocialConnection
	if err := query.First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.SocialConnection, error) {
	var conns []models.SocialConnection
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC").
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}
