package connections

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

// Repository defines read access to social connection records.
type Repository interface {
	FindActive(ctx context.Context, businessID uuid.UUID, locationID *uuid.UUID, platform enums.Platform) (*models.SocialConnection, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.SocialConnection, error)
}
