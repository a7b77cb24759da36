package connections

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
)

func setupConnectionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS social_connections (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  location_id TEXT,
  platform TEXT NOT NULL,
  external_account_id TEXT NOT NULL,
  access_token TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func insertConnection(t *testing.T, db *gorm.DB, businessID uuid.UUID, locationID *uuid.UUID, platform enums.Platform, status enums.ConnectionStatus) *models.SocialConnection {
	t.Helper()
	conn := &models.SocialConnection{
		ID:                uuid.New(),
		BusinessID:        businessID,
		LocationID:        locationID,
		Platform:          platform,
		ExternalAccountID: "acct-" + uuid.NewString()[:8],
		AccessToken:       "tok",
		Status:            status,
	}
	require.NoError(t, db.Create(conn).Error)
	return conn
}

func TestFindActiveMatchesBusinessWideConnection(t *testing.T) {
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()

	want := insertConnection(t, db, businessID, nil, enums.PlatformInstagram, enums.ConnectionStatusActive)
	insertConnection(t, db, businessID, nil, enums.PlatformFacebook, enums.ConnectionStatusActive)
	insertConnection(t, db, uuid.New(), nil, enums.PlatformInstagram, enums.ConnectionStatusActive)

	got, err := repo.FindActive(context.Background(), businessID, nil, enums.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
}

func TestFindActiveRequiresExactLocationMatch(t *testing.T) {
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()
	locationID := uuid.New()

	insertConnection(t, db, businessID, nil, enums.PlatformInstagram, enums.ConnectionStatusActive)

	// A location-scoped lookup never falls back to the business-wide row.
	_, err := repo.FindActive(context.Background(), businessID, &locationID, enums.PlatformInstagram)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	scoped := insertConnection(t, db, businessID, &locationID, enums.PlatformInstagram, enums.ConnectionStatusActive)
	got, err := repo.FindActive(context.Background(), businessID, &locationID, enums.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, scoped.ID, got.ID)
}

func TestFindActiveSkipsInactiveConnections(t *testing.T) {
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()

	insertConnection(t, db, businessID, nil, enums.PlatformTwitter, enums.ConnectionStatusExpired)
	insertConnection(t, db, businessID, nil, enums.PlatformTwitter, enums.ConnectionStatusRevoked)

	_, err := repo.FindActive(context.Background(), businessID, nil, enums.PlatformTwitter)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListByBusiness(t *testing.T) {
	db := setupConnectionsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()

	insertConnection(t, db, businessID, nil, enums.PlatformInstagram, enums.ConnectionStatusActive)
	insertConnection(t, db, businessID, nil, enums.PlatformFacebook, enums.ConnectionStatusExpired)
	insertConnection(t, db, uuid.New(), nil, enums.PlatformInstagram, enums.ConnectionStatusActive)

	conns, err := repo.ListByBusiness(context.Background(), businessID)
	require.NoError(t, err)
	assert.Len(t, conns, 2)
}
