package posts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
	"github.com/dmcorrales/brandpulse-backend/pkg/types"
)

func setupPostsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	posts := `
CREATE TABLE IF NOT EXISTS scheduled_posts (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  location_id TEXT,
  platforms TEXT NOT NULL,
  content TEXT NOT NULL,
  media_urls TEXT,
  scheduled_at DATETIME NOT NULL,
  timezone TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	jobs := `
CREATE TABLE IF NOT EXISTS publishing_jobs (
  id TEXT PRIMARY KEY,
  scheduled_post_id TEXT NOT NULL,
  platform TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_attempt_at DATETIME,
  external_id TEXT,
  error TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(posts).Error)
	require.NoError(t, db.Exec(jobs).Error)
	return db
}

type seedPostInput struct {
	businessID  uuid.UUID
	locationID  *uuid.UUID
	status      enums.PostStatus
	scheduledAt time.Time
	createdAt   time.Time
}

func seedScheduledPost(t *testing.T, db *gorm.DB, input seedPostInput) *models.ScheduledPost {
	t.Helper()
	post := &models.ScheduledPost{
		ID:          uuid.New(),
		BusinessID:  input.businessID,
		LocationID:  input.locationID,
		Platforms:   pq.StringArray{"instagram"},
		Content:     types.PostContent{Caption: "caption"},
		ScheduledAt: input.scheduledAt,
		Timezone:    "UTC",
		Status:      input.status,
	}
	require.NoError(t, db.Create(post).Error)
	if !input.createdAt.IsZero() {
		require.NoError(t, db.Model(post).Update("created_at", input.createdAt).Error)
		post.CreatedAt = input.createdAt
	}
	return post
}

func seedJob(t *testing.T, db *gorm.DB, postID uuid.UUID, platform enums.Platform, status enums.JobStatus, createdAt time.Time) *models.PublishingJob {
	t.Helper()
	job := &models.PublishingJob{
		ID:              uuid.New(),
		ScheduledPostID: postID,
		Platform:        platform,
		Status:          status,
	}
	require.NoError(t, db.Create(job).Error)
	if !createdAt.IsZero() {
		require.NoError(t, db.Model(job).Update("created_at", createdAt).Error)
	}
	return job
}

func TestListPostsScopesAndFilters(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()
	now := time.Now().UTC()

	scheduled := seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusScheduled, scheduledAt: now})
	seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusDraft, scheduledAt: now})
	seedScheduledPost(t, db, seedPostInput{businessID: uuid.New(), status: enums.PostStatusScheduled, scheduledAt: now})

	status := enums.PostStatusScheduled
	rows, err := repo.ListPosts(context.Background(), businessID, 10, nil, PostFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, scheduled.ID, rows[0].ID)
}

func TestListPostsDateRangeAndLocation(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()
	locationID := uuid.New()
	now := time.Now().UTC()

	inRange := seedScheduledPost(t, db, seedPostInput{businessID: businessID, locationID: &locationID, status: enums.PostStatusScheduled, scheduledAt: now})
	seedScheduledPost(t, db, seedPostInput{businessID: businessID, locationID: &locationID, status: enums.PostStatusScheduled, scheduledAt: now.Add(-48 * time.Hour)})
	seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusScheduled, scheduledAt: now})

	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)
	rows, err := repo.ListPosts(context.Background(), businessID, 10, nil, PostFilters{
		LocationID: &locationID,
		DateFrom:   &from,
		DateTo:     &to,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, inRange.ID, rows[0].ID)
}

func TestListPostsCursorPagination(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()
	now := time.Now().UTC()

	older := seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusScheduled, scheduledAt: now, createdAt: now.Add(-2 * time.Minute)})
	newer := seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusScheduled, scheduledAt: now, createdAt: now.Add(-time.Minute)})

	first, err := repo.ListPosts(context.Background(), businessID, 1, nil, PostFilters{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, newer.ID, first[0].ID)

	cursor := &pagination.Cursor{CreatedAt: first[0].CreatedAt, ID: first[0].ID}
	second, err := repo.ListPosts(context.Background(), businessID, 10, cursor, PostFilters{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, older.ID, second[0].ID)
}

func TestDeletePendingJobsKeepsResolvedHistory(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	post := seedScheduledPost(t, db, seedPostInput{businessID: uuid.New(), status: enums.PostStatusScheduled, scheduledAt: now})

	seedJob(t, db, post.ID, enums.PlatformInstagram, enums.JobStatusPending, now)
	completed := seedJob(t, db, post.ID, enums.PlatformFacebook, enums.JobStatusCompleted, now)
	processing := seedJob(t, db, post.ID, enums.PlatformTwitter, enums.JobStatusProcessing, now)

	err := repo.DeletePendingJobs(context.Background(), post.ID, []enums.Platform{
		enums.PlatformInstagram, enums.PlatformFacebook, enums.PlatformTwitter,
	})
	require.NoError(t, err)

	remaining, err := repo.ListJobsForPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	assert.Contains(t, ids, completed.ID)
	assert.Contains(t, ids, processing.ID)
}

func TestDeletePostRemovesJobs(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	post := seedScheduledPost(t, db, seedPostInput{businessID: uuid.New(), status: enums.PostStatusScheduled, scheduledAt: now})
	seedJob(t, db, post.ID, enums.PlatformInstagram, enums.JobStatusPending, now)

	require.NoError(t, repo.DeletePost(context.Background(), post.ID))

	jobs, err := repo.ListJobsForPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	_, err = repo.FindPost(context.Background(), post.BusinessID, post.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListLogsFiltersAndOrder(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()
	now := time.Now().UTC()

	post := seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusPublishing, scheduledAt: now})
	older := seedJob(t, db, post.ID, enums.PlatformInstagram, enums.JobStatusFailed, now.Add(-2*time.Minute))
	newer := seedJob(t, db, post.ID, enums.PlatformFacebook, enums.JobStatusFailed, now.Add(-time.Minute))
	seedJob(t, db, post.ID, enums.PlatformTwitter, enums.JobStatusCompleted, now)

	foreign := seedScheduledPost(t, db, seedPostInput{businessID: uuid.New(), status: enums.PostStatusPublishing, scheduledAt: now})
	seedJob(t, db, foreign.ID, enums.PlatformInstagram, enums.JobStatusFailed, now)

	status := enums.JobStatusFailed
	entries, err := repo.ListLogs(context.Background(), businessID, 10, nil, LogFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].JobID)
	assert.Equal(t, older.ID, entries[1].JobID)
	assert.Equal(t, post.ID, entries[0].PostID)
}

func TestListLogsPlatformAndDateFilters(t *testing.T) {
	db := setupPostsTestDB(t)
	repo := NewRepository(db)
	businessID := uuid.New()
	now := time.Now().UTC()

	post := seedScheduledPost(t, db, seedPostInput{businessID: businessID, status: enums.PostStatusPublishing, scheduledAt: now})
	want := seedJob(t, db, post.ID, enums.PlatformInstagram, enums.JobStatusCompleted, now.Add(-time.Minute))
	seedJob(t, db, post.ID, enums.PlatformInstagram, enums.JobStatusCompleted, now.Add(-72*time.Hour))
	seedJob(t, db, post.ID, enums.PlatformFacebook, enums.JobStatusCompleted, now.Add(-time.Minute))

	platform := enums.PlatformInstagram
	from := now.Add(-time.Hour)
	entries, err := repo.ListLogs(context.Background(), businessID, 10, nil, LogFilters{
		Platform: &platform,
		DateFrom: &from,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, want.ID, entries[0].JobID)
}
