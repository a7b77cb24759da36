package posts

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	pkgerrors "github.com/dmcorrales/brandpulse-backend/pkg/errors"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
	"github.com/dmcorrales/brandpulse-backend/pkg/types"
)

type fakePostRepo struct {
	posts map[uuid.UUID]*models.ScheduledPost
	jobs  map[uuid.UUID]*models.PublishingJob
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts: map[uuid.UUID]*models.ScheduledPost{},
		jobs:  map[uuid.UUID]*models.PublishingJob{},
	}
}

func (r *fakePostRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *fakePostRepo) CreatePost(ctx context.Context, post *models.ScheduledPost) (*models.ScheduledPost, error) {
	stored := *post
	r.posts[post.ID] = &stored
	return post, nil
}

func (r *fakePostRepo) CreateJobs(ctx context.Context, jobs []models.PublishingJob) error {
	for _, job := range jobs {
		stored := job
		r.jobs[job.ID] = &stored
	}
	return nil
}

func (r *fakePostRepo) FindPost(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error) {
	post, ok := r.posts[postID]
	if !ok || post.BusinessID != businessID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) ListPosts(ctx context.Context, businessID uuid.UUID, limit int, cursor *pagination.Cursor, filters PostFilters) ([]models.ScheduledPost, error) {
	var rows []models.ScheduledPost
	for _, post := range r.posts {
		if post.BusinessID == businessID {
			rows = append(rows, *post)
		}
	}
	return rows, nil
}

func (r *fakePostRepo) UpdatePost(ctx context.Context, postID uuid.UUID, updates map[string]any) error {
	post, ok := r.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			post.Status = value.(enums.PostStatus)
		case "platforms":
			post.Platforms = value.(pq.StringArray)
		case "content":
			post.Content = value.(types.PostContent)
		case "scheduled_at":
			post.ScheduledAt = value.(time.Time)
		case "timezone":
			post.Timezone = value.(string)
		}
	}
	return nil
}

func (r *fakePostRepo) DeletePost(ctx context.Context, postID uuid.UUID) error {
	delete(r.posts, postID)
	for id, job := range r.jobs {
		if job.ScheduledPostID == postID {
			delete(r.jobs, id)
		}
	}
	return nil
}

func (r *fakePostRepo) DeletePendingJobs(ctx context.Context, postID uuid.UUID, platforms []enums.Platform) error {
	removed := map[enums.Platform]bool{}
	for _, platform := range platforms {
		removed[platform] = true
	}
	for id, job := range r.jobs {
		if job.ScheduledPostID == postID && removed[job.Platform] && job.Status == enums.JobStatusPending {
			delete(r.jobs, id)
		}
	}
	return nil
}

func (r *fakePostRepo) ListJobsForPost(ctx context.Context, postID uuid.UUID) ([]models.PublishingJob, error) {
	var jobs []models.PublishingJob
	for _, job := range r.jobs {
		if job.ScheduledPostID == postID {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (r *fakePostRepo) ListLogs(ctx context.Context, businessID uuid.UUID, limit int, cursor *pagination.Cursor, filters LogFilters) ([]LogEntry, error) {
	return nil, nil
}

func (r *fakePostRepo) jobPlatforms(postID uuid.UUID) map[enums.Platform]enums.JobStatus {
	set := map[enums.Platform]enums.JobStatus{}
	for _, job := range r.jobs {
		if job.ScheduledPostID == postID {
			set[job.Platform] = job.Status
		}
	}
	return set
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *fakePostRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repository: repo,
		Tx:         fakeTxRunner{},
		Logger:     logger.New(logger.Options{ServiceName: "posts-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateScheduledPostFansOutJobs(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  uuid.New(),
		Platforms:   []string{"instagram", "facebook"},
		Content:     types.PostContent{Caption: "spring sale"},
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      enums.PostStatusScheduled,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	set := repo.jobPlatforms(post.ID)
	if len(set) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(set))
	}
	for platform, status := range set {
		if status != enums.JobStatusPending {
			t.Fatalf("%s job created with status %s", platform, status)
		}
	}
}

func TestCreateDraftPostCreatesNoJobs(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  uuid.New(),
		Platforms:   []string{"twitter"},
		Content:     types.PostContent{Caption: "draft idea"},
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.Status != enums.PostStatusDraft {
		t.Fatalf("default status should be draft, got %s", post.Status)
	}
	if len(repo.jobPlatforms(post.ID)) != 0 {
		t.Fatalf("draft post must not fan out jobs")
	}
}

func TestCreateRejectsUnknownPlatform(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID: uuid.New(),
		Platforms:  []string{"myspace"},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdatePlatformSyncAddsAndRemovesJobs(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	businessID := uuid.New()

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  businessID,
		Platforms:   []string{"instagram", "facebook"},
		Content:     types.PostContent{Caption: "launch"},
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      enums.PostStatusScheduled,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Update(context.Background(), businessID, post.ID, UpdatePostInput{
		Platforms: []string{"instagram", "linkedin"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	set := repo.jobPlatforms(post.ID)
	if len(set) != 2 {
		t.Fatalf("expected 2 jobs after sync, got %d", len(set))
	}
	if _, ok := set[enums.PlatformFacebook]; ok {
		t.Fatalf("pending facebook job should be removed")
	}
	if set[enums.PlatformLinkedIn] != enums.JobStatusPending {
		t.Fatalf("linkedin job missing after sync")
	}
}

func TestUpdateKeepsResolvedJobsOfRemovedPlatforms(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	businessID := uuid.New()

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  businessID,
		Platforms:   []string{"instagram", "facebook"},
		Content:     types.PostContent{Caption: "launch"},
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      enums.PostStatusScheduled,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, job := range repo.jobs {
		if job.Platform == enums.PlatformFacebook {
			job.Status = enums.JobStatusCompleted
		}
	}

	_, err = svc.Update(context.Background(), businessID, post.ID, UpdatePostInput{
		Platforms: []string{"instagram"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	set := repo.jobPlatforms(post.ID)
	if set[enums.PlatformFacebook] != enums.JobStatusCompleted {
		t.Fatalf("resolved facebook job must survive platform removal")
	}
}

func TestUpdateSchedulingDraftFansOut(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	businessID := uuid.New()

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  businessID,
		Platforms:   []string{"instagram"},
		Content:     types.PostContent{Caption: "draft"},
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(repo.jobPlatforms(post.ID)) != 0 {
		t.Fatalf("draft should start without jobs")
	}

	scheduled := enums.PostStatusScheduled
	_, err = svc.Update(context.Background(), businessID, post.ID, UpdatePostInput{Status: &scheduled})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if set := repo.jobPlatforms(post.ID); set[enums.PlatformInstagram] != enums.JobStatusPending {
		t.Fatalf("scheduling a draft must fan out pending jobs")
	}
}

func TestUpdateRejectsTerminalPost(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	businessID := uuid.New()

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  businessID,
		Platforms:   []string{"instagram"},
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.posts[post.ID].Status = enums.PostStatusPublished

	_, err = svc.Update(context.Background(), businessID, post.ID, UpdatePostInput{})
	if err == nil {
		t.Fatalf("expected state conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDuplicateProducesFreshPendingJobs(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)
	businessID := uuid.New()

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  businessID,
		Platforms:   []string{"instagram", "facebook"},
		Content:     types.PostContent{Caption: "original"},
		ScheduledAt: time.Now().Add(time.Hour),
		Status:      enums.PostStatusScheduled,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, job := range repo.jobs {
		job.Status = enums.JobStatusCompleted
	}

	clone, err := svc.Duplicate(context.Background(), businessID, post.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if clone.ID == post.ID {
		t.Fatalf("duplicate reused the source id")
	}
	if clone.Status != enums.PostStatusScheduled {
		t.Fatalf("duplicate of a scheduled post must be scheduled, got %s", clone.Status)
	}

	set := repo.jobPlatforms(clone.ID)
	if len(set) != 2 {
		t.Fatalf("expected 2 fresh jobs, got %d", len(set))
	}
	for platform, status := range set {
		if status != enums.JobStatusPending {
			t.Fatalf("%s clone job created with status %s", platform, status)
		}
	}
}

func TestGetScopesByBusiness(t *testing.T) {
	repo := newFakePostRepo()
	svc := newTestService(t, repo)

	post, err := svc.Create(context.Background(), CreatePostInput{
		BusinessID:  uuid.New(),
		Platforms:   []string{"instagram"},
		ScheduledAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), post.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-business read must look like not found, got %v", err)
	}
}
