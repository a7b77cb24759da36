package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/dmcorrales/brandpulse-backend/pkg/db/models"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	pkgerrors "github.com/dmcorrales/brandpulse-backend/pkg/errors"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

// ServiceParams configure the posts service.
type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Logger     *logger.Logger
	Now        func() time.Time
}

// NewService builds a scheduled-posts service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("posts repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo: params.Repository,
		tx:   params.Tx,
		logg: params.Logger,
		now:  now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreatePostInput) (*models.ScheduledPost, error) {
	platforms, err := enums.ParsePlatforms(input.Platforms)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platforms")
	}
	status := input.Status
	if status == "" {
		status = enums.PostStatusDraft
	}
	if status != enums.PostStatusDraft && status != enums.PostStatusScheduled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("posts cannot be created with status %q", status))
	}
	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}

	post := &models.ScheduledPost{
		ID:          uuid.New(),
		BusinessID:  input.BusinessID,
		LocationID:  input.LocationID,
		Platforms:   platformStrings(platforms),
		Content:     input.Content,
		MediaURLs:   pq.StringArray(input.MediaURLs),
		ScheduledAt: input.ScheduledAt.UTC(),
		Timezone:    timezone,
		Status:      status,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreatePost(ctx, post); err != nil {
			return err
		}
		if status == enums.PostStatusScheduled {
			return repo.CreateJobs(ctx, buildJobs(post.ID, platforms))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduled post: %w", err)
	}

	ctx = s.logg.WithPostID(ctx, post.ID.String())
	s.logg.Info(s.logg.WithField(ctx, "status", post.Status), "scheduled post created")
	return post, nil
}

func (s *service) Get(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error) {
	post, err := s.repo.FindPost(ctx, businessID, postID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return post, nil
}

func (s *service) List(ctx context.Context, businessID uuid.UUID, limit int, cursor string, filters PostFilters) (*PostList, error) {
	parsedCursor, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListPosts(ctx, businessID, pagination.LimitWithBuffer(limit), parsedCursor, filters)
	if err != nil {
		return nil, fmt.Errorf("list scheduled posts: %w", err)
	}

	list := &PostList{Posts: rows}
	if len(rows) > pageSize {
		list.Posts = rows[:pageSize]
		last := list.Posts[pageSize-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, businessID, postID uuid.UUID, input UpdatePostInput) (*models.ScheduledPost, error) {
	post, err := s.repo.FindPost(ctx, businessID, postID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if post.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("post in status %q cannot be edited", post.Status))
	}

	updates := map[string]any{}
	targetStatus := post.Status
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *input.Status))
		}
		targetStatus = *input.Status
		updates["status"] = targetStatus
	}

	targetPlatforms := post.PlatformSet()
	if input.Platforms != nil {
		parsed, err := enums.ParsePlatforms(input.Platforms)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platforms")
		}
		targetPlatforms = parsed
		updates["platforms"] = platformStrings(parsed)
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.MediaURLs != nil {
		updates["media_urls"] = pq.StringArray(input.MediaURLs)
	}
	if input.ScheduledAt != nil {
		updates["scheduled_at"] = input.ScheduledAt.UTC()
	}
	if input.Timezone != nil {
		updates["timezone"] = strings.TrimSpace(*input.Timezone)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if err := repo.UpdatePost(ctx, post.ID, updates); err != nil {
				return err
			}
		}
		return s.syncJobs(ctx, repo, post.ID, targetStatus, targetPlatforms)
	})
	if err != nil {
		return nil, fmt.Errorf("update scheduled post: %w", err)
	}

	updated, err := s.repo.FindPost(ctx, businessID, postID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	s.logg.Info(s.logg.WithPostID(ctx, postID.String()), "scheduled post updated")
	return updated, nil
}

// syncJobs reconciles the job set with the post's target platforms. New
// platforms get pending jobs once the post is scheduled or publishing;
// removed platforms lose only their still-pending jobs.
func (s *service) syncJobs(ctx context.Context, repo Repository, postID uuid.UUID, status enums.PostStatus, platforms []enums.Platform) error {
	existing, err := repo.ListJobsForPost(ctx, postID)
	if err != nil {
		return err
	}

	covered := map[enums.Platform]bool{}
	for _, job := range existing {
		covered[job.Platform] = true
	}
	wanted := map[enums.Platform]bool{}
	for _, platform := range platforms {
		wanted[platform] = true
	}

	var removed []enums.Platform
	for platform := range covered {
		if !wanted[platform] {
			removed = append(removed, platform)
		}
	}
	if err := repo.DeletePendingJobs(ctx, postID, removed); err != nil {
		return err
	}

	if status != enums.PostStatusScheduled && status != enums.PostStatusPublishing {
		return nil
	}
	var missing []enums.Platform
	for _, platform := range platforms {
		if !covered[platform] {
			missing = append(missing, platform)
		}
	}
	return repo.CreateJobs(ctx, buildJobs(postID, missing))
}

// Duplicate copies a post's content into a fresh record. Drafts stay drafts;
// anything else becomes a scheduled copy with brand new pending jobs.
func (s *service) Duplicate(ctx context.Context, businessID, postID uuid.UUID) (*models.ScheduledPost, error) {
	source, err := s.repo.FindPost(ctx, businessID, postID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	status := enums.PostStatusScheduled
	if source.Status == enums.PostStatusDraft {
		status = enums.PostStatusDraft
	}

	clone := &models.ScheduledPost{
		ID:          uuid.New(),
		BusinessID:  source.BusinessID,
		LocationID:  source.LocationID,
		Platforms:   source.Platforms,
		Content:     source.Content,
		MediaURLs:   source.MediaURLs,
		ScheduledAt: source.ScheduledAt,
		Timezone:    source.Timezone,
		Status:      status,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreatePost(ctx, clone); err != nil {
			return err
		}
		if status == enums.PostStatusScheduled {
			return repo.CreateJobs(ctx, buildJobs(clone.ID, clone.PlatformSet()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("duplicate scheduled post: %w", err)
	}

	s.logg.Info(s.logg.WithPostID(ctx, clone.ID.String()), "scheduled post duplicated")
	return clone, nil
}

func (s *service) Delete(ctx context.Context, businessID, postID uuid.UUID) error {
	if _, err := s.repo.FindPost(ctx, businessID, postID); err != nil {
		return notFoundOr(err)
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("delete scheduled post: %w", err)
	}
	s.logg.Info(s.logg.WithPostID(ctx, postID.String()), "scheduled post deleted")
	return nil
}

func (s *service) ListJobs(ctx context.Context, businessID, postID uuid.UUID) ([]models.PublishingJob, error) {
	if _, err := s.repo.FindPost(ctx, businessID, postID); err != nil {
		return nil, notFoundOr(err)
	}
	return s.repo.ListJobsForPost(ctx, postID)
}

func (s *service) ListLogs(ctx context.Context, businessID uuid.UUID, limit int, cursor string, filters LogFilters) (*LogList, error) {
	parsedCursor, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(limit)
	rows, err := s.repo.ListLogs(ctx, businessID, pagination.LimitWithBuffer(limit), parsedCursor, filters)
	if err != nil {
		return nil, fmt.Errorf("list publishing logs: %w", err)
	}

	list := &LogList{Entries: rows}
	if len(rows) > pageSize {
		list.Entries = rows[:pageSize]
		last := list.Entries[pageSize-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.JobID})
	}
	return list, nil
}

func buildJobs(postID uuid.UUID, platforms []enums.Platform) []models.PublishingJob {
	jobs := make([]models.PublishingJob, 0, len(platforms))
	for _, platform := range platforms {
		jobs = append(jobs, models.PublishingJob{
			ID:              uuid.New(),
			ScheduledPostID: postID,
			Platform:        platform,
			Status:          enums.JobStatusPending,
		})
	}
	return jobs
}

func platformStrings(platforms []enums.Platform) pq.StringArray {
	values := make(pq.StringArray, 0, len(platforms))
	for _, platform := range platforms {
		values = append(values, platform.String())
	}
	return values
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "scheduled post not found")
	}
	return err
}
