package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/api/middleware"
	"github.com/dmcorrales/brandpulse-backend/api/responses"
	"github.com/dmcorrales/brandpulse-backend/api/validators"
	"github.com/dmcorrales/brandpulse-backend/internal/posts"
	"github.com/dmcorrales/brandpulse-backend/pkg/enums"
	pkgerrors "github.com/dmcorrales/brandpulse-backend/pkg/errors"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
	"github.com/dmcorrales/brandpulse-backend/pkg/types"
)

type postCreateRequest struct {
	LocationID  *string           `json:"locationId"`
	Platforms   []string          `json:"platforms" validate:"required,min=1"`
	Content     types.PostContent `json:"content" validate:"required"`
	MediaURLs   []string          `json:"mediaUrls"`
	ScheduledAt time.Time         `json:"scheduledAt" validate:"required"`
	Timezone    string            `json:"timezone"`
	Status      string            `json:"status"`
}

func (req postCreateRequest) toInput(businessID uuid.UUID) (posts.CreatePostInput, error) {
	input := posts.CreatePostInput{
		BusinessID:  businessID,
		Platforms:   req.Platforms,
		Content:     req.Content,
		MediaURLs:   req.MediaURLs,
		ScheduledAt: req.ScheduledAt,
		Timezone:    req.Timezone,
	}
	if req.LocationID != nil {
		locationID, err := uuid.Parse(strings.TrimSpace(*req.LocationID))
		if err != nil {
			return posts.CreatePostInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid locationId")
		}
		input.LocationID = &locationID
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := enums.ParsePostStatus(raw)
		if err != nil {
			return posts.CreatePostInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = status
	}
	return input, nil
}

type postUpdateRequest struct {
	Platforms   []string           `json:"platforms"`
	Content     *types.PostContent `json:"content"`
	MediaURLs   []string           `json:"mediaUrls"`
	ScheduledAt *time.Time         `json:"scheduledAt"`
	Timezone    *string            `json:"timezone"`
	Status      *string            `json:"status"`
}

func (req postUpdateRequest) toInput() (posts.UpdatePostInput, error) {
	input := posts.UpdatePostInput{
		Platforms:   req.Platforms,
		Content:     req.Content,
		MediaURLs:   req.MediaURLs,
		ScheduledAt: req.ScheduledAt,
		Timezone:    req.Timezone,
	}
	if req.Status != nil {
		status, err := enums.ParsePostStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			return posts.UpdatePostInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

// ScheduledPostCreate handles POST /api/v1/scheduled-posts.
func ScheduledPostCreate(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())

		var payload postCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput(businessID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

// ScheduledPostList handles GET /api/v1/scheduled-posts.
func ScheduledPostList(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := postFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), businessID, limit, r.URL.Query().Get("cursor"), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ScheduledPostGet handles GET /api/v1/scheduled-posts/{id}.
func ScheduledPostGet(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Get(r.Context(), businessID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// ScheduledPostUpdate handles PUT /api/v1/scheduled-posts/{id}.
func ScheduledPostUpdate(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload postUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Update(r.Context(), businessID, postID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// ScheduledPostDuplicate handles POST /api/v1/scheduled-posts/{id}/duplicate.
func ScheduledPostDuplicate(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clone, err := svc.Duplicate(r.Context(), businessID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, clone)
	}
}

// ScheduledPostDelete handles DELETE /api/v1/scheduled-posts/{id}.
func ScheduledPostDelete(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), businessID, postID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ScheduledPostJobs handles GET /api/v1/scheduled-posts/{id}/jobs.
func ScheduledPostJobs(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		jobs, err := svc.ListJobs(r.Context(), businessID, postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, jobs)
	}
}

func postFiltersFromQuery(r *http.Request) (posts.PostFilters, error) {
	status, err := validators.ParseQueryPostStatus(r, "status")
	if err != nil {
		return posts.PostFilters{}, err
	}
	platform, err := validators.ParseQueryPlatform(r, "platform")
	if err != nil {
		return posts.PostFilters{}, err
	}
	locationID, err := validators.ParseQueryUUID(r, "locationId")
	if err != nil {
		return posts.PostFilters{}, err
	}
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return posts.PostFilters{}, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return posts.PostFilters{}, err
	}
	return posts.PostFilters{
		Status:     status,
		Platform:   platform,
		LocationID: locationID,
		DateFrom:   from,
		DateTo:     to,
	}, nil
}
