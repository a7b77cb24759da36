package controllers

import (
	"net/http"

	"github.com/dmcorrales/brandpulse-backend/api/middleware"
	"github.com/dmcorrales/brandpulse-backend/api/responses"
	"github.com/dmcorrales/brandpulse-backend/api/validators"
	"github.com/dmcorrales/brandpulse-backend/internal/posts"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	"github.com/dmcorrales/brandpulse-backend/pkg/pagination"
)

// PublishingLogs handles GET /api/v1/publishing-logs.
func PublishingLogs(svc posts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := middleware.BusinessIDFromContext(r.Context())

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := validators.ParseQueryJobStatus(r, "status")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		platform, err := validators.ParseQueryPlatform(r, "platform")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListLogs(r.Context(), businessID, limit, r.URL.Query().Get("cursor"), posts.LogFilters{
			Status:   status,
			Platform: platform,
			DateFrom: from,
			DateTo:   to,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
