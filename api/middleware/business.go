package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmcorrales/brandpulse-backend/api/responses"
	pkgerrors "github.com/dmcorrales/brandpulse-backend/pkg/errors"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
)

const businessIDHeader = "X-Business-ID"

type contextKey string

const businessIDKey contextKey = "business_id"

// BusinessScope requires a valid X-Business-ID header and carries the parsed
// id through the request context. Every tenant-scoped route sits behind it.
func BusinessScope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(businessIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "X-Business-ID header required"))
				return
			}
			businessID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Business-ID must be a valid uuid"))
				return
			}

			ctx := context.WithValue(r.Context(), businessIDKey, businessID)
			if logg != nil {
				ctx = logg.WithBusinessID(ctx, businessID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithBusinessID returns a context scoped to the given business id.
func WithBusinessID(ctx context.Context, businessID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, businessIDKey, businessID)
}

// BusinessIDFromContext returns the scoped business id, or uuid.Nil when the
// request did not pass through BusinessScope.
func BusinessIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(businessIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
