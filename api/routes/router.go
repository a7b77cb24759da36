package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmcorrales/brandpulse-backend/api/controllers"
	"github.com/dmcorrales/brandpulse-backend/api/middleware"
	"github.com/dmcorrales/brandpulse-backend/internal/posts"
	"github.com/dmcorrales/brandpulse-backend/pkg/config"
	"github.com/dmcorrales/brandpulse-backend/pkg/db"
	"github.com/dmcorrales/brandpulse-backend/pkg/logger"
	pkgredis "github.com/dmcorrales/brandpulse-backend/pkg/redis"
)

// RouterParams carry the dependencies the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          pkgredis.Pinger
	Idempotency    pkgredis.IdempotencyStore
	IdempotencyTTL time.Duration
	Posts          posts.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BusinessScope(logg))
		r.Use(middleware.Idempotency(params.Idempotency, params.IdempotencyTTL, logg))

		r.Route("/scheduled-posts", func(r chi.Router) {
			r.Get("/", controllers.ScheduledPostList(params.Posts, logg))
			r.Post("/", controllers.ScheduledPostCreate(params.Posts, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.ScheduledPostGet(params.Posts, logg))
				r.Put("/", controllers.ScheduledPostUpdate(params.Posts, logg))
				r.Delete("/", controllers.ScheduledPostDelete(params.Posts, logg))
				r.Post("/duplicate", controllers.ScheduledPostDuplicate(params.Posts, logg))
				r.Get("/jobs", controllers.ScheduledPostJobs(params.Posts, logg))
			})
		})

		r.Get("/publishing-logs", controllers.PublishingLogs(params.Posts, logg))
	})

	return r
}
