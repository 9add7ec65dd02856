package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/grocer-backend/api/controllers"
	"github.com/angelmondragon/grocer-backend/api/middleware"
	"github.com/angelmondragon/grocer-backend/internal/items"
	"github.com/angelmondragon/grocer-backend/internal/sessions"
	"github.com/angelmondragon/grocer-backend/internal/stores"
	"github.com/angelmondragon/grocer-backend/pkg/config"
	"github.com/angelmondragon/grocer-backend/pkg/db"
	"github.com/angelmondragon/grocer-backend/pkg/logger"
	"github.com/angelmondragon/grocer-backend/pkg/metrics"
	"github.com/angelmondragon/grocer-backend/pkg/redis"
)

// Params carries everything the router wires into handlers. Redis and
// Metrics are optional.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Sessions sessions.Service
	Stores   stores.Service
	Items    items.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	r := chi.NewRouter()

	var (
		idempotencyStore redis.IdempotencyStore
		cachePinger      redis.Pinger
	)
	if p.Redis != nil {
		idempotencyStore = p.Redis
		cachePinger = p.Redis
	}

	var httpMetrics *metrics.HTTPMetrics
	if p.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(p.Registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, cachePinger))
	})
	if p.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", controllers.SessionList(p.Sessions, logg))
			r.Post("/", controllers.SessionCreate(p.Sessions, logg))
			r.Get("/active", controllers.SessionListActive(p.Sessions, logg))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", controllers.SessionGet(p.Sessions, logg))
				r.Patch("/", controllers.SessionUpdate(p.Sessions, logg))
				r.Delete("/", controllers.SessionDelete(p.Sessions, logg))
				r.Get("/users", controllers.SessionMembers(p.Sessions, logg))
				r.Post("/users", controllers.SessionJoin(p.Sessions, logg))
			})
		})

		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(p.Stores, logg))
			r.Post("/", controllers.StoreCreate(p.Stores, logg))
			r.Route("/{storeId}", func(r chi.Router) {
				r.Get("/", controllers.StoreGet(p.Stores, logg))
				r.Patch("/", controllers.StoreUpdate(p.Stores, logg))
				r.Delete("/", controllers.StoreDelete(p.Stores, logg))
				r.Route("/items", func(r chi.Router) {
					r.Get("/", controllers.ItemList(p.Items, logg))
					r.Post("/", controllers.ItemCreate(p.Items, logg))
					r.Get("/{itemId}", controllers.ItemGet(p.Items, logg))
					r.Patch("/{itemId}", controllers.ItemUpdate(p.Items, logg))
					r.Delete("/{itemId}", controllers.ItemDelete(p.Items, logg))
				})
			})
		})
	})

	return r
}
