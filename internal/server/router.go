package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	taskmiddleware "github.com/terraconstructs/taskapi/internal/middleware"
	"github.com/terraconstructs/taskapi/internal/services/task"
	"github.com/terraconstructs/taskapi/internal/services/user"
	"github.com/terraconstructs/taskapi/internal/telemetry"
)

// RouterOptions controls the construction of the taskapi HTTP router.
type RouterOptions struct {
	Checker  taskmiddleware.Checker
	Resolver taskmiddleware.UserResolver
	Tasks    *task.Service
	Users    *user.Service

	Logger  zerolog.Logger
	Metrics *telemetry.ServerMetrics

	CORSOptions *cors.Options

	// LoginRequestsPerMinute throttles /api/auth/login per client IP. Zero disables it.
	LoginRequestsPerMinute int

	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the development CORS policy for the given origins.
func DefaultCORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"WWW-Authenticate", "X-Request-Id"},
		MaxAge:         300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter assembles a chi.Router with shared middleware, the CORS policy and
// the API handlers mounted.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(taskmiddleware.RequestLogger(opts.Logger, opts.Metrics))
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions([]string{"http://localhost:3000"})
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	requireAuth := taskmiddleware.RequireAuthentication(taskmiddleware.AuthnDependencies{
		Checker:  opts.Checker,
		Resolver: opts.Resolver,
		Logger:   opts.Logger,
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/logout", HandleLogout())

		r.Group(func(r chi.Router) {
			if opts.LoginRequestsPerMinute > 0 {
				r.Use(httprate.LimitByIP(opts.LoginRequestsPerMinute, time.Minute))
			}
			r.Use(requireAuth)
			r.Post("/auth/login", HandleLogin())
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			if opts.Tasks != nil {
				th := &taskHandlers{tasks: opts.Tasks, logger: opts.Logger}
				r.Post("/tasks", th.create)
				r.Put("/tasks/{id}", th.update)
				r.Get("/users/me/tasks", th.listMine)
			}

			if opts.Users != nil {
				uh := &userHandlers{users: opts.Users, logger: opts.Logger}
				r.Get("/users", uh.list)
				r.Post("/users", uh.create)
				r.Get("/users/{id}", uh.get)
				r.Put("/users/{id}", uh.update)
				r.Delete("/users/{id}", uh.delete)
			}
		})
	})

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}
