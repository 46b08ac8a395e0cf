// Package httptransport assembles the public HTTP surface: the
// middleware chain, the feature routers, and the operational endpoints.
// It holds no business logic of its own.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geekskaran/cattel/internal/admin"
	"github.com/geekskaran/cattel/internal/auth"
	"github.com/geekskaran/cattel/internal/platform/metrics"
	"github.com/geekskaran/cattel/internal/platform/middleware"
	"github.com/geekskaran/cattel/internal/registration"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/httputil"
)

// Deps are the wired collaborators the router mounts.
type Deps struct {
	Auth         *auth.Handler
	Registration *registration.Handler
	Admin        *admin.Handler
	Tokens       middleware.TokenValidator
	Revocations  middleware.RevocationChecker
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Health       func() error
}

// NewRouter builds the full route tree. Public account endpoints skip
// authentication; everything else requires a valid, unrevoked session.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", healthHandler(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(public chi.Router) {
		public.Use(middleware.ContentTypeJSON)
		deps.Auth.Register(public)
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(deps.Tokens, deps.Revocations, deps.Logger))
		deps.Registration.Register(authed)

		authed.Group(func(adminOnly chi.Router) {
			adminOnly.Use(middleware.RequireRole(deps.Logger, id.RoleRegionalAdmin, id.RoleSuperAdmin))
			deps.Admin.Register(adminOnly)
		})
	})

	return r
}

func healthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
