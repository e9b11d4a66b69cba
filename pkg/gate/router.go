package gate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/rbac"
)

type routerOptions struct {
	guardOpts []GuardOption
	metrics   http.Handler
	health    http.Handler
	log       *slog.Logger
}

// RouterOption configures NewRouter.
type RouterOption func(*routerOptions)

// WithGuard passes options to the router's Guard.
func WithGuard(opts ...GuardOption) RouterOption {
	return func(o *routerOptions) {
		o.guardOpts = append(o.guardOpts, opts...)
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(o *routerOptions) {
		o.metrics = h
	}
}

// WithHealthHandler mounts h on GET /health.
func WithHealthHandler(h http.Handler) RouterOption {
	return func(o *routerOptions) {
		o.health = h
	}
}

// WithRouterLogger sets the logger for request logs and handler errors.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(o *routerOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewRouter returns the entitlement HTTP API.
//
//	GET  /catalog                                         public
//	GET  /tenants/{tenantID}/features                     viewer
//	GET  /tenants/{tenantID}/features/{featureID}         viewer
//	POST /tenants/{tenantID}/features/{featureID}/consume member
//	GET  /tenants/{tenantID}/tier-preview/{tier}          billing.read
func NewRouter(svc *entitlement.Service, ev *rbac.Evaluator, opts ...RouterOption) chi.Router {
	o := routerOptions{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	g := NewGuard(svc, ev, append([]GuardOption{WithGuardLogger(o.log)}, o.guardOpts...)...)
	h := &handlers{svc: svc, log: o.log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(o.log))
	r.Use(middleware.Recoverer)

	if o.health != nil {
		r.Method(http.MethodGet, "/health", o.health)
	}
	if o.metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.metrics)
	}

	r.Get("/catalog", h.catalog)

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Use(g.TenantFromURL("tenantID"))
		r.Use(g.Roles)

		r.With(g.RequireRole(rbac.RoleViewer)).Get("/features", h.listFeatures)
		r.With(g.RequireRole(rbac.RoleViewer)).Get("/features/{featureID}", h.getFeature)
		r.With(g.RequireRole(rbac.RoleMember)).Post("/features/{featureID}/consume", h.consume)
		r.With(g.RequirePermission(rbac.PermBillingRead)).Get("/tier-preview/{tier}", h.previewTier)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.LogAttrs(r.Context(), slog.LevelDebug, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(started)),
			)
		})
	}
}

// RequestIDExtractor enriches log records with the chi request id.
func RequestIDExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := middleware.GetReqID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}
