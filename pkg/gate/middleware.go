package gate

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/metrics"
	"github.com/recruitly/entitlements/pkg/rbac"
	"github.com/recruitly/entitlements/pkg/tenant"
)

// RoleHeader carries the acting user's role when HeaderRole is the extractor.
const RoleHeader = "X-User-Role"

// RoleExtractor returns the raw role of the request's user, if any.
type RoleExtractor func(r *http.Request) (string, bool)

// HeaderRole reads the role from RoleHeader.
func HeaderRole(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get(RoleHeader))
	return v, v != ""
}

// Guard builds request guards. A zero Guard is not usable; use NewGuard.
type Guard struct {
	svc     *entitlement.Service
	ev      *rbac.Evaluator
	roles   RoleExtractor
	metrics *metrics.Metrics
	log     *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRoleExtractor replaces HeaderRole.
func WithRoleExtractor(fn RoleExtractor) GuardOption {
	return func(g *Guard) {
		if fn != nil {
			g.roles = fn
		}
	}
}

// WithGuardMetrics records denials.
func WithGuardMetrics(m *metrics.Metrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithGuardLogger sets the logger.
func WithGuardLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// NewGuard panics if svc or ev is nil.
func NewGuard(svc *entitlement.Service, ev *rbac.Evaluator, opts ...GuardOption) *Guard {
	if svc == nil {
		panic("gate: entitlement service is required")
	}
	if ev == nil {
		panic("gate: rbac evaluator is required")
	}
	g := &Guard{
		svc:   svc,
		ev:    ev,
		roles: HeaderRole,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TenantFromURL parses the named URL parameter as the tenant id and stores
// it with tenant.WithTenantID. Malformed ids are rejected with 400.
func (g *Guard) TenantFromURL(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil || id == uuid.Nil {
				g.deny(w, r, http.StatusBadRequest, CodeInvalidTenantID, ErrInvalidTenantID.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(tenant.WithTenantID(r.Context(), id)))
		})
	}
}

// Roles resolves the user's role with the configured extractor and stores it
// with rbac.WithRole. Requests without a role pass through unchanged; a role
// the evaluator does not know is rejected with 400.
func (g *Guard) Roles(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := g.roles(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		role, err := g.ev.ParseRole(raw)
		if err != nil {
			g.deny(w, r, http.StatusBadRequest, CodeInvalidRole, ErrInvalidRole.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(rbac.WithRole(r.Context(), role)))
	})
}

// RequireFeature lets the request through only when the tenant in context
// can use the feature now. Otherwise it answers 402 with the feature status.
// A failed lookup is answered with 403; it is never treated as allowed.
func (g *Guard) RequireFeature(featureID catalog.FeatureID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID, ok := tenant.IDFromContext(r.Context())
			if !ok {
				g.deny(w, r, http.StatusBadRequest, CodeMissingTenant, ErrMissingTenant.Error())
				return
			}

			st, err := g.svc.GetStatus(r.Context(), tenantID, featureID)
			switch {
			case errors.Is(err, entitlement.ErrEntitlementUnavailable):
				g.deny(w, r, http.StatusForbidden, CodeEntitlementUnavailable, "entitlement could not be verified")
				return
			case err != nil:
				g.log.ErrorContext(r.Context(), "feature guard failed",
					logger.FeatureID(featureID),
					logger.Error(err),
				)
				g.deny(w, r, http.StatusInternalServerError, CodeInternal, "")
				return
			case !st.CanUse:
				g.metrics.GateDenied(CodeFeatureNotAvailable)
				writeJSON(w, http.StatusPaymentRequired, Response{
					Data:  st,
					Error: &ErrorDetail{Code: CodeFeatureNotAvailable, Message: string(featureID) + " is not available on the current plan"},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission requires the role in context to hold perm.
func (g *Guard) RequirePermission(perm rbac.Permission) func(http.Handler) http.Handler {
	return g.requireRole(func(role rbac.Role) (bool, error) {
		return g.ev.HasPermission(role, perm)
	})
}

// RequireRole requires the role in context to rank at least minRole.
func (g *Guard) RequireRole(minRole rbac.Role) func(http.Handler) http.Handler {
	return g.requireRole(func(role rbac.Role) (bool, error) {
		return g.ev.IsAtLeast(role, minRole)
	})
}

func (g *Guard) requireRole(check func(rbac.Role) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := rbac.RequireRoleFromContext(r.Context())
			if err != nil {
				g.deny(w, r, http.StatusUnauthorized, CodeUnauthenticated, "role is required")
				return
			}
			ok, err := check(role)
			if err != nil {
				// Unknown permission or role in route configuration.
				g.log.ErrorContext(r.Context(), "role guard misconfigured", logger.Role(role), logger.Error(err))
				g.deny(w, r, http.StatusInternalServerError, CodeInternal, "")
				return
			}
			if !ok {
				g.deny(w, r, http.StatusForbidden, CodeForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	g.metrics.GateDenied(code)
	g.log.DebugContext(r.Context(), "request denied",
		slog.String("code", code),
		slog.Int("status", status),
		slog.String("path", r.URL.Path),
	)
	writeError(w, status, code, msg)
}
