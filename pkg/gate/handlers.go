package gate

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/logger"
	"github.com/recruitly/entitlements/pkg/tenant"
)

// ConsumeRequest is the body of the consume endpoint. An empty body consumes 1.
type ConsumeRequest struct {
	Amount int64 `json:"amount"`
}

// CatalogResponse lists the feature definitions and the grants of every tier.
type CatalogResponse struct {
	DefaultTier catalog.Tier                                         `json:"default_tier"`
	Features    []catalog.Definition                                 `json:"features"`
	Tiers       map[catalog.Tier]map[catalog.FeatureID]catalog.Grant `json:"tiers"`
}

type handlers struct {
	svc *entitlement.Service
	log *slog.Logger
}

func (h *handlers) listFeatures(w http.ResponseWriter, r *http.Request) {
	tenantID := mustTenant(r)
	statuses, err := h.svc.ListStatuses(r.Context(), tenantID)
	if err != nil && !errors.Is(err, entitlement.ErrEntitlementUnavailable) {
		h.fail(w, r, err)
		return
	}
	resp := Response{Data: statuses}
	if err != nil {
		// Statuses are complete and closed where a lookup failed.
		resp.Meta = map[string]any{"degraded": true}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getFeature(w http.ResponseWriter, r *http.Request) {
	tenantID := mustTenant(r)
	st, err := h.svc.GetStatus(r.Context(), tenantID, catalog.FeatureID(chi.URLParam(r, "featureID")))
	if err != nil && !errors.Is(err, entitlement.ErrEntitlementUnavailable) {
		h.fail(w, r, err)
		return
	}
	resp := Response{Data: st}
	if err != nil {
		resp.Meta = map[string]any{"degraded": true}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) consume(w http.ResponseWriter, r *http.Request) {
	tenantID := mustTenant(r)

	req := ConsumeRequest{Amount: 1}
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeInvalidBody, ErrInvalidBody.Error())
		return
	}

	featureID := catalog.FeatureID(chi.URLParam(r, "featureID"))
	st, err := h.svc.Consume(r.Context(), tenantID, featureID, req.Amount)
	if err != nil {
		status, code := errorStatus(err)
		if status == http.StatusPaymentRequired {
			writeJSON(w, status, Response{Data: st, Error: &ErrorDetail{Code: code}})
			return
		}
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, st)
}

func (h *handlers) previewTier(w http.ResponseWriter, r *http.Request) {
	tenantID := mustTenant(r)
	preview, err := h.svc.PreviewTierChange(r.Context(), tenantID, catalog.Tier(chi.URLParam(r, "tier")))
	if err != nil {
		if errors.Is(err, entitlement.ErrEntitlementUnavailable) {
			writeError(w, http.StatusServiceUnavailable, CodeEntitlementUnavailable, "")
			return
		}
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, preview)
}

func (h *handlers) catalog(w http.ResponseWriter, r *http.Request) {
	cat := h.svc.Catalog()
	resp := CatalogResponse{
		DefaultTier: cat.DefaultTier(),
		Features:    cat.ListDefinitions(),
		Tiers:       make(map[catalog.Tier]map[catalog.FeatureID]catalog.Grant),
	}
	for _, tier := range cat.Tiers() {
		grants, err := cat.TierGrants(tier)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Tiers[tier] = grants
	}
	writeData(w, http.StatusOK, resp)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
		writeError(w, status, code, "")
		return
	}
	writeError(w, status, code, err.Error())
}

// mustTenant reads the id stored by Guard.TenantFromURL, which every tenant
// route is mounted behind.
func mustTenant(r *http.Request) uuid.UUID {
	id, _ := tenant.IDFromContext(r.Context())
	return id
}
