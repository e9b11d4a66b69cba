package gate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/recruitly/entitlements/pkg/entitlement"
	"github.com/recruitly/entitlements/pkg/usage"
)

// Response is the JSON envelope of every endpoint.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail is the machine-readable part of an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Error codes.
const (
	CodeInvalidTenantID        = "invalid_tenant_id"
	CodeMissingTenant          = "missing_tenant"
	CodeInvalidRole            = "invalid_role"
	CodeUnauthenticated        = "unauthenticated"
	CodeForbidden              = "forbidden"
	CodeInvalidBody            = "invalid_body"
	CodeInvalidAmount          = "invalid_amount"
	CodeUnknownFeature         = "unknown_feature"
	CodeUnknownTier            = "unknown_tier"
	CodeFeatureNotAvailable    = "feature_not_available"
	CodeFeatureDisabled        = "feature_disabled"
	CodeQuotaExceeded          = "quota_exceeded"
	CodeNotUsageLimited        = "not_usage_limited"
	CodeEntitlementUnavailable = "entitlement_unavailable"
	CodeInternal               = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, Response{Error: &ErrorDetail{Code: code, Message: msg}})
}

// errorStatus maps service errors to an HTTP status and error code.
// Lookup failures are reported as 403 so callers never treat them as success.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entitlement.ErrUnknownFeature):
		return http.StatusNotFound, CodeUnknownFeature
	case errors.Is(err, entitlement.ErrUnknownTier):
		return http.StatusNotFound, CodeUnknownTier
	case errors.Is(err, usage.ErrInvalidAmount):
		return http.StatusBadRequest, CodeInvalidAmount
	case errors.Is(err, entitlement.ErrQuotaExceeded):
		return http.StatusPaymentRequired, CodeQuotaExceeded
	case errors.Is(err, entitlement.ErrFeatureDisabled):
		return http.StatusPaymentRequired, CodeFeatureDisabled
	case errors.Is(err, entitlement.ErrNotUsageLimited):
		return http.StatusUnprocessableEntity, CodeNotUsageLimited
	case errors.Is(err, entitlement.ErrEntitlementUnavailable):
		return http.StatusForbidden, CodeEntitlementUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
