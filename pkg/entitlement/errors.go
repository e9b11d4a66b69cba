package entitlement

import (
	"errors"

	"github.com/recruitly/entitlements/pkg/catalog"
)

var (
	// ErrUnknownFeature is the catalog error, re-exported so callers of this
	// package can match it without importing catalog.
	ErrUnknownFeature = catalog.ErrUnknownFeature
	ErrUnknownTier    = catalog.ErrUnknownTier

	// ErrEntitlementUnavailable means a subscription or usage lookup failed or
	// timed out. The accompanying status is closed; callers may retry.
	ErrEntitlementUnavailable = errors.New("entitlement.errors.unavailable")

	// ErrCounterIntegrity marks a negative usage count. It is logged and
	// counted, never returned to callers; resolution treats usage as 0.
	ErrCounterIntegrity = errors.New("entitlement.errors.counter_integrity")

	ErrFeatureDisabled = errors.New("entitlement.errors.feature_disabled")
	ErrQuotaExceeded   = errors.New("entitlement.errors.quota_exceeded")
	ErrNotUsageLimited = errors.New("entitlement.errors.not_usage_limited")
)
