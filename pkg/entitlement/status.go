package entitlement

import (
	"github.com/recruitly/entitlements/pkg/catalog"
	"github.com/recruitly/entitlements/pkg/tenant"
)

// FeatureStatus is the resolved state of one feature for one tenant.
// It is computed on demand and never stored.
//
// Used, Limit and Remaining are nil for features that are not usage-limited.
// For usage-limited features Used is always set and a nil Limit (and
// Remaining) means unlimited.
type FeatureStatus struct {
	FeatureID    catalog.FeatureID `json:"feature_id"`
	Enabled      bool              `json:"enabled"`
	CanUse       bool              `json:"can_use"`
	UsageLimited bool              `json:"usage_limited"`
	Used         *int64            `json:"used"`
	Limit        *int64            `json:"limit"`
	Remaining    *int64            `json:"remaining"`
	// Unavailable is set when the status was closed because a lookup failed.
	Unavailable bool `json:"unavailable,omitempty"`
}

// Inputs is everything Resolve needs for one feature.
type Inputs struct {
	Definition catalog.Definition
	// Grant is the tier grant; the zero value means the tier does not grant the feature.
	Grant catalog.Grant
	// Override is the tenant exception, nil when there is none.
	Override *tenant.Override
	// Used is the current period count. Ignored for features that are not usage-limited.
	Used int64
}

// Resolve computes a FeatureStatus. It is pure: it performs no I/O and
// mutates nothing.
//
// An override replaces the tier default field by field: a set Enabled wins
// over the grant, a set limit wins over the tier quota. A limit of 0 is
// never usable.
func Resolve(in Inputs) FeatureStatus {
	st := FeatureStatus{
		FeatureID:    in.Definition.ID,
		Enabled:      in.Grant.Granted,
		UsageLimited: in.Definition.UsageLimited(),
	}
	if in.Override != nil && in.Override.Enabled != nil {
		st.Enabled = *in.Override.Enabled
	}

	if !st.UsageLimited {
		st.CanUse = st.Enabled
		return st
	}

	limit := in.Grant.Limit
	if in.Override != nil && in.Override.HasLimit() {
		limit = in.Override.EffectiveLimit()
	}

	used := max(in.Used, 0)
	st.Used = catalog.Quota(used)
	if limit == nil {
		st.CanUse = st.Enabled
		return st
	}

	st.Limit = catalog.Quota(*limit)
	st.Remaining = catalog.Quota(max(*limit-used, 0))
	st.CanUse = st.Enabled && used < *limit
	return st
}

// closed is the fail-safe status returned when a lookup fails.
func closed(def catalog.Definition) FeatureStatus {
	return FeatureStatus{
		FeatureID:    def.ID,
		UsageLimited: def.UsageLimited(),
		Unavailable:  true,
	}
}
