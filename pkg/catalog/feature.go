package catalog

import (
	"fmt"
	"strings"
)

// FeatureID identifies a feature. The set of ids the product uses is closed and
// declared below; catalogs are checked against it at startup with Require.
type FeatureID string

// Feature ids of the recruiting product.
const (
	FeatureCore              FeatureID = "core"
	FeatureJobPostings       FeatureID = "job_postings"
	FeatureCandidateImport   FeatureID = "candidate_import"
	FeatureAIScreening       FeatureID = "ai_screening"
	FeatureEmailSending      FeatureID = "email_sending"
	FeatureCareersPage       FeatureID = "careers_page"
	FeatureCustomBranding    FeatureID = "custom_branding"
	FeatureAPIAccess         FeatureID = "api_access"
	FeatureAdvancedAnalytics FeatureID = "advanced_analytics"
	FeatureSSO               FeatureID = "sso"
	FeatureAuditLog          FeatureID = "audit_log"
)

// KnownFeatures returns every feature id the application code references.
func KnownFeatures() []FeatureID {
	return []FeatureID{
		FeatureCore,
		FeatureJobPostings,
		FeatureCandidateImport,
		FeatureAIScreening,
		FeatureEmailSending,
		FeatureCareersPage,
		FeatureCustomBranding,
		FeatureAPIAccess,
		FeatureAdvancedAnalytics,
		FeatureSSO,
		FeatureAuditLog,
	}
}

// FeatureType classifies how a feature is made available.
type FeatureType string

const (
	TypeAlwaysOn   FeatureType = "always_on"
	TypeFreemium   FeatureType = "freemium" // usage-limited
	TypeAddon      FeatureType = "addon"
	TypeEnterprise FeatureType = "enterprise"
)

// ParseFeatureType validates s against the closed set of feature types.
func ParseFeatureType(s string) (FeatureType, error) {
	switch t := FeatureType(strings.TrimSpace(s)); t {
	case TypeAlwaysOn, TypeFreemium, TypeAddon, TypeEnterprise:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFeatureType, s)
	}
}

// Tier is a named subscription level.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Definition describes a feature. Definitions are immutable once registered.
type Definition struct {
	ID          FeatureID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        FeatureType `json:"type"`
}

// UsageLimited reports whether the feature is bounded by a periodic quota.
func (d Definition) UsageLimited() bool {
	return d.Type == TypeFreemium
}

// Grant is what a tier gives a tenant for one feature.
// A nil Limit means unlimited; Limit is only meaningful for usage-limited features.
type Grant struct {
	Granted bool   `json:"granted"`
	Limit   *int64 `json:"limit"`
}

// Unlimited reports whether the grant has no quota ceiling.
func (g Grant) Unlimited() bool {
	return g.Limit == nil
}

// Quota returns a pointer to n, for building grants and overrides.
func Quota(n int64) *int64 {
	return &n
}

// TierGrants lists the grants of a single tier.
type TierGrants struct {
	Tier   Tier
	Grants map[FeatureID]Grant
}
