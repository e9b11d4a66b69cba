package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
)

// Subscription is a tenant's tier plus its per-feature exceptions.
// It is owned by billing and admin tooling; this module only reads it.
type Subscription struct {
	TenantID  uuid.UUID                      `json:"tenant_id"`
	Tier      catalog.Tier                   `json:"tier"`
	Overrides map[catalog.FeatureID]Override `json:"overrides,omitempty"`
	UpdatedAt time.Time                      `json:"updated_at,omitzero"`
	// BillingEmail receives quota notices. Empty when unknown.
	BillingEmail string `json:"billing_email,omitempty"`
}

// Override replaces the tier default for one feature. Each set field wins
// outright over the tier grant; fields left nil fall back to the tier.
type Override struct {
	// Enabled forces the feature on or off.
	Enabled *bool `json:"enabled,omitempty"`
	// Limit replaces the tier quota. Ignored when Unlimited is set.
	Limit *int64 `json:"limit,omitempty"`
	// Unlimited lifts the quota entirely.
	Unlimited bool `json:"unlimited,omitempty"`
}

// HasLimit reports whether the override replaces the quota.
func (o Override) HasLimit() bool {
	return o.Unlimited || o.Limit != nil
}

// EffectiveLimit returns the override quota; nil means unlimited.
// Only meaningful when HasLimit is true.
func (o Override) EffectiveLimit() *int64 {
	if o.Unlimited || o.Limit == nil {
		return nil
	}
	return catalog.Quota(*o.Limit)
}

// Override returns the tenant override for a feature, if any.
func (s *Subscription) Override(id catalog.FeatureID) (Override, bool) {
	if s == nil || s.Overrides == nil {
		return Override{}, false
	}
	o, ok := s.Overrides[id]
	return o, ok
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	out := *s
	if s.Overrides != nil {
		out.Overrides = make(map[catalog.FeatureID]Override, len(s.Overrides))
		for id, o := range s.Overrides {
			out.Overrides[id] = o.clone()
		}
	}
	return &out
}

func (o Override) clone() Override {
	if o.Enabled != nil {
		v := *o.Enabled
		o.Enabled = &v
	}
	if o.Limit != nil {
		o.Limit = catalog.Quota(*o.Limit)
	}
	return o
}

// Enable returns an Override that only forces the enabled flag.
func Enable(on bool) Override {
	return Override{Enabled: &on}
}

// Source loads tenant subscriptions from persistence.
// Implementations return ErrNotFound when the tenant has no subscription.
type Source interface {
	LoadSubscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)
}
