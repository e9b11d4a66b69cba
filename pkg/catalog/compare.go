package catalog

import (
	"fmt"
)

// LimitChange describes a quota change between two tiers. Nil means unlimited.
type LimitChange struct {
	From *int64 `json:"from"`
	To   *int64 `json:"to"`
}

// TierComparison contains the differences between two tiers.
type TierComparison struct {
	From            Tier                      `json:"from"`
	To              Tier                      `json:"to"`
	GainedFeatures  []FeatureID               `json:"gained_features"`
	LostFeatures    []FeatureID               `json:"lost_features"`
	IncreasedLimits map[FeatureID]LimitChange `json:"increased_limits"`
	DecreasedLimits map[FeatureID]LimitChange `json:"decreased_limits"`
}

// HasDowngrades reports whether moving to the target tier removes features or lowers quotas.
func (c *TierComparison) HasDowngrades() bool {
	return len(c.LostFeatures) > 0 || len(c.DecreasedLimits) > 0
}

// CompareTiers lists what changes when a tenant moves from one tier to another.
// Features are visited in catalog order so the result is deterministic.
func (c *Catalog) CompareTiers(from, to Tier) (*TierComparison, error) {
	if !c.HasTier(from) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, from)
	}
	if !c.HasTier(to) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, to)
	}

	cmp := &TierComparison{
		From:            from,
		To:              to,
		GainedFeatures:  make([]FeatureID, 0),
		LostFeatures:    make([]FeatureID, 0),
		IncreasedLimits: make(map[FeatureID]LimitChange),
		DecreasedLimits: make(map[FeatureID]LimitChange),
	}

	for _, def := range c.defs {
		cur, _ := c.Grant(from, def.ID)
		next, _ := c.Grant(to, def.ID)

		switch {
		case !cur.Granted && next.Granted:
			cmp.GainedFeatures = append(cmp.GainedFeatures, def.ID)
			continue
		case cur.Granted && !next.Granted:
			cmp.LostFeatures = append(cmp.LostFeatures, def.ID)
			continue
		case !cur.Granted && !next.Granted:
			continue
		}

		if !def.UsageLimited() {
			continue
		}

		change := LimitChange{From: cur.Limit, To: next.Limit}
		switch {
		case cur.Unlimited() && next.Unlimited():
		case cur.Unlimited():
			cmp.DecreasedLimits[def.ID] = change
		case next.Unlimited():
			cmp.IncreasedLimits[def.ID] = change
		case *next.Limit > *cur.Limit:
			cmp.IncreasedLimits[def.ID] = change
		case *next.Limit < *cur.Limit:
			cmp.DecreasedLimits[def.ID] = change
		}
	}

	return cmp, nil
}
