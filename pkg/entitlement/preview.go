package entitlement

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/recruitly/entitlements/pkg/catalog"
)

// QuotaConflict is a quota the tenant already exceeds under the target tier.
type QuotaConflict struct {
	FeatureID catalog.FeatureID `json:"feature_id"`
	Used      int64             `json:"used"`
	NewLimit  int64             `json:"new_limit"`
}

// TierPreview describes the effect of moving a tenant to another tier.
type TierPreview struct {
	*catalog.TierComparison
	// ExceededQuotas lists lowered quotas that current usage already exceeds.
	ExceededQuotas []QuotaConflict `json:"exceeded_quotas"`
}

// PreviewTierChange compares the tenant's current tier with target and
// checks current usage against every lowered quota. Tenant overrides are
// not considered; they survive a tier change unchanged.
func (s *Service) PreviewTierChange(ctx context.Context, tenantID uuid.UUID, target catalog.Tier) (*TierPreview, error) {
	sub, err := s.subscription(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	cmp, err := s.catalog.CompareTiers(sub.Tier, target)
	if err != nil {
		return nil, err
	}

	preview := &TierPreview{TierComparison: cmp, ExceededQuotas: make([]QuotaConflict, 0)}
	var errs []error
	// Walk in catalog order so the result is stable.
	for _, def := range s.catalog.ListDefinitions() {
		change, ok := cmp.DecreasedLimits[def.ID]
		if !ok || change.To == nil {
			continue
		}
		used, err := s.usage(ctx, tenantID, def.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if used > *change.To {
			preview.ExceededQuotas = append(preview.ExceededQuotas, QuotaConflict{
				FeatureID: def.ID,
				Used:      used,
				NewLimit:  *change.To,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return preview, nil
}

// HasConflicts reports whether the change would leave any quota exceeded.
func (p *TierPreview) HasConflicts() bool {
	return len(p.ExceededQuotas) > 0
}
