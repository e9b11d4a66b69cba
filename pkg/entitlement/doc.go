// Package entitlement decides which features a tenant may use.
//
// Resolve is the pure core: given a feature definition, the tier grant, an
// optional tenant override and current usage it returns a FeatureStatus.
// Service wires Resolve to a catalog, a tenant.Source and a usage counter:
//
//	svc := entitlement.NewService(cat, subs, counter,
//		entitlement.WithLookupTimeout(2*time.Second),
//		entitlement.WithThresholdPublisher(hub),
//	)
//
//	ok, err := svc.CanUse(ctx, tenantID, catalog.FeatureAIScreening)
//	if err != nil && !errors.Is(err, entitlement.ErrEntitlementUnavailable) {
//		return err // unknown feature: a bug, not a runtime condition
//	}
//	if !ok {
//		// render the upgrade prompt
//	}
//
// Failures of the subscription or usage lookups close the feature. The
// caller gets a valid status with Unavailable set together with an error
// wrapping ErrEntitlementUnavailable, and should treat it exactly like a
// disabled feature.
package entitlement
