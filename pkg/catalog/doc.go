// Package catalog is the static registry of product features and subscription
// tier grants.
//
// A Catalog is built once at process start, either from Default or from a YAML
// file, and never changes afterwards. It answers two questions: what a feature
// is (Definition) and what a tier gives (Grant). Quotas are per tier and per
// feature; a nil limit means unlimited.
//
// Feature ids form a closed set declared as FeatureID constants. Call
// Require(KnownFeatures()...) during startup so a catalog file that forgets a
// feature the code references is rejected before serving traffic.
//
//	cat, err := catalog.LoadFile("configs/catalog.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cat.Require(catalog.KnownFeatures()...); err != nil {
//	    return err
//	}
//	grant, _ := cat.Grant(catalog.TierFree, catalog.FeatureAIScreening)
package catalog
