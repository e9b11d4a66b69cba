package catalog

import "errors"

var (
	// ErrUnknownFeature is returned when a feature id is not registered in the catalog.
	// It signals a programming or configuration error and must not be defaulted away.
	ErrUnknownFeature = errors.New("catalog.errors.unknown_feature")

	// ErrUnknownTier is returned when a tier is not declared in the catalog.
	ErrUnknownTier = errors.New("catalog.errors.unknown_tier")

	// ErrInvalidCatalog is returned when definitions or grants fail validation.
	ErrInvalidCatalog = errors.New("catalog.errors.invalid_catalog")

	// ErrInvalidFeatureType is returned for feature types outside the closed set.
	ErrInvalidFeatureType = errors.New("catalog.errors.invalid_feature_type")

	// ErrFailedToLoadCatalog is returned when a catalog file cannot be read or decoded.
	ErrFailedToLoadCatalog = errors.New("catalog.errors.failed_to_load")
)
