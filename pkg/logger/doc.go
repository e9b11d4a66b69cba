// Package logger builds *slog.Logger instances for the entitlement service.
//
// New takes functional options selecting the output format (json or text),
// level, static attributes and ContextExtractor callbacks. Extractors run on
// every Handle call, so request-scoped values such as the tenant id are read
// fresh from the context passed to InfoContext/ErrorContext.
//
// Attribute helpers (Error, TenantID, FeatureID, ...) keep key names
// consistent across packages.
//
// Usage:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.New(logger.WithConfig(cfg))
//	log.InfoContext(ctx, "usage recorded", logger.TenantID(id), logger.FeatureID(f))
package logger
