// Package tenant loads tenant subscriptions: the tier a tenant is on plus
// per-feature overrides granted by sales or support.
//
// Source is the read interface used by the entitlement service. Three
// implementations are provided:
//
//   - MemorySource keeps subscriptions in process memory (tests, development).
//   - PostgresSource reads the tenant_subscriptions and
//     tenant_feature_overrides tables created by pkg/pg migrations.
//   - CachedSource wraps another Source with a Redis read-through cache and
//     collapses concurrent misses with singleflight.
//
// Sources return ErrNotFound for tenants without a subscription; callers
// decide what tier such tenants get.
//
// WithTenantID and IDFromContext carry the tenant id through a request, and
// LoggerExtractor adds it to log records.
package tenant
