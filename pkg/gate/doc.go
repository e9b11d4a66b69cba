// Package gate exposes entitlements over HTTP.
//
// Guard provides chi-compatible middleware: TenantFromURL and Roles put the
// tenant id and the user's role in the request context, RequireFeature
// answers 402 when the tenant cannot use a feature, and RequirePermission
// and RequireRole check the role against an rbac.Evaluator. A failed
// entitlement lookup is always a denial.
//
// NewRouter mounts the JSON API used by other services and the frontend.
package gate
