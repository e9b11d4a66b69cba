// Package pg connects to PostgreSQL with pgx/v5 and owns the schema used by
// the postgres-backed stores: usage_records for per-period counters and
// tenant_subscriptions / tenant_feature_overrides for subscription state.
//
// Migrations are embedded in the binary and applied with goose:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
package pg
