package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/recruitly/entitlements/pkg/catalog"
)

// Querier is the subset of *pgxpool.Pool and pgx.Tx used by PostgresSource.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	selectSubscriptionSQL = `
SELECT tier, updated_at, COALESCE(billing_email, '')
FROM tenant_subscriptions
WHERE tenant_id = $1`

	selectOverridesSQL = `
SELECT feature_id, enabled, quota_limit, unlimited
FROM tenant_feature_overrides
WHERE tenant_id = $1`
)

// PostgresSource reads subscriptions from the tenant_subscriptions and
// tenant_feature_overrides tables (see pkg/pg migrations).
type PostgresSource struct {
	db Querier
}

// NewPostgresSource returns a Source backed by PostgreSQL.
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// LoadSubscription implements Source.
func (s *PostgresSource) LoadSubscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	sub := &Subscription{TenantID: tenantID}

	var tier string
	err := s.db.QueryRow(ctx, selectSubscriptionSQL, tenantID).Scan(&tier, &sub.UpdatedAt, &sub.BillingEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrFailedToLoadSubscription, err)
	}
	sub.Tier = catalog.Tier(tier)

	rows, err := s.db.Query(ctx, selectOverridesSQL, tenantID)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadSubscription, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			featureID string
			o         Override
		)
		if err := rows.Scan(&featureID, &o.Enabled, &o.Limit, &o.Unlimited); err != nil {
			return nil, errors.Join(ErrFailedToLoadSubscription, fmt.Errorf("scan override: %w", err))
		}
		if sub.Overrides == nil {
			sub.Overrides = make(map[catalog.FeatureID]Override)
		}
		sub.Overrides[catalog.FeatureID(featureID)] = o
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrFailedToLoadSubscription, err)
	}

	return sub, nil
}
