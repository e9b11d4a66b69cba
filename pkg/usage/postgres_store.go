package usage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	readUsageSQL = `
SELECT count
FROM usage_records
WHERE tenant_id = $1 AND feature_id = $2 AND period_key = $3`

	incrementUsageSQL = `
INSERT INTO usage_records (tenant_id, feature_id, period_key, count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tenant_id, feature_id, period_key)
DO UPDATE SET count = usage_records.count + EXCLUDED.count, updated_at = now()
RETURNING count`
)

// PostgresStore keeps one usage_records row per key. Rows of past periods
// are retained for audit.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore returns a Store backed by the usage_records table.
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Read implements Store.
func (s *PostgresStore) Read(ctx context.Context, key Key) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, readUsageSQL, key.TenantID, string(key.FeatureID), key.PeriodKey).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return n, nil
}

// Increment implements Store with a single upsert statement, so concurrent
// increments serialize on the row lock instead of racing a read-modify-write.
func (s *PostgresStore) Increment(ctx context.Context, key Key, amount int64) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, incrementUsageSQL, key.TenantID, string(key.FeatureID), key.PeriodKey, amount).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return n, nil
}
