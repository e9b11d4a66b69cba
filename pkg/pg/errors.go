package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToParseDBConfig    = errors.New("pg.errors.invalid_config")
	ErrFailedToOpenDBConnection = errors.New("pg.errors.connection_failed")
	ErrHealthcheckFailed        = errors.New("pg.errors.healthcheck_failed")
	ErrFailedToApplyMigrations  = errors.New("pg.errors.migrations_failed")
)

// IsCheckViolationError reports a CHECK constraint failure (SQLSTATE 23514),
// e.g. a negative usage count.
func IsCheckViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}
