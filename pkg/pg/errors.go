package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("pg: failed to open connection")
	ErrEmptyConnectionString    = errors.New("pg: empty connection string, set PG_CONN_URL")
	ErrHealthcheckFailed        = errors.New("pg: ping failed")
	ErrFailedToParseDBConfig    = errors.New("pg: failed to parse pool config")
	ErrFailedToApplyMigrations  = errors.New("pg: failed to apply migrations")
)

// uniqueViolation is the SQLSTATE of a unique index conflict, which is how
// the users table reports a taken username.
const uniqueViolation = "23505"

// IsDuplicateKeyError reports whether err wraps a unique constraint
// violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
