package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyConnectionString   = errors.New("empty postgres connection string, set PG_CONN_URL")
	ErrFailedToParseConfig     = errors.New("failed to parse postgres config")
	ErrFailedToConnect         = errors.New("failed to connect to postgres")
	ErrHealthcheckFailed       = errors.New("postgres healthcheck failed")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
	ErrMigrationsDirNotFound   = errors.New("migrations directory not found")
)

// IsNotFound reports pgx.ErrNoRows, the uniform "no such row" signal the
// repositories translate into their own not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports a unique constraint violation (SQLSTATE 23505),
// e.g. a routing key already taken by another active tenant.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports a referential integrity violation
// (SQLSTATE 23503), e.g. registering for a deleted event.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
