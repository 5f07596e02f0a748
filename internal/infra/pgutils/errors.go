package pgutils

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const codeUniqueViolation = "23505"

// IsUniqueViolation reports whether err carries a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return true
	}

	return false
}
