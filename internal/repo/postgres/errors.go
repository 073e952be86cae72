package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// uniqueViolationOn reports whether err is a unique violation on the named
// constraint. An empty constraint matches any unique violation.
func uniqueViolationOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError

	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}

	return constraint == "" || pgErr.ConstraintName == constraint
}
