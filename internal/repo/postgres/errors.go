package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return false
}

// violatedConstraint names the unique constraint behind a 23505, so callers
// can tell a duplicate username from a duplicate email.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}

	return ""
}

// IsTimeout reports whether a store call ran out of time. Handlers surface
// these as a retryable 503, not an internal failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		// query_canceled, usually from statement_timeout
		return pgErr.Code == "57014"
	}

	return pgconn.Timeout(err)
}
