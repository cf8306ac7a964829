package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dentix/dentix/internal/platform/apperr"
)

// PostgreSQL error codes the repositories classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique violation, optionally on
// the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// Classify maps a repository error onto an error kind. No rows becomes
// NotFound with notFound as message, errors that already carry a kind pass
// through, and anything else is Internal with msg.
func Classify(err error, notFound, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case IsNoRows(err):
		return apperr.NotFound(notFound)
	default:
		return apperr.Internal(msg, err)
	}
}
