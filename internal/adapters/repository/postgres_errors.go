package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
)

// pgErrorCode extracts the SQLSTATE from either driver the repositories run on:
// pgx in the service, lib/pq in some test setups.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// pgConstraint names the constraint a violation was raised on, when the driver reports it.
func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// isMissingRow reports a lookup that found nothing, including one keyed by a
// malformed uuid.
func isMissingRow(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || pgErrorCode(err) == pgInvalidTextRep
}
