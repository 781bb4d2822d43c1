package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation. When constraintName is provided, the violated constraint
// must match it.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) && pgxErr.Code == uniqueViolationCode {
		return constraintName == "" || pgxErr.ConstraintName == constraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return constraintName == "" || pqErr.Constraint == constraintName
	}

	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether the error is a Postgres foreign key
// violation, typically a reference to a row that no longer exists.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == foreignKeyViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == foreignKeyViolationCode
	}

	msg := err.Error()
	return strings.Contains(msg, "violates foreign key constraint") || strings.Contains(msg, "FOREIGN KEY constraint failed")
}
