package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// postgres (pgx or lib/pq) or sqlite. When constraintName is provided it must
// also appear in the error.
func IsUniqueViolation(err error, constraintName string) bool {
	return matchesViolation(err, pgUniqueViolation, constraintName, "UNIQUE constraint failed", "duplicate key value")
}

// IsForeignKeyViolation reports whether err is a foreign key violation, for
// example deleting an egg type still referenced by a sale item.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return matchesViolation(err, pgForeignKeyViolation, constraintName, "FOREIGN KEY constraint failed", "violates foreign key constraint")
}

func matchesViolation(err error, pgCode, constraintName string, markers ...string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgCode && constraintMatches(pgxErr.ConstraintName, constraintName)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgCode && constraintMatches(pqErr.Constraint, constraintName)
	}

	msg := err.Error()
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return constraintName == "" || strings.Contains(msg, constraintName)
		}
	}
	return false
}

func constraintMatches(actual, expected string) bool {
	return expected == "" || actual == expected
}
