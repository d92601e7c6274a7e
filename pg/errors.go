package pg

import (
	"errors"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
)

const codeUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique or primary key violation
// and returns the name of the violated constraint.
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}

// ErrorDetails returns the diagnostic fields of a PostgreSQL error under "pg.*" keys.
// Empty fields are left out. It returns nil for other errors.
func ErrorDetails(err error) errx.D {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	details := errx.D{"pg.code": pgErr.Code}
	for key, value := range map[string]string{
		"pg.severity":   pgErr.Severity,
		"pg.message":    pgErr.Message,
		"pg.detail":     pgErr.Detail,
		"pg.hint":       pgErr.Hint,
		"pg.schema":     pgErr.SchemaName,
		"pg.table":      pgErr.TableName,
		"pg.column":     pgErr.ColumnName,
		"pg.constraint": pgErr.ConstraintName,
	} {
		if value != "" {
			details[key] = value
		}
	}
	return details
}
