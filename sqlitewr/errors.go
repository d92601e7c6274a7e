package sqlitewr

import (
	"errors"
	"strings"

	"github.com/code19m/errx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UniqueViolation reports whether err is a primary key or unique constraint violation
// and returns its "table.column" target, e.g. "api_keys.key".
// Multi-column targets are returned as SQLite prints them.
func UniqueViolation(err error) (target string, ok bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}
	if code := sqliteErr.Code(); code != sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY && code != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return "", false
	}
	return violationTarget(sqliteErr.Error()), true
}

// violationTarget extracts the target from a message such as
// "constraint failed: UNIQUE constraint failed: api_keys.key (2067)".
// The driver prefixes the generic result text, so the last marker is the one
// followed by the target.
func violationTarget(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	target := msg[i+len(marker):]
	if j := strings.LastIndex(target, " ("); j >= 0 {
		target = target[:j]
	}
	return strings.TrimSpace(target)
}

// ErrorDetails returns the result code and message of a SQLite error under "sqlite.*" keys.
// It returns nil for other errors.
func ErrorDetails(err error) errx.D {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	details := errx.D{
		"sqlite.code":    sqliteErr.Code(),
		"sqlite.message": sqliteErr.Error(),
	}
	if name, ok := sqlite.ErrorCodeString[sqliteErr.Code()]; ok {
		details["sqlite.code_name"] = name
	}
	return details
}
