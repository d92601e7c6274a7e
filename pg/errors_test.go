package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/entityrepo/pg"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantConstraint string
		wantOK         bool
	}{
		{
			name:           "wrapped unique violation",
			err:            fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "api_keys_key_uniq"}),
			wantConstraint: "api_keys_key_uniq",
			wantOK:         true,
		},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503", ConstraintName: "plans_api_fk"}},
		{name: "plain error", err: errors.New("other")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraint, ok := pg.UniqueViolation(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantConstraint, constraint)
		})
	}
}

func TestErrorDetails(t *testing.T) {
	details := pg.ErrorDetails(&pgconn.PgError{Code: "23505", ConstraintName: "plans_pkey", TableName: "plans"})
	assert.Equal(t, errx.D{"pg.code": "23505", "pg.constraint": "plans_pkey", "pg.table": "plans"}, details)

	assert.Nil(t, pg.ErrorDetails(errors.New("plain")))
}
