package repogen

import (
	"fmt"
	"maps"
	"strings"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/entityrepo/pg"
	"github.com/rise-and-shine/entityrepo/sqlitewr"
)

// queryDetails collects the failed query and the driver diagnostics of err.
func queryDetails(err error, q fmt.Stringer) errx.D {
	details := errx.D{}
	if query := queryString(q); query != "" {
		details["query"] = strings.ReplaceAll(query, `"`, ``)
	}
	maps.Copy(details, pg.ErrorDetails(err))
	maps.Copy(details, sqlitewr.ErrorDetails(err))
	return details
}

// queryString renders q, or returns "" when q is nil or its String panics,
// as bun queries do when built from an invalid model.
func queryString(q fmt.Stringer) (s string) {
	defer func() {
		if recover() != nil {
			s = ""
		}
	}()
	if q == nil {
		return ""
	}
	return q.String()
}

func technical(err error, details errx.D) error {
	return errx.Wrap(
		err,
		errx.WithCode(CodeTechnicalFailure),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(details),
	)
}

func conflict(entity, code, id string, details errx.D) error {
	if code == "" {
		code = CodeConflict
	}
	if details == nil {
		details = errx.D{}
	}
	details["id"] = id
	return errx.New(
		fmt.Sprintf("conflict while creating %s", entity),
		errx.WithCode(code),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(details),
	)
}

func nilEntity(entity, op string) error {
	return errx.New(
		fmt.Sprintf("cannot %s a nil %s", op, entity),
		errx.WithCode(CodeIllegalState),
		errx.WithType(errx.T_Validation),
	)
}

func missingEntity(entity, id string) error {
	return errx.New(
		fmt.Sprintf("no %s found to update", entity),
		errx.WithCode(CodeIllegalState),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"id": id}),
	)
}

func invalidProjection(entity, field string) error {
	return errx.New(
		fmt.Sprintf("field %q of %s cannot be excluded", field, entity),
		errx.WithCode(CodeInvalidProjection),
		errx.WithType(errx.T_Validation),
	)
}
