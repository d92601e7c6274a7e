// Package sorter provides the sort option accepted by repository searches.
// A search takes at most one option: a logical field name and a direction.
// Options can be parsed from strings like "updated_at:desc".
package sorter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/code19m/errx"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"

	CodeInvalidSort = "INVALID_SORT"

	// expectedPartsCount is the expected number of parts in a sort option (field:direction).
	expectedPartsCount = 2
)

// Opt represents a single sorting option, consisting of a field and a direction.
type Opt struct {
	F string        // F is the logical field to sort by.
	D SortDirection // D is the sorting direction (asc or desc).
}

// By returns an ascending option on field.
func By(field string) Opt {
	return Opt{F: field, D: Asc}
}

// ByDesc returns a descending option on field.
func ByDesc(field string) Opt {
	return Opt{F: field, D: Desc}
}

// IsZero reports whether no sorting was requested.
func (o Opt) IsZero() bool {
	return o.F == ""
}

// Apply orients the result of an ascending comparison according to the direction.
func (o Opt) Apply(cmp int) int {
	if o.D == Desc {
		return -cmp
	}
	return cmp
}

func (o Opt) String() string {
	if o.IsZero() {
		return ""
	}
	return o.F + ":" + string(o.D)
}

// Parse parses "field" or "field:direction". The direction defaults to asc.
// An empty string yields the zero Opt. When allowedFields is not empty the field must be one of them.
func Parse(s string, allowedFields ...string) (Opt, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Opt{}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > expectedPartsCount {
		return Opt{}, invalid(s, "expected field:direction")
	}

	opt := Opt{F: strings.TrimSpace(parts[0]), D: Asc}
	if opt.F == "" {
		return Opt{}, invalid(s, "empty field")
	}
	if len(parts) == expectedPartsCount {
		opt.D = SortDirection(strings.ToLower(strings.TrimSpace(parts[1])))
	}

	if err := opt.Validate(allowedFields...); err != nil {
		return Opt{}, err
	}
	return opt, nil
}

// Validate checks the direction and, when allowedFields is not empty, the field.
func (o Opt) Validate(allowedFields ...string) error {
	if o.IsZero() {
		return nil
	}
	if o.D != Asc && o.D != Desc {
		return invalid(o.String(), "direction must be asc or desc")
	}
	if len(allowedFields) > 0 && !slices.Contains(allowedFields, o.F) {
		return invalid(o.String(), fmt.Sprintf("field %q is not sortable", o.F))
	}
	return nil
}

func invalid(s, reason string) error {
	return errx.New(
		fmt.Sprintf("invalid sort %q: %s", s, reason),
		errx.WithCode(CodeInvalidSort),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"sort": s}),
	)
}
