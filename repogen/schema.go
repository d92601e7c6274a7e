package repogen

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/code19m/errx"
	"github.com/samber/lo"

	"github.com/rise-and-shine/entityrepo/filter"
	"github.com/rise-and-shine/entityrepo/sorter"
)

// IDField is the logical name every schema must map to the entity identifier.
const IDField = "id"

// Field describes one logical field of an entity.
type Field[E any] struct {
	// Column is the SQL column name.
	Column string
	// Kind tells the SQL compiler how the column is stored.
	Kind filter.ColumnKind
	// Get returns the field value of an entity. Pointers may be returned as is.
	Get func(e *E) any
	// Clear zeroes the field. Only fields with Clear can be excluded from results.
	Clear func(e *E)
}

// Schema maps an entity type onto both store kinds.
type Schema[E any] struct {
	// Entity is the name used in error messages, e.g. "ApiKey".
	Entity string
	// Collection names the document collection.
	Collection string
	Fields     map[string]Field[E]
	// DefaultSort applies when a search has no sort. The id always breaks ties.
	DefaultSort sorter.Opt
	ID          func(e *E) string
	SetID       func(e *E, id string)
	// ConflictCodes maps a violated unique constraint to an error code.
	// Keys are PostgreSQL constraint names or SQLite "table.column" targets.
	ConflictCodes map[string]string
}

func (s Schema[E]) mustValidate() {
	if s.ID == nil || s.SetID == nil {
		panic(fmt.Sprintf("repogen: schema %s has no id accessors", s.Entity))
	}
	if _, ok := s.Fields[IDField]; !ok {
		panic(fmt.Sprintf("repogen: schema %s has no %q field", s.Entity, IDField))
	}
	if !s.DefaultSort.IsZero() {
		if _, ok := s.Fields[s.DefaultSort.F]; !ok {
			panic(fmt.Sprintf("repogen: schema %s default sort field %q is unknown", s.Entity, s.DefaultSort.F))
		}
	}
}

// SortableFields lists the logical fields accepted by WithSort.
func (s Schema[E]) SortableFields() []string {
	fields := lo.Keys(lo.PickBy(s.Fields, func(_ string, f Field[E]) bool {
		return f.Kind == filter.Scalar
	}))
	slices.Sort(fields)
	return fields
}

// resolve implements filter.Resolver.
func (s Schema[E]) resolve(field string) (filter.Column, bool) {
	f, ok := s.Fields[field]
	if !ok {
		return filter.Column{}, false
	}
	return filter.Column{Name: f.Column, Kind: f.Kind}, true
}

func (s Schema[E]) getter(e *E) filter.Getter {
	return func(field string) any {
		f, ok := s.Fields[field]
		if !ok || f.Get == nil {
			return nil
		}
		return f.Get(e)
	}
}

// order returns the effective ordering: the requested or default sort, then id ascending.
func (s Schema[E]) order(requested sorter.Opt) ([]sorter.Opt, error) {
	primary := requested
	if primary.IsZero() {
		primary = s.DefaultSort
	}
	if primary.IsZero() {
		return []sorter.Opt{sorter.By(IDField)}, nil
	}
	if err := primary.Validate(s.SortableFields()...); err != nil {
		return nil, err
	}
	if primary.F == IDField {
		return []sorter.Opt{primary}, nil
	}
	return []sorter.Opt{primary, sorter.By(IDField)}, nil
}

// checkFields rejects criteria that reference unknown fields.
func (s Schema[E]) checkFields(c filter.Cond) error {
	for _, f := range filter.Fields(c) {
		if _, ok := s.Fields[f]; !ok {
			return errx.New(
				fmt.Sprintf("unknown filter field %q for %s", f, s.Entity),
				errx.WithCode(filter.CodeUnknownField),
				errx.WithType(errx.T_Validation),
			)
		}
	}
	return nil
}

// excluded resolves projection fields to their definitions.
func (s Schema[E]) excluded(fields []string) ([]Field[E], error) {
	out := make([]Field[E], 0, len(fields))
	for _, name := range lo.Uniq(fields) {
		f, ok := s.Fields[name]
		if !ok || f.Clear == nil || name == IDField {
			return nil, invalidProjection(s.Entity, name)
		}
		out = append(out, f)
	}
	return out, nil
}

// sortEntities orders entities in place the same way the SQL engine does:
// nulls first ascending, last descending.
func (s Schema[E]) sortEntities(entities []E, order []sorter.Opt) {
	slices.SortStableFunc(entities, func(a, b E) int {
		ga, gb := s.getter(&a), s.getter(&b)
		for _, o := range order {
			r, ok := filter.Compare(ga(o.F), gb(o.F))
			if !ok {
				r = cmp.Compare(fmt.Sprint(ga(o.F)), fmt.Sprint(gb(o.F)))
			}
			if r != 0 {
				return o.Apply(r)
			}
		}
		return 0
	})
}
