// Package filter is the store-neutral representation of search criteria.
//
// A criteria value is turned into a Cond tree. The tree is either evaluated in memory
// against documents (Eval) or rendered into a SQL fragment for bun (Compile).
// Both interpretations agree on null handling: a comparison against a missing value is false.
package filter

import (
	"time"

	"github.com/samber/lo"
)

// Criteria is implemented by every entity criteria type.
type Criteria interface {
	Cond() Cond
}

// Cond is a node of the condition tree.
type Cond interface {
	isCond()
}

type (
	allCond  struct{}
	noneCond struct{}

	inCond struct {
		field  string
		values []any
	}

	rangeCond struct {
		field string
		from  any // inclusive, nil when unbounded
		to    any // exclusive, nil when unbounded
	}

	nullCond struct {
		field string
		null  bool
	}

	textCond struct {
		query  string
		fields []string
	}

	containsAnyCond struct {
		field  string
		values []any
	}

	propertyCond struct {
		field  string
		key    string
		values []any
	}

	andCond struct{ conds []Cond }
	orCond  struct{ conds []Cond }
	notCond struct{ cond Cond }
)

func (allCond) isCond()         {}
func (noneCond) isCond()        {}
func (inCond) isCond()          {}
func (rangeCond) isCond()       {}
func (nullCond) isCond()        {}
func (textCond) isCond()        {}
func (containsAnyCond) isCond() {}
func (propertyCond) isCond()    {}
func (andCond) isCond()         {}
func (orCond) isCond()          {}
func (notCond) isCond()         {}

// All matches every record.
func All() Cond { return allCond{} }

// None matches no record.
func None() Cond { return noneCond{} }

// In matches records whose field equals any value of s.
func In[T comparable](field string, s Set[T]) Cond {
	if !s.IsSet() {
		return All()
	}
	if s.Len() == 0 {
		return None()
	}
	return inCond{field: field, values: lo.ToAnySlice(s.values)}
}

// Eq matches records whose field equals v. A nil v matches null fields.
func Eq(field string, v any) Cond {
	if isNil(v) {
		return IsNull(field)
	}
	return inCond{field: field, values: []any{v}}
}

// Between matches from <= field < to. A nil bound is open.
func Between(field string, from, to any) Cond {
	if isNil(from) && isNil(to) {
		return All()
	}
	return rangeCond{field: field, from: nilIfNil(from), to: nilIfNil(to)}
}

// Window is a time range on field where zero times are open bounds.
// With at least one bound set, records with a null timestamp only match when includeNull is true.
// Without bounds the window imposes nothing.
func Window(field string, from, to time.Time, includeNull bool) Cond {
	if from.IsZero() && to.IsZero() {
		return All()
	}

	var f, t any
	if !from.IsZero() {
		f = from
	}
	if !to.IsZero() {
		t = to
	}

	r := rangeCond{field: field, from: f, to: t}
	if includeNull {
		return Or(IsNull(field), r)
	}
	return r
}

func IsNull(field string) Cond { return nullCond{field: field, null: true} }

func NotNull(field string) Cond { return nullCond{field: field, null: false} }

// Text matches records where any of fields contains query, case-insensitively.
// An empty query imposes nothing.
func Text(query string, fields ...string) Cond {
	if query == "" {
		return All()
	}
	if len(fields) == 0 {
		return None()
	}
	return textCond{query: query, fields: fields}
}

// ContainsAny matches records whose list-valued field holds any value of s.
func ContainsAny[T comparable](field string, s Set[T]) Cond {
	if !s.IsSet() {
		return All()
	}
	if s.Len() == 0 {
		return None()
	}
	return containsAnyCond{field: field, values: lo.ToAnySlice(s.values)}
}

// Property matches records whose map-valued field has key set to any value of s.
func Property[T comparable](field, key string, s Set[T]) Cond {
	if !s.IsSet() {
		return All()
	}
	if s.Len() == 0 {
		return None()
	}
	return propertyCond{field: field, key: key, values: lo.ToAnySlice(s.values)}
}

// And matches when every condition matches. And() is All().
func And(conds ...Cond) Cond {
	out := make([]Cond, 0, len(conds))
	for _, c := range conds {
		switch c := c.(type) {
		case nil, allCond:
		case noneCond:
			return None()
		case andCond:
			out = append(out, c.conds...)
		default:
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return All()
	case 1:
		return out[0]
	}
	return andCond{conds: out}
}

// Or matches when any condition matches. Or() is None().
func Or(conds ...Cond) Cond {
	out := make([]Cond, 0, len(conds))
	for _, c := range conds {
		switch c := c.(type) {
		case nil, noneCond:
		case allCond:
			return All()
		case orCond:
			out = append(out, c.conds...)
		default:
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return None()
	case 1:
		return out[0]
	}
	return orCond{conds: out}
}

// Not inverts c. A comparison that is false because of a null stays false before inversion,
// so Not(Eq("x", 1)) matches records where x is null.
func Not(c Cond) Cond {
	switch c := c.(type) {
	case allCond:
		return None()
	case noneCond:
		return All()
	case notCond:
		return c.cond
	}
	return notCond{cond: c}
}

// Fields returns the logical fields referenced by c, in first-seen order.
func Fields(c Cond) []string {
	var fields []string
	var walk func(Cond)
	walk = func(c Cond) {
		switch c := c.(type) {
		case inCond:
			fields = append(fields, c.field)
		case rangeCond:
			fields = append(fields, c.field)
		case nullCond:
			fields = append(fields, c.field)
		case textCond:
			fields = append(fields, c.fields...)
		case containsAnyCond:
			fields = append(fields, c.field)
		case propertyCond:
			fields = append(fields, c.field)
		case andCond:
			lo.ForEach(c.conds, func(x Cond, _ int) { walk(x) })
		case orCond:
			lo.ForEach(c.conds, func(x Cond, _ int) { walk(x) })
		case notCond:
			walk(c.cond)
		}
	}
	walk(c)
	return lo.Uniq(fields)
}

// IsNone reports whether c can never match.
func IsNone(c Cond) bool {
	_, ok := c.(noneCond)
	return ok
}
