package filter

import (
	"cmp"
	"reflect"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// Getter returns the value of a logical field on a document.
// Pointer values are dereferenced, nil pointers count as null.
type Getter func(field string) any

// Eval evaluates c against the document exposed by get.
func Eval(c Cond, get Getter) bool {
	switch c := c.(type) {
	case nil, allCond:
		return true
	case noneCond:
		return false
	case inCond:
		v := indirect(get(c.field))
		if v == nil {
			return false
		}
		return lo.SomeBy(c.values, func(x any) bool { return equal(v, x) })
	case rangeCond:
		v := indirect(get(c.field))
		if v == nil {
			return false
		}
		if c.from != nil {
			if r, ok := Compare(v, c.from); !ok || r < 0 {
				return false
			}
		}
		if c.to != nil {
			if r, ok := Compare(v, c.to); !ok || r >= 0 {
				return false
			}
		}
		return true
	case nullCond:
		return (indirect(get(c.field)) == nil) == c.null
	case textCond:
		q := strings.ToLower(c.query)
		return lo.SomeBy(c.fields, func(f string) bool {
			v := indirect(get(f))
			if v == nil {
				return false
			}
			return strings.Contains(strings.ToLower(cast.ToString(v)), q)
		})
	case containsAnyCond:
		elems := sliceValues(indirect(get(c.field)))
		return lo.SomeBy(elems, func(e any) bool {
			return lo.SomeBy(c.values, func(x any) bool { return equal(e, x) })
		})
	case propertyCond:
		v, ok := mapValue(indirect(get(c.field)), c.key)
		if !ok {
			return false
		}
		return lo.SomeBy(c.values, func(x any) bool { return equal(v, x) })
	case andCond:
		return lo.EveryBy(c.conds, func(x Cond) bool { return Eval(x, get) })
	case orCond:
		return lo.SomeBy(c.conds, func(x Cond) bool { return Eval(x, get) })
	case notCond:
		return !Eval(c.cond, get)
	}
	return false
}

// Compare orders two field values. Mixed kinds are converted to the kind of a.
// The second result is false when the values cannot be compared.
func Compare(a, b any) (int, bool) {
	a, b = indirect(a), indirect(b)
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}

	switch av := a.(type) {
	case time.Time:
		bt, err := cast.ToTimeE(b)
		if err != nil {
			return 0, false
		}
		return av.Compare(bt), true
	case string:
		return strings.Compare(av, cast.ToString(b)), true
	case bool:
		bb, err := cast.ToBoolE(b)
		if err != nil {
			return 0, false
		}
		return cmp.Compare(boolRank(av), boolRank(bb)), true
	}

	af, err := cast.ToFloat64E(a)
	if err != nil {
		return 0, false
	}
	bf, err := cast.ToFloat64E(b)
	if err != nil {
		return 0, false
	}
	return cmp.Compare(af, bf), true
}

func equal(a, b any) bool {
	r, ok := Compare(a, b)
	return ok && r == 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNil(v any) bool {
	return indirect(v) == nil
}

func nilIfNil(v any) any {
	if isNil(v) {
		return nil
	}
	return indirect(v)
}

func indirect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() { //nolint:exhaustive // only kinds that need normalizing
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return nil
		}
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return rv.Interface()
}

func sliceValues(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func mapValue(v any, key string) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !mv.IsValid() {
		return nil, false
	}
	return indirect(mv.Interface()), true
}
