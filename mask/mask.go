// Package mask flattens configuration structs for printing with secrets hidden.
package mask

import (
	"reflect"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const tagName = "mask"

// Hidden replaces the value of a masked field.
const Hidden = "******"

var durationType = reflect.TypeFor[time.Duration]() //nolint: gochecknoglobals // read only

// Flatten returns the fields of v keyed by their dotted yaml path, in declaration order.
// Fields tagged `mask:"true"` are replaced by Hidden unless they hold their zero value,
// so an unset secret still shows as unset. Durations are rendered with their String form.
// A nil pointer to a struct is kept as a single nil entry.
func Flatten(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	om := orderedmap.New[string, any]()
	flatten(om, reflect.ValueOf(v), "")
	return om
}

func flatten(om *orderedmap.OrderedMap[string, any], val reflect.Value, prefix string) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			om.Set(prefix, nil)
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		om.Set(prefix, render(val))
		return
	}

	typ := val.Type()
	for i := range val.NumField() {
		field, fieldType := val.Field(i), typ.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		name, skip := fieldName(fieldType)
		if skip {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		switch {
		case strings.EqualFold(fieldType.Tag.Get(tagName), "true"):
			om.Set(name, hide(field))
		case isStruct(field):
			flatten(om, field, name)
		default:
			om.Set(name, render(field))
		}
	}
}

func isStruct(val reflect.Value) bool {
	t := val.Type()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && t != reflect.TypeFor[time.Time]()
}

func hide(val reflect.Value) any {
	if val.IsZero() {
		return render(val)
	}
	return Hidden
}

func render(val reflect.Value) any {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Type() == durationType {
		return time.Duration(val.Int()).String()
	}
	return val.Interface()
}

// fieldName picks the yaml tag name, then the json one, then the Go field name.
// The second result reports a field excluded with "-".
func fieldName(field reflect.StructField) (string, bool) {
	for _, key := range []string{"yaml", "json"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", true
		}
		if name != "" {
			return name, false
		}
	}
	return field.Name, false
}
