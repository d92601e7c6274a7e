// Package val validates entities and request values before they reach a store.
package val

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate //nolint: gochecknoglobals // shared, concurrency-safe validator instance
	validateOnce sync.Once           //nolint: gochecknoglobals // lazy initialization guard
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(getTagName)
		registerCustomValidations(validate)
	})
	return validate
}

// getTagName returns the name of a struct field based on its json tag,
// falling back to the Go field name.
func getTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name != "" && name != "-" {
		return name
	}
	return fld.Name
}
