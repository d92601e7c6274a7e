package val

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var mediaHashRe = regexp.MustCompile(`^[a-fA-F0-9]{32,128}$`) //nolint: gochecknoglobals // compiled once

// IsMediaHash reports whether s looks like a hex content digest.
func IsMediaHash(s string) bool {
	return mediaHashRe.MatchString(s)
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("media_hash", func(fl validator.FieldLevel) bool {
		return IsMediaHash(fl.Field().String())
	})
}
