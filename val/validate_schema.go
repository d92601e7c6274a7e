package val

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
)

const CodeValidationFailed = "VALIDATION_FAILED"

// ValidateSchema validates a struct using its `validate` tags.
// The returned error carries one entry per failing field, keyed by its json path
// below the validated struct, e.g. "attached_media[1].media_hash".
func ValidateSchema(schema any) error {
	err := getValidator().Struct(schema)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errx.Wrap(err, errx.WithCode(CodeValidationFailed), errx.WithType(errx.T_Validation))
	}

	fields := make(errx.M, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return errx.New(
		fmt.Sprintf("validation failed for %d field(s)", len(fields)),
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}

// fieldPath drops the struct name the validator puts in front of every namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}
	return path
}

func describe(fe validator.FieldError) string {
	param := fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	} else if k := fe.Kind(); k == reflect.Slice || k == reflect.Map {
		unit = " items"
	}

	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_if":
		return fmt.Sprintf("Required when %s", param)
	case "min":
		return fmt.Sprintf("Must be at least %s%s", param, unit)
	case "max":
		return fmt.Sprintf("Must be at most %s%s", param, unit)
	case "len":
		return fmt.Sprintf("Must be exactly %s%s", param, unit)
	case "gt":
		return fmt.Sprintf("Must be greater than %s", param)
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", param)
	case "lt":
		return fmt.Sprintf("Must be less than %s", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", param)
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "url":
		return "Must be a valid URL"
	case "media_hash":
		return "Must be a hex encoded content digest"
	}
	return "Failed validation: " + fe.Tag()
}
