// Package cfgloader loads and validates YAML configuration.
//
// The configuration struct uses `yaml` tags for mapping, `default` tags for values applied when
// a field is not set in the document, and `validate` tags checked by go-playground/validator.
// Fields tagged `mask:"true"` are hidden by Describe.
//
// Example:
//
//	type Config struct {
//	    Driver string    `yaml:"driver" validate:"oneof=postgres sqlite redis memory" default:"sqlite"`
//	    PG     pg.Config `yaml:"pg"`
//	}
package cfgloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rise-and-shine/entityrepo/mask"
)

const CodeInvalidConfig = "INVALID_CONFIG"

// Load reads the YAML file at path, expands environment variables, applies defaults and validates the result.
func Load[T any](path string, opts ...Option) (T, error) {
	var config T

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	return Parse[T](data, opts...)
}

// Parse is Load for an in-memory YAML document.
func Parse[T any](data []byte, opts ...Option) (T, error) {
	var config T

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := loadEnvFiles(o.envFiles); err != nil {
		return config, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err := defaults.Set(&config); err != nil {
		return config, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
	}

	if err := validateConfig(&config); err != nil {
		return config, err
	}

	return config, nil
}

// Describe renders config one "path: value" line per field, with fields tagged `mask:"true"` hidden.
func Describe(config any) string {
	fields := mask.Flatten(config)
	if fields == nil {
		return ""
	}
	var sb strings.Builder
	for p := fields.Oldest(); p != nil; p = p.Next() {
		fmt.Fprintf(&sb, "%s: %v\n", p.Key, p.Value)
	}
	return sb.String()
}

func loadEnvFiles(files []string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return errx.Wrap(err, errx.WithCode(CodeInvalidConfig), errx.WithDetails(errx.D{"env_file": file}))
		}
	}
	return nil
}

func validateConfig(config any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)

	failedFields := make([]string, 0)
	if errs, ok := err.(validator.ValidationErrors); ok { //nolint: errorlint // Using type assertion for validator errors handling
		for _, err := range errs {
			tagErr := err.Tag()
			if err.Param() != "" {
				tagErr += fmt.Sprintf("=%s", err.Param())
			}
			failedFields = append(failedFields, fmt.Sprintf("%s: %s", err.Namespace(), tagErr))
		}
	}

	if len(failedFields) > 0 {
		return errx.New(
			"invalid fields in config -> "+strings.Join(failedFields, ",  "),
			errx.WithCode(CodeInvalidConfig),
			errx.WithType(errx.T_Validation),
		)
	}
	return nil
}
