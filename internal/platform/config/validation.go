package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("config validation failed")

// validate reports fields by their koanf keys, so messages name the same
// path an operator sets in YAML or as APP_ environment variables.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	v.RegisterStructValidation(validateSync, SyncConfig{})
	v.RegisterStructValidation(validateRetry, RetryConfig{})

	return v
}

// validateSync keeps a reconcile cycle shorter than the tick that starts it.
func validateSync(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(SyncConfig)
	if !ok || s.Interval == 0 || s.CycleTimeout == 0 {
		return
	}
	if s.CycleTimeout >= s.Interval {
		sl.ReportError(s.CycleTimeout, "cycle_timeout", "CycleTimeout", "ltfield", "interval")
	}
}

func validateRetry(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(RetryConfig)
	if !ok || r.InitialInterval == 0 || r.MaxInterval == 0 {
		return
	}
	if r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

// Validate checks every field and reports all problems at once. The service
// refuses to start on any of them.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}

	return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(problems, "\n  "))
}

func describe(fe validator.FieldError) string {
	field := formatFieldPath(fe.Namespace())
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "url":
		return field + " must be a valid URL"
	case "http_url":
		return field + " must be an http or https URL"
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, param)
	case "ltfield":
		return fmt.Sprintf("%s must be shorter than %s", field, param)
	case "gtefield":
		return fmt.Sprintf("%s must not be shorter than %s", field, param)
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}

// formatFieldPath drops the root type from a namespace such as
// "Config.sync.fetch_path".
func formatFieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
