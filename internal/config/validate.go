package config

import (
	"reflect"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidConfig is the base of every validation failure.
var ErrInvalidConfig = errors.Base("invalid config")

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	componentNamePattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
)

// validatorInstance configures and returns the shared validator instance.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("field"); name != "" {
				return name
			}
			return f.Name
		})

		_ = v.RegisterValidation("component_name", func(fl validator.FieldLevel) bool {
			return componentNamePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks c, reporting every failing field.
func (c *Config) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return errors.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}

	var result *multierror.Error
	for _, fe := range ves {
		result = multierror.Append(result, errors.WithDetails(
			errors.Errorf("%w: %s failed %q", ErrInvalidConfig, fe.Field(), fe.Tag()),
			"field", fe.Field(),
		))
	}
	return result.ErrorOrNil()
}
