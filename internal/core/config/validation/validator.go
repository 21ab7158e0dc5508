package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/signalfx/docker-stats-agent/internal/utils"
	validator "gopkg.in/go-playground/validator.v9"
)

// Validatable should be implemented by config structs that want to provide
// validation when the config is loaded.
type Validatable interface {
	Validate() error
}

// ValidateCustomConfig runs the Validate method of conf if it has one
func ValidateCustomConfig(conf interface{}) error {
	if v, ok := conf.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	// Report fields by the name they have in the config file
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return utils.YAMLNameOfField(field)
	})
	return v
}()

// ValidateStruct uses the `validate` struct tags to do standard validation
func ValidateStruct(confStruct interface{}) error {
	err := validate.Struct(confStruct)
	if err != nil {
		if ves, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, e := range ves {
				msgs = append(msgs, fmt.Sprintf("Validation error in field '%s': %s", e.Field(), describe(e)))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func describe(e validator.FieldError) string {
	if e.Param() == "" {
		return e.Tag()
	}
	return fmt.Sprintf("%s=%s (got %v)", e.Tag(), e.Param(), e.Value())
}
