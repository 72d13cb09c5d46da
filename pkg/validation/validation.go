package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRegex      = regexp.MustCompile(`^\+?[0-9]{4,15}$`)
	postalCodeRegex = regexp.MustCompile(`^[0-9A-Za-z\- ]{1,16}$`)
)

func ValidatePhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	return phone != "" && phoneRegex.MatchString(phone) && len(phone) <= 16
}

func ValidatePostalCode(code string) bool {
	return postalCodeRegex.MatchString(code)
}

func ValidateName(name string) bool {
	name = strings.TrimSpace(name)
	return len(name) >= 3 && len(name) <= 32
}

// FieldError is the first rule a request body broke. Field is the JSON name.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	if e.Tag == "required" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

// Validator checks request structs against their `validate` tags.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the service's custom tags registered:
// "phone", "postal_code" and "name".
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	}))
	// an empty postal code clears the field on partial updates
	must(v.RegisterValidation("postal_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		return code == "" || ValidatePostalCode(code)
	}))
	must(v.RegisterValidation("name", func(fl validator.FieldLevel) bool {
		return ValidateName(fl.Field().String())
	}))
	return &Validator{v: v}
}

// Struct validates s and returns a *FieldError for the first failing field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
	}
	return err
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
