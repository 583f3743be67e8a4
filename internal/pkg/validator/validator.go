package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"transporteuni-api/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

var (
	hhmmRegex     = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	plateRegex    = regexp.MustCompile(`^[A-Z]{2,3}\d{3}[A-Z]{0,2}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[\d\s\-()]{10,15}$`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

// get returns the shared validator, registering custom rules on first use
func get() *validator.Validate {
	once.Do(func() {
		v := validator.New()

		// Report fields by their JSON names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("hhmm", matches(hhmmRegex))
		_ = v.RegisterValidation("currency", matches(currencyRegex))
		_ = v.RegisterValidation("plate", matches(plateRegex))
		_ = v.RegisterValidation("phone", matches(phoneRegex))

		instance = v
	})
	return instance
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Struct validates s and returns a ValidationError joining every field message
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(err.Error())
	}

	return domain.NewValidationError(Messages(verrs))
}

// Messages renders validation errors as a single ", " separated string
func Messages(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return strings.Join(msgs, ", ")
}

// IsHHMM reports whether s is a valid HH:MM time
func IsHHMM(s string) bool {
	return hhmmRegex.MatchString(s)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "hhmm":
		return fmt.Sprintf("%s must be in HH:MM format", field)
	case "currency":
		return fmt.Sprintf("%s must be a 3-letter currency code", field)
	case "plate":
		return fmt.Sprintf("%s is not a valid license plate", field)
	case "phone":
		return fmt.Sprintf("%s is not a valid phone number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
