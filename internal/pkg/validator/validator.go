package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Time of day, HH:MM on a 24h clock
	validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})

	// Calendar date, YYYY-MM-DD
	validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := time.Parse("2006-01-02", value)
		return err == nil
	})

	validate.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "pending", "confirmed", "cancelled", "completed", "no-show":
			return true
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fields[field] = "This field is required"
		case "min":
			fields[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			fields[field] = "Value is too long (max: " + fe.Param() + ")"
		case "gte":
			fields[field] = "Value must be at least " + fe.Param()
		case "lte":
			fields[field] = "Value must be at most " + fe.Param()
		case "uuid":
			fields[field] = "Invalid UUID"
		case "hhmm":
			fields[field] = "Invalid time. Must be HH:MM"
		case "isodate":
			fields[field] = "Invalid date. Must be YYYY-MM-DD"
		case "booking_status":
			fields[field] = "Invalid status. Must be: pending, confirmed, cancelled, completed, or no-show"
		default:
			fields[field] = "Invalid value"
		}
	}

	return fields
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
