// Package validation provides custom validators for the application
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Initialize registers all custom validators and makes validation errors report json
// field names. It is safe to call more than once.
func Initialize() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		for tag, fn := range map[string]validator.Func{
			"nospaces": validateNoSpaces,
			"hhmm":     validateClock,
			"ymd":      validateDate,
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(err)
			}
		}
	})
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// validateNoSpaces checks if a string contains non-space characters
func validateNoSpaces(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) != ""
}

// validateClock accepts a 24-hour time of day as HH:MM or HH:MM:SS
func validateClock(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// validateDate accepts a YYYY-MM-DD calendar date
func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// FieldError is a binding failure attributed to one request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Describe turns a gin binding error into field errors. The first entry names the
// field the response should point at. Errors that are not about a field yield an
// entry with an empty Field.
func Describe(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []FieldError{{Message: "malformed JSON body"}}
	}

	return []FieldError{{Message: err.Error()}}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nospaces":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "hhmm":
		return "must be a time of day in HH:MM format"
	case "ymd":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}
