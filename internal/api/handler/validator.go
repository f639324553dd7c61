package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var simpleEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// fieldLabels maps form field names to the label used in messages.
var fieldLabels = map[string]string{
	"firstName":          "First name",
	"lastName":           "Last name",
	"email":              "Email",
	"password":           "Password",
	"confirmPassword":    "Password confirmation",
	"speed":              "Speed",
	"distanceToCustomer": "Distance to customer",
	"mode":               "Mode",
}

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors are taken from the form tag, then the json tag.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return simpleEmailPattern.MatchString(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// FieldErrors is returned by Validate. Fields keeps the struct order so the
// first message is stable.
type FieldErrors struct {
	Fields   []string
	Messages map[string]string
}

func (fe *FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe.Fields))
	for _, f := range fe.Fields {
		msgs = append(msgs, fe.Messages[f])
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first failing field.
func (fe *FieldErrors) First() string {
	if len(fe.Fields) == 0 {
		return ""
	}
	return fe.Messages[fe.Fields[0]]
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := &FieldErrors{Messages: make(map[string]string, len(ve))}
			for _, fe := range ve {
				name := fe.Field()
				if _, dup := out.Messages[name]; dup {
					continue
				}
				out.Fields = append(out.Fields, name)
				out.Messages[name] = fieldError(fe)
			}
			return out
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	label, ok := fieldLabels[field]
	if !ok {
		label = field
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email", "simpleemail":
		return "Please enter a valid email"
	case "eqfield":
		if field == "confirmPassword" {
			return "Passwords do not match"
		}
		return fmt.Sprintf("%s must match %s", label, strings.ToLower(fe.Param()))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, fe.Tag())
	}
}
