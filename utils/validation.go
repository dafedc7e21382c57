package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationMessages flattens binding errors into per-field messages for
// the 422 envelope. Non-validator errors produce a single payload message.
func ValidationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"payload": "The request payload is malformed."}
	}

	msgs := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := snakeCase(fe.Field())
		msgs[field] = fieldMessage(field, fe)
	}
	return msgs
}

// snakeCase converts a struct field name to its JSON-ish form, e.g.
// PasswordConfirmation -> password_confirmation.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s must not exceed %s characters.", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", snakeCase(fe.Param()))
	case "oneof":
		return fmt.Sprintf("Invalid %s. Allowed values: %s.", field, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
