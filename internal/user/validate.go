package user

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern is deliberately loose: something@something.something with no
// whitespace or extra '@'.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InvalidEmailMessage is shown when the email field fails the pattern check.
const InvalidEmailMessage = "Please enter a valid email address."

// ValidationError reports the first field that blocked a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("user: invalid %s: %s", e.Field, e.Message)
}

// requiredFields lists the form fields that must be non-blank, in form order.
var requiredFields = []string{FieldName, FieldUsername, FieldEmail, FieldPhone, FieldStreet, FieldCity}

// Validate applies the one validation policy shared by the add and edit flows.
// Required text fields must be non-blank and the email must look like an
// address. Phone and website formats are not checked.
func Validate(r Record) error {
	for _, field := range requiredFields {
		if strings.TrimSpace(r.Field(field)) == "" {
			return &ValidationError{Field: field, Message: Label(field) + " is required."}
		}
	}
	if !emailPattern.MatchString(r.Email) {
		return &ValidationError{Field: FieldEmail, Message: InvalidEmailMessage}
	}
	return nil
}

// Label returns the display name of a field.
func Label(field string) string {
	switch field {
	case FieldCompany:
		return "Company name"
	default:
		return strings.ToUpper(field[:1]) + field[1:]
	}
}
