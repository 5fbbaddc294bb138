package serrors

import "fmt"

// Base is a coded error carried across service boundaries. Code is stable and
// machine-readable; Message is operator-facing; Hint is optional remediation.
type Base struct {
	Code    string
	Message string
	Hint    string
}

func NewError(code, message, hint string) *Base {
	return &Base{Code: code, Message: message, Hint: hint}
}

func (e *Base) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMessage returns a copy of the error with a more specific message,
// keeping the code so errors.Is against the template still matches by code.
func (e *Base) WithMessage(message string) *Base {
	return &Base{Code: e.Code, Message: message, Hint: e.Hint}
}

// Is matches any *Base with the same code, so wrapped instances created via
// WithMessage compare equal to their template.
func (e *Base) Is(target error) bool {
	t, ok := target.(*Base)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
