package booking

import (
	"errors"
	"fmt"
)

// ErrorKind classifies wizard failures.
type ErrorKind string

const (
	CatalogFetchFailed         ErrorKind = "catalogFetchFailed"
	NoMatchingPlansForLocation ErrorKind = "noMatchingPlansForLocation"
	ValidationFailed           ErrorKind = "validationFailed"
	InvalidCredentials         ErrorKind = "invalidCredentials"
	AuthenticationUnavailable  ErrorKind = "authenticationUnavailable"
	PaymentSessionFailed       ErrorKind = "paymentSessionFailed"
	PaymentSignatureMismatch   ErrorKind = "paymentSignatureMismatch"
	PersistenceFailed          ErrorKind = "persistenceFailed"
	InvalidTransition          ErrorKind = "invalidTransition"
)

// ErrStale is returned when an external result arrives after the user has
// moved on. The result has been discarded and the wizard is unchanged.
var ErrStale = errors.New("booking: result superseded by a newer action")

// ErrInvalidCredentials is wrapped by AuthProvider.SignIn when the email or
// password is wrong.
var ErrInvalidCredentials = errors.New("booking: invalid email or password")

// WizardError is a user-visible wizard failure.
type WizardError struct {
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *WizardError) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg += "(" + e.Field + ")"
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WizardError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, msg string, err error) *WizardError {
	return &WizardError{Kind: kind, Message: msg, Err: err}
}

// NewValidationError reports an invalid field value.
func NewValidationError(field, msg string) *WizardError {
	return &WizardError{Kind: ValidationFailed, Field: field, Message: msg}
}

func invalidTransition(op string, s State) *WizardError {
	return &WizardError{Kind: InvalidTransition, Message: fmt.Sprintf("%s is not allowed while %s", op, s)}
}

// IsKind reports whether err is a WizardError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var we *WizardError
	return errors.As(err, &we) && we.Kind == kind
}
