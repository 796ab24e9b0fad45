package employees

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an employee does not exist.
	ErrNotFound = errors.New("employee not found")
	// ErrTokenInvalid is returned for unknown, mismatched or expired
	// activation tokens.
	ErrTokenInvalid = errors.New("activation link is invalid or has expired")
	// ErrAlreadyActivated is returned when the employee already has an account.
	ErrAlreadyActivated = errors.New("account is already activated")
	// ErrInactive is returned when inviting a deactivated employee.
	ErrInactive = errors.New("employee is inactive")
)

// ValidationError describes a rejected form field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// MailError reports that the invitation email could not be delivered. The
// employee record and its token were still saved.
type MailError struct {
	EmployeeID int64
	Err        error
}

func (e *MailError) Error() string {
	return fmt.Sprintf("sending invitation for employee %d: %v", e.EmployeeID, e.Err)
}

func (e *MailError) Unwrap() error {
	return e.Err
}
