// Package errs defines the coded error taxonomy shared by the bot components.
package errs

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	CodeUnknown       = "UNKNOWN"
	CodeConfig        = "CONFIG"
	CodeAuthorization = "AUTHORIZATION"
	CodePersistence   = "PERSISTENCE"
	CodeDelivery      = "DELIVERY"
	CodeScheduling    = "SCHEDULING"
)

// ApplicationError is implemented by every error created in this package.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is a coded error with an optional cause.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

// Code returns the error code.
func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

// NewConfigError reports an invalid or unreadable configuration.
func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}

// NewAuthorizationError reports a sender outside the allow-list.
func NewAuthorizationError(senderID int64) error {
	return newError(CodeAuthorization, fmt.Sprintf("sender %d is not authorized", senderID), nil)
}

// NewPersistenceError reports a ledger backend failure.
func NewPersistenceError(message string, cause error) error {
	return newError(CodePersistence, message, cause)
}

// NewDeliveryError reports a failed chat send or delete.
func NewDeliveryError(message string, cause error) error {
	return newError(CodeDelivery, message, cause)
}

// NewSchedulingError reports an anomaly inside a scheduler cycle.
func NewSchedulingError(message string, cause error) error {
	return newError(CodeScheduling, message, cause)
}
