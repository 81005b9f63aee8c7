package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the domain error type. Code is a stable machine-readable
// identifier, Status the HTTP status it maps to, and Err an optional
// wrapped cause that never leaves the process.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an Error with no wrapped cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an Error around a cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Clone copies the error, optionally overriding the message. The original
// sentinel stays untouched.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromError coerces any error into an *Error. Unknown errors become an
// internal error so their details never reach a client.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Generic sentinels.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Attendance and leave workflow sentinels.
var (
	ErrQRAlreadyExists   = New("QR_ALREADY_EXISTS", http.StatusConflict, "a QR code already exists for this date")
	ErrScanInProgress    = New("SCAN_IN_PROGRESS", http.StatusTooManyRequests, "a scan is already being processed")
	ErrInvalidSubstitute = New("INVALID_SUBSTITUTE", http.StatusBadRequest, "substitute must differ from the beneficiary")
	ErrAlreadyDecided    = New("ALREADY_DECIDED", http.StatusConflict, "leave request has already been decided")
)
