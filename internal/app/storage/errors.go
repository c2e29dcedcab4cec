package storage

import (
	"errors"
	"fmt"
)

// Code identifies a class of expected storage failure. The numbering matches
// the wire-level error enum exposed to API callers.
type Code int

const (
	CodeFatal Code = iota + 1
	CodeNotFound
	CodeInvalidParameter
	CodeAlreadyExists
	CodePermissionDenied
)

var messages = map[Code]string{
	CodeFatal:            "A fatal error occurred. Please try again later.",
	CodeNotFound:         "Entity not found.",
	CodeInvalidParameter: "Invalid parameter provided.",
	CodeAlreadyExists:    "Existing entity.",
	CodePermissionDenied: "Permission denied.",
}

// Error is the typed error value returned by stores and services for all
// expected business failures. Only driver/connectivity faults carry
// CodeFatal; everything else is a recoverable, caller-translatable outcome.
type Error struct {
	Code    Code   `json:"error"`
	Message string `json:"message"`
	Details string `json:"details"`
	cause   error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap exposes the underlying driver error for fatal failures.
func (e *Error) Unwrap() error { return e.cause }

// NewError builds a typed error with the fixed message for its code.
func NewError(code Code, details string) *Error {
	msg, ok := messages[code]
	if !ok {
		msg = "N/A"
	}
	if details == "" {
		details = "N/A"
	}
	return &Error{Code: code, Message: msg, Details: details}
}

// NotFound reports a missing entity.
func NotFound(details string) *Error { return NewError(CodeNotFound, details) }

// AlreadyExists reports a duplicate unique key at create time.
func AlreadyExists(details string) *Error { return NewError(CodeAlreadyExists, details) }

// InvalidParameter reports a malformed filter or range.
func InvalidParameter(details string) *Error { return NewError(CodeInvalidParameter, details) }

// PermissionDenied reports that the actor lacks rights over the entity.
func PermissionDenied(details string) *Error { return NewError(CodePermissionDenied, details) }

// Fatal wraps an unrecoverable driver or connectivity failure. Callers must
// treat these as request-level 5xx-equivalent outcomes; no retries happen
// inside this layer.
func Fatal(cause error) *Error {
	e := NewError(CodeFatal, "")
	if cause != nil {
		e.Details = cause.Error()
		e.cause = cause
	}
	return e
}

// CodeOf extracts the storage code from an error chain, or CodeFatal when the
// error is not a typed storage error.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeFatal
}

// IsNotFound reports whether err is a typed not-found failure.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeNotFound
}

// IsAlreadyExists reports whether err is a typed duplicate-key failure.
func IsAlreadyExists(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == CodeAlreadyExists
}
