package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain failure carrying the HTTP status it maps to.
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

// Is matches on Code so that clones and wrapped copies compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeDuplicateApplication = "DUPLICATE_APPLICATION"
	CodeDeadlineExpired      = "DEADLINE_EXPIRED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeTransport            = "TRANSPORT_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

var (
	ErrValidation           = New(CodeValidation, http.StatusBadRequest, "validation failed")
	ErrNotFound             = New(CodeNotFound, http.StatusNotFound, "resource not found")
	ErrDuplicateApplication = New(CodeDuplicateApplication, http.StatusConflict, "you have already applied for this job")
	ErrDeadlineExpired      = New(CodeDeadlineExpired, http.StatusUnprocessableEntity, "the application deadline has passed")
	ErrUnauthorized         = New(CodeUnauthorized, http.StatusUnauthorized, "unauthorized")
	ErrForbidden            = New(CodeForbidden, http.StatusForbidden, "forbidden")
	ErrTransport            = New(CodeTransport, http.StatusBadGateway, "mail transport failure")
	ErrInternal             = New(CodeInternal, http.StatusInternalServerError, "internal server error")

	// ErrCacheMiss is returned by cache lookups when the key is absent.
	ErrCacheMiss = errors.New("cache miss")
)

// FromError normalises any error into an *Error.
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

// Clone returns a copy of the error allowing for message overrides.
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

// HasCode reports whether err normalises to the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
