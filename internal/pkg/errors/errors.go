package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound               = errors.New("resource not found")
	ErrAlreadyExists          = errors.New("resource already exists")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrDatabaseError          = errors.New("database error")
	ErrCacheError             = errors.New("cache error")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTooManyAttempts        = errors.New("too many invalid authentication attempts")

	// Request-terminal taxonomy used by the middleware chain.
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
)

type Error struct {
	Err     error
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
		Code:    "INTERNAL_ERROR",
	}
}

// New returns an *Error carrying one of the sentinel errors above so that
// callers can match it with errors.Is and still present a custom message.
func New(kind error, message string) *Error {
	return &Error{
		Err:     kind,
		Message: message,
		Code:    codeFor(kind),
	}
}

// Is reports whether err matches target, following wrapped errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// StatusCode maps an error onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInsufficientPermission), errors.Is(err, ErrTooManyAttempts):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message that is safe to show to clients.
// Internal failures never leak their detail.
func PublicMessage(err error) string {
	if StatusCode(err) == http.StatusInternalServerError {
		return "Something failed."
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func codeFor(kind error) string {
	switch kind {
	case ErrNotFound:
		return "NOT_FOUND"
	case ErrAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrInvalidInput, ErrBadRequest:
		return "BAD_REQUEST"
	case ErrUnauthorized, ErrInvalidCredentials:
		return "UNAUTHORIZED"
	case ErrForbidden, ErrInsufficientPermission, ErrTooManyAttempts:
		return "FORBIDDEN"
	case ErrRateLimited:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
