// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these typed errors; handlers map them to HTTP status codes
// and a JSON body with a single "error" field (plus an isPasswordProtected
// flag for the entry-password flows).
package apperr

import (
	"errors"
	"net/http"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation (duplicate email, collaborator).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports a missing user or post.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AuthError reports bad credentials or a bad token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// AccessDeniedError reports a failed entry-password gate. PasswordProtected
// is surfaced to the client so it can prompt for a password.
type AccessDeniedError struct {
	Message           string
	PasswordProtected bool
}

func (e *AccessDeniedError) Error() string { return e.Message }

// Validation returns a new ValidationError.
func Validation(msg string) error { return &ValidationError{Message: msg} }

// Conflict returns a new ConflictError.
func Conflict(msg string) error { return &ConflictError{Message: msg} }

// NotFound returns a new NotFoundError.
func NotFound(msg string) error { return &NotFoundError{Message: msg} }

// Auth returns a new AuthError.
func Auth(msg string) error { return &AuthError{Message: msg} }

// AccessDenied returns a new AccessDeniedError.
func AccessDenied(msg string, passwordProtected bool) error {
	return &AccessDeniedError{Message: msg, PasswordProtected: passwordProtected}
}

// Status maps an error to its default HTTP status code. Endpoints that report
// a class differently (e.g. login reporting an unknown account as 400) apply
// their own mapping before falling back to this one.
func Status(err error) int {
	var (
		validation *ValidationError
		conflict   *ConflictError
		notFound   *NotFoundError
		auth       *AuthError
		denied     *AccessDeniedError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &conflict):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &denied):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// IsPasswordProtected reports whether err is an AccessDeniedError carrying
// the password-protected flag.
func IsPasswordProtected(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied) && denied.PasswordProtected
}
