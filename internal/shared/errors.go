package shared

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure, without saying which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the acting identity does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrCSRFTokenMissing occurs when a mutating request carries no CSRF token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when the CSRF token does not match the session token.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// FieldErrors maps form field names to user-visible validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// AsFieldErrors unwraps err into FieldErrors when possible.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
