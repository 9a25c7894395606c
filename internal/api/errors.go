package api

import (
	"fmt"
	"net/http"
)

// Error is returned for any response the API marks as failed.
type Error struct {
	Status  int    // HTTP status code
	Message string // API error text, or the status text when none was sent
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by status code so callers can test against ErrNotFound
// and ErrUnauthorized.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Status == t.Status
	}
	return false
}

var (
	ErrNotFound     = &Error{Status: http.StatusNotFound, Message: "not found"}
	ErrUnauthorized = &Error{Status: http.StatusUnauthorized, Message: "unauthorized"}
)
