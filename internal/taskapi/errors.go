package taskapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrValidation marks client-side constraint violations. Requests carrying
	// a validation error are never sent to the server.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized marks a 401/403 response on an authenticated call. The
	// client treats both uniformly as an expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestFailed marks any other non-2xx response or transport failure.
	// Nothing is retried.
	ErrRequestFailed = errors.New("request failed")
)

// StatusError reports a non-2xx response. Unwrap classifies 401/403 as
// ErrUnauthorized and everything else as ErrRequestFailed so callers can use
// errors.Is without inspecting codes.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, body)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return ErrRequestFailed
	}
}
