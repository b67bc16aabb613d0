package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned when no credential or transport is set.
	ErrNotConfigured = errors.New("gemini: client not configured")
	// ErrEndpointsExhausted is returned after every endpoint failed.
	ErrEndpointsExhausted = errors.New("gemini: all endpoints failed")
	// ErrEmptyCompletion means the service answered without any text.
	ErrEmptyCompletion = errors.New("gemini: empty completion")
	// ErrMalformedResponse means the response body or completion was not valid JSON.
	ErrMalformedResponse = errors.New("gemini: malformed response")
	// ErrMissingIntent means the completion parsed but carried no intent.
	ErrMissingIntent = errors.New("gemini: completion missing intent")
)

// StatusError is a non-2xx reply from the service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("gemini: api call failed: %d - %s", e.Code, msg)
}

// NotFound reports whether the model endpoint does not exist.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}
