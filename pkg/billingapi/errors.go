package billingapi

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBaseURL  = errors.New("billingapi: invalid base URL")
	ErrRequestFailed   = errors.New("billingapi: request failed")
	ErrDecodeResponse  = errors.New("billingapi: failed to decode response")
	ErrEncodeRequest   = errors.New("billingapi: failed to encode request")
	ErrMissingResource = errors.New("billingapi: response has no data")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string // server-provided message, may be empty
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billingapi: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("billingapi: status %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the server message meant for the end user.
func (e *APIError) UserMessage() string {
	return e.Message
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
