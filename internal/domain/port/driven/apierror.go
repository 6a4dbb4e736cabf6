package driven

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorKind partitions every failure the stylist backend client can produce.
// Callers branch on the kind, never on message text.
type ErrorKind string

const (
	// ErrorKindUnauthorized means the backend rejected the bearer token.
	// The client has already cleared the stored session when this is returned.
	ErrorKindUnauthorized ErrorKind = "unauthorized"

	// ErrorKindBusiness means HTTP succeeded but the response envelope signals
	// a logical failure (code other than 200, or success=false). The backend's
	// message is carried verbatim for display.
	ErrorKindBusiness ErrorKind = "business"

	// ErrorKindTimeout means the per-request deadline elapsed before a
	// response arrived.
	ErrorKindTimeout ErrorKind = "timeout"

	// ErrorKindUnreachable means the request never reached the backend
	// (connection refused, DNS failure, network down).
	ErrorKindUnreachable ErrorKind = "unreachable"

	// ErrorKindInvalidResponse means HTTP succeeded but the body was not
	// valid JSON.
	ErrorKindInvalidResponse ErrorKind = "invalid_response"

	// ErrorKindRequestFailed is any other non-2xx HTTP failure.
	ErrorKindRequestFailed ErrorKind = "request_failed"
)

// APIError is the typed failure returned by every StylistClient operation.
// Code is the backend's business code (0 when absent), HTTPStatus the HTTP
// status (0 for transport-level failures), and Envelope the raw response
// body kept for diagnostics.
type APIError struct {
	Kind       ErrorKind
	Code       int
	HTTPStatus int
	Message    string
	Envelope   json.RawMessage
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("stylist api: %s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("stylist api: %s: %s", e.Kind, e.Message)
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an
// APIError (including nil).
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}
