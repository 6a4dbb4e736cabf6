package stylist

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// envelope is the backend's uniform response wrapper. All fields are
// optional on the wire; hasData distinguishes an absent "data" key from an
// explicit null, because null is still an authoritative payload.
type envelope struct {
	Code    *int            `json:"code"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`

	hasData bool
	raw     json.RawMessage
}

// unwrap parses a 2xx response body and applies the envelope contract:
//   - code present and not 200        -> business error carrying the code
//   - success == false                -> business error without a code
//   - "data" key present (even null)  -> data is the payload
//   - otherwise                       -> the whole body is the payload
//
// Non-object JSON (arrays, scalars) skips the envelope entirely and is
// returned as-is; endpoints that predate the envelope respond that way.
func unwrap(body []byte) (json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, &driven.APIError{
			Kind:     driven.ErrorKindInvalidResponse,
			Message:  "backend returned a malformed response",
			Envelope: body,
		}
	}

	if !isJSONObject(body) {
		return json.RawMessage(body), nil
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, &driven.APIError{
			Kind:     driven.ErrorKindInvalidResponse,
			Message:  "backend returned a malformed response",
			Envelope: body,
		}
	}

	if apiErr := env.failure(); apiErr != nil {
		return nil, apiErr
	}

	return env.payload(), nil
}

// decodeEnvelope parses an object body into an envelope, probing the raw
// keys to record whether "data" was present at all.
func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("probe envelope keys: %w", err)
	}
	_, env.hasData = keys["data"]
	env.raw = body

	return &env, nil
}

// failure returns the business error signaled by the envelope, or nil when
// the envelope denotes success. The code check takes precedence over the
// success flag.
func (e *envelope) failure() *driven.APIError {
	if e.Code != nil && *e.Code != successCode {
		return &driven.APIError{
			Kind:     driven.ErrorKindBusiness,
			Code:     *e.Code,
			Message:  e.message(),
			Envelope: e.raw,
		}
	}

	if e.Success != nil && !*e.Success {
		return &driven.APIError{
			Kind:     driven.ErrorKindBusiness,
			Message:  e.message(),
			Envelope: e.raw,
		}
	}

	return nil
}

// payload returns data when the key was present (explicit null included),
// otherwise the whole envelope for endpoints that do not wrap their payload.
func (e *envelope) payload() json.RawMessage {
	if e.hasData {
		return e.Data
	}
	return e.raw
}

// message returns the first populated message field, in the backend's
// documented precedence: message, error, msg.
func (e *envelope) message() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	case e.Msg != "":
		return e.Msg
	}
	if e.Code != nil {
		return fmt.Sprintf("request failed with code %d", *e.Code)
	}
	return "request failed"
}

// extractEnvelopeMessage best-effort reads a message from an arbitrary
// response body. Returns "" when the body is not an envelope-shaped object
// or carries no message fields.
func extractEnvelopeMessage(body []byte) string {
	if !isJSONObject(body) {
		return ""
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	switch {
	case env.Message != "":
		return env.Message
	case env.Error != "":
		return env.Error
	case env.Msg != "":
		return env.Msg
	}
	return ""
}

// isJSONObject reports whether the body's first significant byte opens an
// object.
func isJSONObject(body []byte) bool {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
