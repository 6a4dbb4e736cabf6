// Package stylist implements the StylistClient port against the remote
// styling backend's REST API.
package stylist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"

	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StylistClient = (*Client)(nil)

const (
	// defaultTimeout bounds every JSON request.
	defaultTimeout = 10 * time.Second

	// defaultUploadTimeout bounds multipart uploads, which carry image bytes.
	defaultUploadTimeout = 30 * time.Second

	// successCode is the envelope code the backend uses for success.
	successCode = 200

	// maxPlainTextMessage caps how much of a non-JSON error body is carried
	// into the error message.
	maxPlainTextMessage = 200
)

// Client implements the driven.StylistClient port. Every operation funnels
// through a single request helper that attaches the bearer token, enforces a
// per-call deadline, unwraps the backend's response envelope, and classifies
// failures into driven.APIError kinds. The client never retries; callers
// decide retry policy.
type Client struct {
	http           *http.Client
	baseURL        string
	sessions       driven.SessionStore
	onUnauthorized func()

	// Timeout and UploadTimeout may be overridden before first use;
	// the constructors set the defaults.
	Timeout       time.Duration
	UploadTimeout time.Duration
}

// NewClient creates a Client for the given base URL (scheme://host/api).
// GET responses are cached in memory with httpcache so conditional requests
// spare the backend on wardrobe refreshes. onUnauthorized is invoked once
// per request that comes back 401, after the stored session has been
// cleared; pass nil when no notification is wanted.
func NewClient(baseURL string, sessions driven.SessionStore, onUnauthorized func()) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()

	return &Client{
		http:           &http.Client{Transport: cacheTransport},
		baseURL:        strings.TrimRight(baseURL, "/"),
		sessions:       sessions,
		onUnauthorized: onUnauthorized,
		Timeout:        defaultTimeout,
		UploadTimeout:  defaultUploadTimeout,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, sessions driven.SessionStore, onUnauthorized func()) *Client {
	return &Client{
		http:           httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		sessions:       sessions,
		onUnauthorized: onUnauthorized,
		Timeout:        defaultTimeout,
		UploadTimeout:  defaultUploadTimeout,
	}
}

// doJSON issues a JSON request and returns the unwrapped payload.
// body is marshaled when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	return c.roundTrip(ctx, method, path, reader, "application/json", c.Timeout)
}

// roundTrip performs one request/response cycle against the backend and
// normalizes the outcome. contentType is empty for bodiless requests; the
// multipart path passes the form writer's boundary content type.
func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader, contentType string, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", path, err)
	}

	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	token, err := c.sessions.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bearer token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, c.expireSession(ctx, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.APIError{
			Kind:       driven.ErrorKindRequestFailed,
			HTTPStatus: resp.StatusCode,
			Message:    failureMessage(respBody, resp.Status),
			Envelope:   respBody,
		}
	}

	return unwrap(respBody)
}

// expireSession applies the hard 401 rule: clear the stored token and cached
// profile, notify the registered callback, and fail with an unauthorized
// error. Runs even when the response body is not JSON.
func (c *Client) expireSession(ctx context.Context, body []byte) error {
	if err := c.sessions.Clear(ctx); err != nil {
		slog.Warn("failed to clear session after 401", "error", err)
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	msg := extractEnvelopeMessage(body)
	if msg == "" {
		msg = "session expired, please sign in again"
	}

	return &driven.APIError{
		Kind:       driven.ErrorKindUnauthorized,
		HTTPStatus: http.StatusUnauthorized,
		Message:    msg,
		Envelope:   body,
	}
}

// classifyTransportError maps fetch-layer failures onto the error taxonomy:
// deadline expiry becomes a timeout, everything else an unreachable backend.
// Caller-initiated cancellation is passed through untouched.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &driven.APIError{
			Kind:    driven.ErrorKindTimeout,
			Message: "request timeout, please check your connection",
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &driven.APIError{
		Kind:    driven.ErrorKindUnreachable,
		Message: "styling backend unreachable, verify the backend is running",
	}
}

// failureMessage extracts a human-readable message from a non-2xx response
// body: envelope message fields first, then the plain text body truncated to
// 200 characters, then the HTTP status line.
func failureMessage(body []byte, status string) string {
	if msg := extractEnvelopeMessage(body); msg != "" {
		return msg
	}

	text := strings.TrimSpace(string(body))
	if text != "" {
		if len(text) > maxPlainTextMessage {
			cut := maxPlainTextMessage
			// Back up to a rune boundary so the cut never splits a
			// multibyte character.
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut]
		}
		return text
	}

	return status
}
