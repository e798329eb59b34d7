// Package client submits validated field geometries to the analysis
// endpoint and classifies the outcome. It performs no retries: the
// operation is idempotent and user-initiated, so retry stays with the
// caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/croplens/api/internal/analysis"
	"github.com/croplens/api/internal/models"
)

// DefaultTimeout bounds the full round trip of one analysis submission.
// Large fields legitimately take a while upstream; past this bound the
// call is aborted and classified as a timeout.
const DefaultTimeout = 45 * time.Second

const analyzePath = "/api/analyze_field"

// Kind classifies a failed submission.
type Kind int

const (
	// KindRejected means the server answered with a well-formed failure
	// envelope; Message carries the server's reason.
	KindRejected Kind = iota

	// KindTimeout means the round trip exceeded the client's bound.
	KindTimeout

	// KindTransport means no usable response reached the client.
	KindTransport
)

// String returns a short label for logging.
func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is the classified failure returned by Submit.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AnalysisRequest is the wire payload for the analyze endpoint.
type AnalysisRequest struct {
	Geometry   *models.Geometry        `json:"geometry"`
	Properties *models.FieldProperties `json:"properties,omitempty"`
}

// Client talks to the analysis API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default round-trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates an analysis client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts the geometry for analysis and returns the embedded result.
// Callers are expected to have validated the field already; the server
// re-validates regardless. Failures come back as *Error with the kind
// distinguishing a structured rejection from a timeout from a dead
// transport.
func (c *Client) Submit(ctx context.Context, geom *models.Geometry, props *models.FieldProperties) (*analysis.Result, error) {
	body, err := json.Marshal(AnalysisRequest{
		Geometry:   geom,
		Properties: props,
	})
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "failed to encode analysis request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "failed to build analysis request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{
				Kind:    KindTimeout,
				Message: "analysis timed out; the field may be too large or the service busy",
				Err:     err,
			}
		}
		return nil, &Error{Kind: KindTransport, Message: "no response from analysis service", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "failed to read analysis response", Err: err}
	}

	// Every outcome, success or failure, arrives in the standard envelope.
	// Prefer the server-supplied message when the body decodes; otherwise
	// fall back to a generic transport failure.
	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("analysis service returned %s with an unreadable body", resp.Status),
			Err:     err,
		}
	}

	if !envelope.Success {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("analysis service returned %s", resp.Status)
		}
		return nil, &Error{Kind: KindRejected, Message: message}
	}

	var result analysis.Result
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, &Error{Kind: KindTransport, Message: "failed to decode analysis result", Err: err}
	}

	return &result, nil
}

// isTimeout distinguishes an elapsed deadline from a dead transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
