// Package api is the client for the contribution backend: the publicity
// snapshot and STK push payment initiation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/mchango/internal/model"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 16 << 20 // 16 MB, the full transaction history rides on every poll
	userAgent      = "mchango/1.0"

	// RequestIDHeader carries the client-generated payment request ID.
	RequestIDHeader = "X-Request-ID"
)

var (
	// ErrNotConfigured indicates a required endpoint URL is empty.
	ErrNotConfigured = errors.New("api: endpoint not configured")
	// ErrNotFound indicates the endpoint does not exist.
	ErrNotFound = errors.New("api: not found")
	// ErrRateLimited indicates the backend throttled the request.
	ErrRateLimited = errors.New("api: rate limited")
	// ErrUnavailable indicates a 5xx response from the backend.
	ErrUnavailable = errors.New("api: backend unavailable")
	// ErrRejected indicates the backend refused the request (other 4xx).
	ErrRejected = errors.New("api: request rejected")
	// ErrTooLarge indicates the response body exceeded the client's limit.
	ErrTooLarge = errors.New("api: response too large")
)

// Client talks to the contribution backend.
type Client struct {
	baseURL    string
	paymentURL string
	timeout    time.Duration
	http       *http.Client
	newID      func() string
	maxBody    int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize caps the response body read from the backend.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// NewClient creates a client. baseURL serves GET /publicity; paymentURL
// receives payment initiation POSTs. Either may be empty, in which case the
// corresponding call fails with ErrNotConfigured.
func NewClient(baseURL, paymentURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		paymentURL: strings.TrimSpace(paymentURL),
		timeout:    defaultTimeout,
		http:       &http.Client{},
		newID:      uuid.NewString,
		maxBody:    maxBodySize,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchPublicity returns the current totals and transactions.
func (c *Client) FetchPublicity(ctx context.Context) (*model.Publicity, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: api.base_url", ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/publicity", nil)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var raw wirePublicity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("api: parsing publicity: %w", err)
	}
	return raw.toModel(), nil
}

// PaymentResult describes an accepted payment initiation.
type PaymentResult struct {
	RequestID string
	Message   string // backend message, when the response carries one
}

// InitiatePayment asks the backend to send an STK push for req. Any non-2xx
// response is a failure.
func (c *Client) InitiatePayment(ctx context.Context, cr model.ContributionRequest) (*PaymentResult, error) {
	if c.paymentURL == "" {
		return nil, fmt.Errorf("%w: api.payment_url", ErrNotConfigured)
	}

	payload, err := json.Marshal(cr)
	if err != nil {
		return nil, fmt.Errorf("api: encoding payment: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.paymentURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}
	id := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, id)

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", id, err)
	}

	return &PaymentResult{RequestID: id, Message: responseMessage(body)}, nil
}

// do sends req and returns the bounded response body, mapping status codes
// to sentinel errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", userAgent)

	//nolint:gosec // URL comes from user configuration
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w (status %d)", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w (status %d)", ErrRejected, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w (over %d bytes)", ErrTooLarge, c.maxBody)
	}
	return body, nil
}

// responseMessage extracts a "message" field from a JSON body, if present.
func responseMessage(body []byte) string {
	var m struct {
		Message         string `json:"message"`
		CustomerMessage string `json:"CustomerMessage"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if m.CustomerMessage != "" {
		return m.CustomerMessage
	}
	return m.Message
}
