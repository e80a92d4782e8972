// Package api provides the HTTP client facade for the studio backend.
//
// Information Hiding:
// - Endpoint paths and request encodings hidden behind typed methods
// - The loosely-typed {success, error, ...} envelope is normalized into
//   a payload or an *Error carrying its Kind
// - Transport details (timeouts, logging) configured once per Client

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// Client talks to the studio REST API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-request deadline. Zero means no client-side deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client rooted at baseURL (for example http://host:8000/api).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope holds the fields every JSON response shares.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send issues the request and logs its outcome.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.Method, "path", req.URL.Path, "error", err)
		return nil, transport(0, err)
	}
	c.logger.Debug("api request",
		"method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// doJSON performs a JSON call. The payload is decoded into out whenever the
// body is valid JSON, so fields present on failure (such as tex_path) are
// still available to the caller alongside the returned *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return transport(0, err)
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	return decodeEnvelope(resp.StatusCode, data, out)
}

func decodeEnvelope(status int, data []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return transport(status, fmt.Errorf("malformed response (HTTP %d): %w", status, err))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return transport(status, fmt.Errorf("unexpected payload: %w", err))
		}
	}
	if env.Success == nil || !*env.Success {
		return business(status, env.Error)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}
