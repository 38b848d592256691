package taskapi

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

	"github.com/google/uuid"

	"taskline/internal/logging"
	"taskline/internal/session"
)

const defaultHTTPTimeout = 15 * time.Second

// Client talks to the remote task service. All authenticated calls flow
// through the Authorizer transport; construction wires it automatically.
type Client struct {
	baseURL    string
	sessions   session.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. The client's transport is
// still wrapped with the session authorizer.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "taskapi")
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New constructs a task service client rooted at baseURL.
func New(baseURL string, sessions session.Store, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("taskapi: base url required")
	}
	if sessions == nil {
		return nil, errors.New("taskapi: session store required")
	}

	client := &Client{
		baseURL:    baseURL,
		sessions:   sessions,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}

	client.httpClient.Transport = NewAuthorizer(client.httpClient.Transport, sessions)
	return client, nil
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (when non-nil). Non-2xx responses become a StatusError.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		statusErr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
		c.logger.Debug("request rejected",
			logging.String("method", method),
			logging.String("path", path),
			logging.Int(logging.FieldStatus, resp.StatusCode),
			logging.String(logging.FieldRequestID, requestID),
		)
		return fmt.Errorf("%s %s: %w", method, path, statusErr)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
