package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dusk-indust/userdesk/internal/user"
)

// Compile-time interface check.
var _ Gateway = (*HTTPClient)(nil)

// RequestIDHeader carries a per-call id so calls can be matched in logs.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 512

// HTTPClient implements Gateway over the JSON REST API.
type HTTPClient struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	log     *zap.Logger
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// WithRateLimit paces calls to at most perSecond, with no burst beyond one.
// Zero or negative leaves calls unpaced.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *HTTPClient) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewHTTPClient creates a client for DefaultBaseURL unless overridden.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: DefaultBaseURL,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ListUsers fetches the full user list.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]user.Record, error) {
	var out []user.Record
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []user.Record{}
	}
	return out, nil
}

// CreateUser posts draft and returns the server's echo. The draft's id is
// never sent.
func (c *HTTPClient) CreateUser(ctx context.Context, draft user.Record) (user.Record, error) {
	draft.ID = 0
	var out user.Record
	if err := c.do(ctx, "create user", http.MethodPost, "/users", draft, &out); err != nil {
		return user.Record{}, err
	}
	return out, nil
}

// UpdateUser puts r to /users/{id} and returns the server's echo.
func (c *HTTPClient) UpdateUser(ctx context.Context, r user.Record) (user.Record, error) {
	var out user.Record
	if err := c.do(ctx, "update user", http.MethodPut, userPath(r.ID), r, &out); err != nil {
		return user.Record{}, err
	}
	return out, nil
}

// DeleteUser deletes /users/{id}. The response body is ignored.
func (c *HTTPClient) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, "delete user", http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id int) string {
	return "/users/" + strconv.Itoa(id)
}

// do performs one JSON round trip. A nil body sends no payload; a nil out
// discards the response body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("gateway: %s: %w", op, err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: %s: marshal: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("gateway: %s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("gateway call failed",
			zap.String("op", op), zap.String("url", url), zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("gateway: %s: %w", op, err)
	}
	defer resp.Body.Close()

	c.log.Debug("gateway call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", url),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gateway: %s: decode response: %w", op, err)
	}
	return nil
}
