// Package transport sends JSON requests to the interview service.
// It centralizes base URL handling, timeouts, bearer token attachment and error normalization.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/excel-interviewer/internal/credentials"
	"github.com/jonathan/excel-interviewer/internal/logging"
	"github.com/jonathan/excel-interviewer/internal/metrics"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for requests.
const DefaultUserAgent = "ExcelInterviewCLI/1.0"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	UserAgent   string
	Credentials credentials.Store
	Logger      *zap.Logger
	// HTTPClient overrides the underlying client; its Timeout is replaced by Timeout.
	HTTPClient *http.Client
}

// Client sends requests relative to a base URL.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	creds     credentials.Store
	logger    *zap.Logger
}

// New creates a client. BaseURL must be an absolute http(s) URL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base URL scheme %q", base.Scheme)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		clone := *opts.HTTPClient
		httpClient = &clone
	}
	httpClient.Timeout = timeout

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: userAgent,
		creds:     opts.Credentials,
		logger:    logging.OrNop(opts.Logger),
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Send issues method on path with body JSON-encoded (nil for none) and decodes a 2xx
// response into out (nil to discard). A *json.RawMessage out receives the raw body.
// Failures are *Error values, except caller cancellation which is returned as is.
func (c *Client) Send(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, method, path, start, err)
	}
	defer func() { _ = resp.Body.Close() }()

	elapsed := time.Since(start)
	metrics.ObserveRequest(method, metrics.StatusOutcome(resp.StatusCode), elapsed)
	c.logger.Debug("API call completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", elapsed),
		zap.String("request_id", req.Header.Get("X-Request-ID")))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(method, path, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Kind: classify(err), Method: method, Path: path, Status: resp.StatusCode,
			Detail: "failed to read response body", Cause: err}
	}

	return decode(method, path, resp.StatusCode, data, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	target := c.resolve(path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.creds != nil {
		token, err := c.creds.Token()
		if err != nil {
			c.logger.Warn("Failed to read stored credential", zap.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// resolve joins path onto the base URL, keeping any query string on path.
func (c *Client) resolve(path string) string {
	u := *c.baseURL
	rawPath, query, _ := strings.Cut(path, "?")
	if !strings.HasPrefix(rawPath, "/") {
		rawPath = "/" + rawPath
	}
	u.RawPath = c.baseURL.EscapedPath() + rawPath
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	} else {
		u.Path = u.RawPath
		u.RawPath = ""
	}
	u.RawQuery = query
	return u.String()
}

func (c *Client) fail(ctx context.Context, method, path string, start time.Time, err error) error {
	elapsed := time.Since(start)

	// Teardown is not a transport failure.
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	kind := classify(err)
	metrics.ObserveRequest(method, kind.String(), elapsed)

	terr := &Error{Kind: kind, Method: method, Path: path, Cause: err}
	if kind == KindTimeout {
		terr.Detail = "request timed out"
		c.logger.Error("Request timeout", zap.String("method", method), zap.String("path", path),
			zap.Duration("duration", elapsed))
	} else {
		terr.Detail = "service unreachable"
		c.logger.Warn("Request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
	}
	return terr
}

func (c *Client) statusError(method, path string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	terr := &Error{
		Kind:   KindServiceError,
		Method: method,
		Path:   path,
		Status: resp.StatusCode,
		Detail: extractDetail(data),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		terr.Kind = KindUnauthorized
		if c.creds != nil {
			if err := c.creds.Clear(); err != nil {
				c.logger.Warn("Failed to clear stored credential", zap.Error(err))
			}
		}
	case http.StatusTooManyRequests:
		terr.Kind = KindRateLimited
		c.logger.Warn("Rate limit exceeded", zap.String("method", method), zap.String("path", path))
	}

	if terr.Detail == "" {
		terr.Detail = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	return terr
}

func decode(method, path string, status int, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindServiceError, Method: method, Path: path, Status: status,
			Detail: "malformed response body", Cause: err}
	}
	return nil
}

// classify maps a client-side error onto a Kind.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindServiceError
}

// extractDetail reads the service's "detail" field. FastAPI validation errors carry a
// list of objects with a "msg" field; those are joined.
func extractDetail(data []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
