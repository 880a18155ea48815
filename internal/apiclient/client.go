// ABOUTME: HTTP client for the bearound REST API with bearer auth and envelope decoding
// ABOUTME: Reports every failure through the notice policy and returns the original error

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// Envelope is the common response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`

	// Pagination is set by endpoints that page beside data.
	Pagination json.RawMessage `json:"pagination,omitempty"`
}

// Decode unmarshals Data into v. Missing or null data leaves v untouched.
func (e *Envelope) Decode(v any) error {
	if v == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

// Request describes one API call. Query is sent on every method; Body
// is JSON-encoded when non-nil.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Doer is what the typed facade needs from the client.
type Doer interface {
	Do(ctx context.Context, req Request) (*Envelope, error)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero means none.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client sends requests to the API. It is safe for concurrent use.
type Client struct {
	base     string
	http     *http.Client
	tokens   TokenSource
	notifier Notifier
	nav      Navigator
	logger   *slog.Logger
}

// New builds a Client. Nil collaborators are replaced by no-ops.
func New(cfg Config, tokens TokenSource, notifier Notifier, nav Navigator) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if tokens == nil {
		tokens = noTokens{}
	}
	if notifier == nil {
		notifier = noNotifier{}
	}
	if nav == nil {
		nav = noNavigator{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		http:     hc,
		tokens:   tokens,
		notifier: notifier,
		nav:      nav,
		logger:   logger.With("component", "apiclient"),
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.base }

// Do sends req and decodes the envelope. Non-2xx answers become a
// *ResponseError and missing answers a *TransportError. Either way the
// failure is reported before it is returned.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	env, err := c.do(ctx, req)
	if err != nil {
		c.report(ctx, err)
		return nil, err
	}
	return env, nil
}

// Get is a convenience for a GET with query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete sends an optional JSON body.
func (c *Client) Delete(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Body: body})
}

func (c *Client) do(ctx context.Context, req Request) (*Envelope, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if token := c.tokens.Token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", method, "path", req.Path, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return nil, &TransportError{Method: method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Method: method, Path: req.Path, Err: fmt.Errorf("reading body: %w", err)}
	}

	c.logger.Debug("api request",
		"method", method, "path", req.Path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &ResponseError{
			Method:     method,
			Path:       req.Path,
			StatusCode: resp.StatusCode,
			Body:       raw,
		}
		if decodeErr == nil {
			re.Message = env.Message
			re.Errors = env.Errors
		}
		return nil, re
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%s %s: decoding response: %w", method, req.Path, decodeErr)
	}
	return &env, nil
}

// report applies the failure policy. It never changes the outcome.
func (c *Client) report(ctx context.Context, err error) {
	class := Classify(err)
	if class == Unreported {
		return
	}

	onLogin := c.nav.OnLoginView(ctx)

	switch class {
	case AuthExpired:
		if onLogin {
			return
		}
		if expErr := c.tokens.Expire(ctx); expErr != nil {
			c.logger.Warn("failed to clear expired session", "error", expErr)
		}
		c.nav.RedirectToLogin(ctx)
		c.notify(ctx, MsgSessionExpired)
	case Forbidden:
		c.notify(ctx, MsgForbidden)
	case ServerFault:
		c.notify(ctx, MsgServerError)
	case ValidationFailed:
		if onLogin {
			return
		}
		var re *ResponseError
		if errors.As(err, &re) {
			c.notify(ctx, re.Summary(MsgValidation))
		}
	case NetworkUnreachable:
		c.notify(ctx, MsgNetwork)
	default:
		c.notify(ctx, MsgUnexpected)
	}
}

func (c *Client) notify(ctx context.Context, text string) {
	c.notifier.Notify(ctx, Notice{Level: LevelError, Text: text})
}
