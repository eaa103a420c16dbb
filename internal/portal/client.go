package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"onboarding_portal/internal/model"
	"onboarding_portal/pkg/logger"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const DefaultPrefix = "/api/v1"

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx, non-401 answer from the portal API. Message is what
// the user should see verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	return 0
}

// UnauthorizedHook is called after a 401 has cleared the session in place.
type UnauthorizedHook func(ctx context.Context, s *model.Session)

// Client talks to the portal REST API on behalf of the session found in the
// request context.
type Client struct {
	baseURL        string
	prefix         string
	httpClient     *http.Client
	onUnauthorized UnauthorizedHook
	metrics        *Metrics
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds every call. Zero keeps calls unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithPrefix(prefix string) Option {
	return func(c *Client) {
		c.prefix = strings.TrimRight(prefix, "/")
	}
}

func WithUnauthorizedHook(hook UnauthorizedHook) Option {
	return func(c *Client) {
		c.onUnauthorized = hook
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		prefix:     DefaultPrefix,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request describes one call. Body is JSON-encoded unless it is an io.Reader,
// in which case it is sent as is and Header must carry its content type.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

type sessionKey struct{}

// WithSession binds the session whose credential is attached to every call
// made with ctx.
func WithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionKey{}).(*model.Session)
	return s
}

// Do performs the call and decodes a successful body into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// Stream performs the call and hands back the open response on success.
// The caller must close the body.
func (c *Client) Stream(ctx context.Context, req Request) (*http.Response, error) {
	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	log := logger.Component("portal")

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + c.prefix + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := "application/json"
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
		contentType = ""
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	session := SessionFrom(ctx)
	if session.Authenticated() {
		httpReq.Header.Set("Authorization", "Bearer "+session.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(method, "error", time.Since(start))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		log.Info("portal rejected credential", zap.String("method", method), zap.String("path", req.Path))
		if session != nil {
			session.Clear()
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx, session)
			}
		}
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(data, resp.StatusCode),
		}
		log.Debug("portal call failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	return resp, nil
}

// errorMessage extracts the user-facing text from an error body: a string
// detail, the msg fields of a validation list, or a generic fallback.
func errorMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("Error %d", status)

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return fallback
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		if text == "" {
			return fallback
		}
		return text
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
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
		return fallback
	}

	if string(payload.Detail) == "null" {
		return fallback
	}
	return string(payload.Detail)
}

func escape(id string) string {
	return url.PathEscape(id)
}
