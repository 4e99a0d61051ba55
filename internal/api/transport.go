// Package api provides low-level HTTP transport for DefectDojo API calls.
package api

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dojokit/go-defectdojo/internal/auth"
	"github.com/dojokit/go-defectdojo/internal/codec"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// HeaderRequestID carries a per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

var (
	// ErrUnmarshal marks a response body that could not be decoded.
	ErrUnmarshal = errors.New("unmarshaling response")

	// ErrResponseTooLarge marks a response body over the size limit. Reading stops at the limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// Transport handles HTTP communication with the DefectDojo API.
// One Transport, and therefore one connection pool, is shared by all services of a client.
type Transport struct {
	BaseURL     *url.URL
	Credentials *auth.Credentials
	UserAgent   string

	// Limiter, when set, throttles requests client-side. Requests wait; they are never dropped.
	Limiter *rate.Limiter

	Logger *zap.Logger

	client *resty.Client
}

// NewTransport creates a Transport with the given configuration.
func NewTransport(baseURL string, creds *auth.Credentials, httpClient *http.Client) (*Transport, error) {
	if !creds.Valid() {
		return nil, fmt.Errorf("credentials must be provided")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	return &Transport{
		BaseURL:     u,
		Credentials: creds,
		UserAgent:   "go-defectdojo/1.0",
		Logger:      zap.NewNop(),
		client:      resty.NewWithClient(httpClient).SetResponseBodyLimit(defaultMaxBodySize),
	}, nil
}

// Close releases idle connections held by the shared client.
func (t *Transport) Close() {
	t.client.GetClient().CloseIdleConnections()
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers http.Header
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// URL resolves a request path against the base URL.
func (t *Transport) URL(path string) string {
	return t.BaseURL.JoinPath(path).String()
}

// Do executes an API request and returns the raw response.
// Non-2xx statuses are not errors at this level.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	r, err := t.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	target := t.URL(req.Path)
	resp, err := r.Execute(req.Method, target)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, defaultMaxBodySize)
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	t.logger().Debug("api request",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()),
		zap.String("request_id", r.Header.Get(HeaderRequestID)),
	)

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
	}, nil
}

// DoJSON executes a request and unmarshals the JSON response into result.
// It only attempts to unmarshal on success status codes (< 400).
func (t *Transport) DoJSON(ctx context.Context, req *Request, result any) (*Response, error) {
	resp, err := t.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if result != nil && len(resp.Body) > 0 && resp.StatusCode < http.StatusBadRequest {
		if err := codec.Unmarshal(resp.Body, result); err != nil {
			return resp, fmt.Errorf("%w: %w", ErrUnmarshal, err)
		}
	}

	return resp, nil
}

func (t *Transport) buildRequest(ctx context.Context, req *Request) (*resty.Request, error) {
	r := t.client.R().SetContext(ctx)

	if req.Body != nil {
		data, err := codec.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		r.SetBody(data)
		r.Header.Set("Content-Type", "application/json")
	}

	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	r.Header.Set("Accept", "application/json")
	r.Header.Set("User-Agent", t.UserAgent)

	// Apply authentication
	maps.Copy(r.Header, t.Credentials.Headers())

	// Apply custom headers
	maps.Copy(r.Header, req.Headers)

	if r.Header.Get(HeaderRequestID) == "" {
		r.Header.Set(HeaderRequestID, uuid.NewString())
	}

	return r, nil
}

func (t *Transport) logger() *zap.Logger {
	if t.Logger == nil {
		return zap.NewNop()
	}
	return t.Logger
}
