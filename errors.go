package defectdojo

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dojokit/go-defectdojo/internal/api"
	"github.com/dojokit/go-defectdojo/internal/codec"
)

// APIError represents a general DefectDojo API error.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
	RequestID  string `json:"requestId,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("defectdojo: API error %d: %s (request_id=%s)", e.StatusCode, e.Message, e.RequestID)
	}
	return fmt.Sprintf("defectdojo: API error %d: %s", e.StatusCode, e.Message)
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("defectdojo: authentication failed: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// NotFoundError indicates the requested resource was not found (404).
type NotFoundError struct {
	APIError
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	if e.ResourceType != "" && e.ResourceID != "" {
		return fmt.Sprintf("defectdojo: %s not found: %s", e.ResourceType, e.ResourceID)
	}
	return fmt.Sprintf("defectdojo: resource not found: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *NotFoundError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ValidationError indicates invalid request data (400).
type ValidationError struct {
	APIError
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("defectdojo: validation error: %s (fields: %v)", e.Message, e.Fields)
	}
	return fmt.Sprintf("defectdojo: validation error: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ValidationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// RateLimitError indicates the API rate limit was exceeded (429).
// The client does not retry; RetryAfter is informational.
type RateLimitError struct {
	APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("defectdojo: rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "defectdojo: rate limit exceeded"
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *RateLimitError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("defectdojo: server error %d: %s", e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// TransportError reports a request that did not produce an HTTP response:
// connection and proxy failures, timeouts, or a client that could not be built.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("defectdojo: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeserializationError reports a response body that does not match the expected schema.
type DeserializationError struct {
	Resource string
	Err      error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("defectdojo: decoding %s response: %v", e.Resource, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// PaginationLoopError is returned when a search is still being handed a next
// page after MaxPageCountForGets pages. No partial result accompanies it.
type PaginationLoopError struct {
	PageSize int
	Pages    int
}

func (e *PaginationLoopError) Error() string {
	return fmt.Sprintf("defectdojo: found too many response objects, quitting after %d paginated API pages of %d each",
		e.Pages, e.PageSize)
}

// parseError converts an HTTP response into the appropriate error type.
func parseError(resp *api.Response) error {
	statusCode, body, headers := resp.StatusCode, resp.Body, resp.Headers
	base := APIError{
		StatusCode: statusCode,
		RequestID:  headers.Get(api.HeaderRequestID),
	}

	// Try to parse structured JSON error response
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := codec.Unmarshal(body, &payload); err != nil {
		// Fallback to raw body if not valid JSON
		base.Message = strings.TrimSpace(string(body))
	} else {
		base.Message, base.Detail = payload.Message, payload.Detail
	}
	if base.Message == "" {
		base.Message = base.Detail
	}
	if base.Message == "" {
		base.Message = http.StatusText(statusCode)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		return &NotFoundError{APIError: base}
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base, Fields: parseFieldErrors(body)}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(headers.Get("Retry-After")),
		}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}

// parseFieldErrors reads DRF-style {"field": ["message", ...]} bodies.
func parseFieldErrors(body []byte) map[string]string {
	var raw map[string]any
	if codec.Unmarshal(body, &raw) != nil {
		return nil
	}

	fields := make(map[string]string)
	for name, value := range raw {
		if name == "detail" || name == "message" {
			continue
		}
		switch v := value.(type) {
		case string:
			fields[name] = v
		case []any:
			msgs := make([]string, 0, len(v))
			for _, m := range v {
				msgs = append(msgs, fmt.Sprint(m))
			}
			sort.Strings(msgs)
			fields[name] = strings.Join(msgs, "; ")
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// parseRetryAfter parses the Retry-After header value.
// It handles both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	// Try parsing as seconds first
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second
	}

	// Try parsing as HTTP-date (RFC 1123)
	if t, err := time.Parse(time.RFC1123, value); err == nil {
		duration := time.Until(t)
		if duration > 0 {
			return duration
		}
	}

	return 0
}
