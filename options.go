package defectdojo

import (
	"net/http"
	"time"

	"github.com/dojokit/go-defectdojo/config"
	"go.uber.org/zap"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	proxy      config.ProxyConfig
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
	rateLimit  float64
	rateBurst  int
}

// WithProxy routes requests through an authenticating HTTP proxy.
// The proxy is only used when the config is complete.
// Note: the proxy route is ignored when WithHTTPClient is used; the
// Proxy-Authorization header is still sent.
func WithProxy(p config.ProxyConfig) ClientOption {
	return func(c *clientConfig) {
		c.proxy = p
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default request timeout.
// Note: This option is ignored when WithHTTPClient is used;
// set the timeout directly on the provided client instead.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for debug output. Nil is ignored.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *clientConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit throttles requests to rps per second with the given burst.
// Requests wait for a token; nothing is retried or dropped.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *clientConfig) {
		if rps > 0 {
			c.rateLimit = rps
			c.rateBurst = max(burst, 1)
		}
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
}

func newRequestConfig() *requestConfig {
	return &requestConfig{
		headers: make(http.Header),
	}
}

func (r *requestConfig) apply(opts ...RequestOption) {
	for _, opt := range opts {
		opt(r)
	}
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}

// WithHeaders adds multiple custom headers to a request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(r *requestConfig) {
		for k, v := range headers {
			r.headers.Set(k, v)
		}
	}
}

// WithRequestID sets the X-Request-ID header for tracing.
// Without it every request gets a random id.
func WithRequestID(id string) RequestOption {
	return WithHeader("X-Request-ID", id)
}
