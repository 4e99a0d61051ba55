// Package auth builds DefectDojo authentication headers.
package auth

import (
	"encoding/base64"
	"net/http"

	"github.com/dojokit/go-defectdojo/config"
	"go.uber.org/zap"
)

// Header names set by Credentials.
const (
	HeaderAuthorization      = "Authorization"
	HeaderProxyAuthorization = "Proxy-Authorization"
)

// Credentials holds the API token and optional proxy credentials.
type Credentials struct {
	APIKey string
	Proxy  config.ProxyConfig
	Logger *zap.Logger
}

// Headers returns the authentication headers for one request. It never returns nil.
func (c *Credentials) Headers() http.Header {
	headers := make(http.Header)
	if c == nil {
		return headers
	}

	headers.Set(HeaderAuthorization, "Token "+c.APIKey)

	if c.Proxy.IsComplete() {
		if c.Logger != nil {
			c.Logger.Debug("setting proxy authorization header", zap.Stringer("proxy", c.Proxy))
		}
		headers.Set(HeaderProxyAuthorization, "Basic "+EncodeProxyCredentials(c.Proxy))
	}

	return headers
}

// Valid reports whether an API key is configured.
func (c *Credentials) Valid() bool {
	return c != nil && c.APIKey != ""
}

// EncodeProxyCredentials returns base64("user:password") of the UTF-8 credential string.
func EncodeProxyCredentials(p config.ProxyConfig) string {
	return base64.StdEncoding.EncodeToString([]byte(p.User + ":" + p.Password))
}
