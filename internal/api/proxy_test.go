package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dojokit/go-defectdojo/config"
	"github.com/dojokit/go-defectdojo/internal/api"
	"github.com/dojokit/go-defectdojo/internal/auth"
	"github.com/elazarl/goproxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProxy is a forward proxy that rejects requests without the expected
// Proxy-Authorization header and never sends a challenge.
type recordingProxy struct {
	mu      sync.Mutex
	headers []string
}

func (p *recordingProxy) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.headers...)
}

func startProxy(t *testing.T, want string) (*recordingProxy, config.ProxyConfig) {
	t.Helper()
	rec := &recordingProxy{}

	proxy := goproxy.NewProxyHttpServer()
	proxy.OnRequest().DoFunc(func(r *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		got := r.Header.Get(auth.HeaderProxyAuthorization)
		rec.mu.Lock()
		rec.headers = append(rec.headers, got)
		rec.mu.Unlock()

		if got != want {
			return r, goproxy.NewResponse(r, goproxy.ContentTypeText, http.StatusForbidden, "proxy auth required")
		}
		return r, nil
	})

	server := httptest.NewServer(proxy)
	t.Cleanup(server.Close)

	host, port := splitHostPort(t, server.Listener.Addr().String())
	return rec, config.ProxyConfig{Host: host, Port: port, User: "alice", Password: "s3cr3t"}
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("without proxy", func(t *testing.T) {
		client, err := api.NewHTTPClient(config.ProxyConfig{Host: "proxy.local"}, 0)
		require.NoError(t, err)

		transport, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		assert.Nil(t, transport.Proxy)
		assert.Equal(t, 30*time.Second, client.Timeout)
	})

	t.Run("with complete proxy", func(t *testing.T) {
		p := config.ProxyConfig{Host: "proxy.local", Port: 3128, User: "alice", Password: "s3cr3t"}
		client, err := api.NewHTTPClient(p, 5*time.Second)
		require.NoError(t, err)

		transport, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		require.NotNil(t, transport.Proxy)

		req := httptestRequest(t, "https://dojo.example.com/api/v2/")
		proxyURL, err := transport.Proxy(req)
		require.NoError(t, err)
		assert.Equal(t, "proxy.local:3128", proxyURL.Host)
		assert.Equal(t, "alice", proxyURL.User.Username())
		assert.Equal(t, "Basic YWxpY2U6czNjcjN0", transport.ProxyConnectHeader.Get("Proxy-Authorization"))
		assert.Equal(t, 5*time.Second, client.Timeout)
	})

	t.Run("invalid proxy host", func(t *testing.T) {
		_, err := api.NewHTTPClient(config.ProxyConfig{Host: "bad host", Port: 3128, User: "u", Password: "p"}, 0)
		require.ErrorIs(t, err, api.ErrInvalidProxy)

		_, err = api.NewHTTPClient(config.ProxyConfig{Host: "proxy/path", Port: 3128, User: "u", Password: "p"}, 0)
		require.ErrorIs(t, err, api.ErrInvalidProxy)
	})

	t.Run("invalid proxy port", func(t *testing.T) {
		_, err := api.NewHTTPClient(config.ProxyConfig{Host: "proxy.local", Port: 70000, User: "u", Password: "p"}, 0)
		require.ErrorIs(t, err, api.ErrInvalidProxy)
	})
}

func TestNewHTTPClient_ThroughProxy(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":0,"next":null,"results":[]}`))
	}))
	t.Cleanup(upstream.Close)

	rec, proxyCfg := startProxy(t, "Basic YWxpY2U6czNjcjN0")

	httpClient, err := api.NewHTTPClient(proxyCfg, 5*time.Second)
	require.NoError(t, err)

	transport, err := api.NewTransport(upstream.URL, &auth.Credentials{APIKey: "test-key"}, httpClient)
	require.NoError(t, err)
	t.Cleanup(transport.Close)

	resp, err := transport.Do(context.Background(), &api.Request{Method: http.MethodGet, Path: "/api/v2/engagements/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The very first request carried the credential; no challenge round trip happened.
	assert.Equal(t, []string{"Basic YWxpY2U6czNjcjN0"}, rec.seen())
}
