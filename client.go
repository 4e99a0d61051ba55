package defectdojo

import (
	"time"

	"github.com/dojokit/go-defectdojo/config"
	"github.com/dojokit/go-defectdojo/internal/api"
	"github.com/dojokit/go-defectdojo/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Default configuration values.
const defaultTimeout = 30 * time.Second

// Client is the DefectDojo API client.
//
// A Client and its services are safe for concurrent use. All services share
// one transport and connection pool, built once in NewClient.
type Client struct {
	// Engagements provides access to engagement operations.
	Engagements *ResourceService[*Engagement]

	// Products provides access to product operations.
	Products *ResourceService[*Product]

	// ProductTypes provides access to product type operations.
	ProductTypes *ResourceService[*ProductType]

	// Tests provides access to test operations.
	Tests *ResourceService[*Test]

	// Findings provides access to finding operations.
	Findings *ResourceService[*Finding]

	// Users provides access to user operations.
	Users *ResourceService[*User]

	config    config.Config
	transport *api.Transport
}

// NewClient creates a new DefectDojo client for cfg with the given options.
func NewClient(cfg config.Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := cfg.ParsedURL(); err != nil {
		return nil, err
	}

	cc := &clientConfig{
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cc)
	}

	logger := cc.logger.Named("defectdojo")

	creds := &auth.Credentials{
		APIKey: cfg.APIKey,
		Proxy:  cc.proxy,
		Logger: logger,
	}

	httpClient := cc.httpClient
	if httpClient == nil {
		var err error
		httpClient, err = api.NewHTTPClient(cc.proxy, cc.timeout)
		if err != nil {
			return nil, &TransportError{Op: "build client", URL: cc.proxy.String(), Err: err}
		}
	}

	transport, err := api.NewTransport(cfg.URL, creds, httpClient)
	if err != nil {
		return nil, err
	}

	transport.Logger = logger
	if cc.userAgent != "" {
		transport.UserAgent = cc.userAgent
	}
	if cc.rateLimit > 0 {
		transport.Limiter = rate.NewLimiter(rate.Limit(cc.rateLimit), cc.rateBurst)
	}

	client := &Client{
		config:    cfg,
		transport: transport,
	}

	// Initialize services
	pages := cfg.MaxPageCountForGets
	client.Engagements = newResourceService[*Engagement](transport, engagements, pages, logger)
	client.Products = newResourceService[*Product](transport, products, pages, logger)
	client.ProductTypes = newResourceService[*ProductType](transport, productTypes, pages, logger)
	client.Tests = newResourceService[*Test](transport, tests, pages, logger)
	client.Findings = newResourceService[*Finding](transport, findings, pages, logger)
	client.Users = newResourceService[*User](transport, users, pages, logger)

	logger.Debug("client created",
		zap.String("url", transport.BaseURL.String()),
		zap.String("username", cfg.Username),
		zap.Bool("proxy", cc.proxy.IsComplete()),
	)

	return client, nil
}

// NewClientFromEnv builds a client from DEFECTDOJO_* environment variables,
// including the optional DEFECTDOJO_PROXY_* settings. Options passed here take
// precedence over the environment.
func NewClientFromEnv(opts ...ClientOption) (*Client, error) {
	return NewClientFromEnvWith(nil, opts...)
}

// NewClientFromEnvWith is NewClientFromEnv with explicit environment loading options.
func NewClientFromEnvWith(envOpts []config.EnvOption, opts ...ClientOption) (*Client, error) {
	cfg, err := config.FromEnv(envOpts...)
	if err != nil {
		return nil, err
	}

	proxy, err := config.ProxyFromEnv(envOpts...)
	if err != nil {
		return nil, err
	}

	return NewClient(cfg, append([]ClientOption{WithProxy(proxy)}, opts...)...)
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.transport.BaseURL.String()
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() config.Config {
	return c.config
}

// Close releases idle connections. The client must not be used afterwards.
func (c *Client) Close() {
	c.transport.Close()
}
