package http

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/relay/internal/core"
)

// Instance is a client bound to a set of defaults and interceptors.
// Instance is safe for concurrent use by multiple goroutines.
type Instance struct {
	// Interceptors registers request and response interceptors
	Interceptors Interceptors

	engine *core.Engine
}

// Interceptors groups the two registries of an Instance.
type Interceptors struct {
	Request  RequestInterceptors
	Response ResponseInterceptors
}

// RequestInterceptors is the request side of an Instance's pipeline.
type RequestInterceptors struct {
	m *core.Manager
}

// Use appends fn to the request chain and returns a function that removes it.
func (r RequestInterceptors) Use(fn RequestInterceptor) (remove func()) {
	return r.m.UseRequest(fn)
}

// Len returns the number of registered request interceptors.
func (r RequestInterceptors) Len() int {
	n, _ := r.m.Len()
	return n
}

// ResponseInterceptors is the response side of an Instance's pipeline.
type ResponseInterceptors struct {
	m *core.Manager
}

// Use appends fn to the response chain and returns a function that removes it.
func (r ResponseInterceptors) Use(fn ResponseInterceptor) (remove func()) {
	return r.m.UseResponse(fn)
}

// Len returns the number of registered response interceptors.
func (r ResponseInterceptors) Len() int {
	_, n := r.m.Len()
	return n
}

type settings struct {
	defaults   RequestConfig
	engineOpts []core.Option
	httpOpts   []core.HTTPTransportOption
	transport  Transport
}

// Option configures an Instance.
type Option func(*settings)

// WithBaseURL sets the default base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		s.defaults.BaseURL = baseURL
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.defaults.Timeout = timeout
	}
}

// WithHeader adds a default header. Per-call headers with the same name,
// in any case, replace it.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		s.defaults.SetHeader(key, value)
	}
}

// WithTransport replaces the network transport.
func WithTransport(t Transport) Option {
	return func(s *settings) {
		s.transport = t
	}
}

// WithHTTPClient sets the *http.Client used by the default transport.
// Its Timeout should be zero; per-call timeouts come from the config.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, core.WithHTTPClient(httpClient))
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
// WARNING: This should only be used for testing purposes.
func WithInsecureSkipVerify() Option {
	return func(s *settings) {
		s.httpOpts = append(s.httpOpts, core.WithInsecureSkipVerify())
	}
}

// WithTLSConfig is like WithInsecureSkipVerify but takes a full tls.Config.
func WithTLSConfig(cfg *tls.Config) Option {
	return WithHTTPClient(&http.Client{
		Transport: &http.Transport{TLSClientConfig: cfg},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	})
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.engineOpts = append(s.engineOpts, core.WithLogger(logger))
	}
}

// WithAfterHook registers a hook that observes every call's outcome.
func WithAfterHook(hook AfterHook) Option {
	return func(s *settings) {
		s.engineOpts = append(s.engineOpts, core.WithAfterHook(hook))
	}
}

// Create builds an Instance. defaults is copied; options are applied on
// top of it.
//
// Example:
//
//	client := http.Create(nil,
//	    http.WithBaseURL("https://api.example.com"),
//	    http.WithTimeout(10*time.Second),
//	)
func Create(defaults *RequestConfig, options ...Option) *Instance {
	s := &settings{}
	if defaults != nil {
		s.defaults = *defaults.Clone()
	}
	for _, option := range options {
		option(s)
	}

	transport := s.transport
	if transport == nil {
		transport = core.NewHTTPTransport(s.httpOpts...)
	}
	engine := core.NewEngine(&s.defaults, append([]core.Option{core.WithTransport(transport)}, s.engineOpts...)...)

	return &Instance{
		Interceptors: Interceptors{
			Request:  RequestInterceptors{m: engine.Interceptors()},
			Response: ResponseInterceptors{m: engine.Interceptors()},
		},
		engine: engine,
	}
}

// Defaults returns a copy of the instance defaults.
func (c *Instance) Defaults() *RequestConfig {
	return c.engine.Defaults()
}

// Use registers both halves of a plugin and returns one remover for both.
func (c *Instance) Use(p Plugin) (remove func()) {
	return c.engine.Interceptors().Use(p)
}

// Request executes cfg merged over the instance defaults.
func (c *Instance) Request(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	return c.engine.Request(ctx, cfg)
}

// Get is a convenience method for GET requests. cfg may be nil.
func (c *Instance) Get(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return c.Request(ctx, verb(cfg, "GET", url, nil))
}

// Delete is a convenience method for DELETE requests. cfg may be nil.
func (c *Instance) Delete(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return c.Request(ctx, verb(cfg, "DELETE", url, nil))
}

// Post is a convenience method for POST requests with a body.
func (c *Instance) Post(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Request(ctx, verb(cfg, "POST", url, body))
}

// Put is a convenience method for PUT requests with a body.
func (c *Instance) Put(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Request(ctx, verb(cfg, "PUT", url, body))
}

// Patch is a convenience method for PATCH requests with a body.
func (c *Instance) Patch(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Request(ctx, verb(cfg, "PATCH", url, body))
}

func verb(cfg *RequestConfig, method, url string, body any) *RequestConfig {
	out := cfg.Clone()
	if out == nil {
		out = &RequestConfig{}
	}
	out.Method = method
	out.URL = url
	if body != nil {
		out.Body = body
	}
	return out
}
