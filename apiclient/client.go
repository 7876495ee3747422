package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the portal backend. Every request it sends passes through
// the request and response interceptors installed by New.
type Client struct {
	baseURL    *url.URL
	endpoints  Endpoints
	source     CredentialSource
	metrics    *Metrics
	transport  http.RoundTripper
	timeout    time.Duration
	httpClient *http.Client

	headersMu sync.RWMutex
	headers   http.Header

	subscribersMu sync.RWMutex
	subscribers   map[int]func(InvalidationEvent)
	nextSubID     int
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithCredentialSource sets the store the interceptors read and clear.
func WithCredentialSource(source CredentialSource) Option {
	return func(c *Client) {
		c.source = source
	}
}

func WithEndpoints(endpoints Endpoints) Option {
	return func(c *Client) {
		c.endpoints = endpoints
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithTransport replaces the base transport the interceptors wrap.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("[New] invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("[New] base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:     parsed,
		endpoints:   DefaultEndpoints(),
		source:      noCredentials{},
		transport:   http.DefaultTransport,
		timeout:     defaultTimeout,
		headers:     make(http.Header),
		subscribers: make(map[int]func(InvalidationEvent)),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.source == nil {
		return nil, errors.New("[New] credential source is required")
	}

	transport := c.transport
	if c.metrics != nil {
		transport = c.metrics.instrument(transport)
	}
	transport = &responseInterceptor{next: transport, source: c.source, publish: c.publish}
	transport = &requestInterceptor{next: transport, source: c.source, publish: c.publish}

	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SetDefaultHeader sets a header sent with every request.
func (c *Client) SetDefaultHeader(key, value string) {
	c.headersMu.Lock()
	defer c.headersMu.Unlock()
	c.headers.Set(key, value)
}

func (c *Client) DeleteDefaultHeader(key string) {
	c.headersMu.Lock()
	defer c.headersMu.Unlock()
	c.headers.Del(key)
}

func (c *Client) DefaultHeader(key string) string {
	c.headersMu.RLock()
	defer c.headersMu.RUnlock()
	return c.headers.Get(key)
}

// Subscribe registers fn for invalidation events and returns a function that
// removes it. fn is called on the goroutine that issued the request.
func (c *Client) Subscribe(fn func(InvalidationEvent)) (unsubscribe func()) {
	c.subscribersMu.Lock()
	defer c.subscribersMu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subscribersMu.Lock()
			defer c.subscribersMu.Unlock()
			delete(c.subscribers, id)
		})
	}
}

func (c *Client) publish(event InvalidationEvent) {
	if c.metrics != nil {
		c.metrics.observeInvalidation(event.Reason)
	}

	c.subscribersMu.RLock()
	handlers := make([]func(InvalidationEvent), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		handlers = append(handlers, fn)
	}
	c.subscribersMu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}

// Do sends a JSON request to path and decodes a 2xx response body into out.
// A nil body sends no payload and a nil out discards the response. Non-2xx
// responses are returned as *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}

	c.headersMu.RLock()
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	c.headersMu.RUnlock()

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
