// Package http wraps the retrying HTTP transport used by all resource
// clients.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/ansolan/armclient/internal/auth"
	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/arm"
	"github.com/ansolan/armclient/pkg/metrics"
)

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string

	// CacheTTL enables response caching for this request when positive.
	// Requests that must always observe fresh state leave it zero.
	CacheTTL time.Duration
}

// Client is the HTTP client for the management API.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       arm.Logger
	debug        bool
	userAgent    string
	cacheManager *arm.CacheManager
	cachePolicy  *arm.CachingPolicy
	scopeFactory arm.ScopeFactory
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger arm.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables debug logging of requests and responses.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig configures the retry behavior.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// WithCache enables response caching with the given backend and policy.
func WithCache(cache arm.Cache, policy *arm.CachingPolicy) Option {
	return func(c *Client) {
		c.cacheManager = arm.NewCacheManager(cache, nil)

		if policy == nil {
			policy = arm.DefaultCachingPolicy()
		}

		c.cachePolicy = policy
	}
}

// WithScopeFactory sets the diagnostic scope factory.
func WithScopeFactory(factory arm.ScopeFactory) Option {
	return func(c *Client) {
		c.scopeFactory = factory
	}
}

// WithSkipTLSVerify disables TLS certificate verification.
func WithSkipTLSVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}

		transport, ok := c.httpClient.HTTPClient.Transport.(*http.Transport)
		if !ok {
			transport = http.DefaultTransport.(*http.Transport).Clone()
		}

		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
		c.httpClient.HTTPClient.Transport = transport
	}
}

// NewClient creates a new HTTP client.
func NewClient(baseURL string, tokenManager auth.TokenManager, options ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		scopeFactory: arm.NoopScopeFactory{},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Do executes a request against the API. Responses with status >= 400 are
// returned together with a *arm.ResponseError describing the failure.
func (c *Client) Do(ctx context.Context, req *Request) (*arm.Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	if c.cacheManager != nil && req.CacheTTL > 0 && req.Method == http.MethodGet {
		cached := c.cachedResponse(ctx, req, fullURL)
		if cached != nil {
			return cached, nil
		}
	}

	resp, err := c.execute(ctx, req.Method, fullURL, req.Body, req.Headers)
	if err != nil {
		return resp, err
	}

	if c.cacheManager != nil && req.CacheTTL > 0 &&
		c.cachePolicy.ShouldCache(req.Method, req.Path, resp.StatusCode) {
		key := c.cacheKey(req)
		_ = c.cacheManager.SetWithETag(ctx, key, resp.Body, resp.Headers.Get("ETag"), req.CacheTTL)
	}

	return resp, nil
}

// DoURL executes a request against an absolute URL, bypassing the base URL.
// Operation status and next page links arrive as absolute URLs.
func (c *Client) DoURL(ctx context.Context, method, absoluteURL string) (*arm.Response, error) {
	return c.execute(ctx, method, absoluteURL, nil, nil)
}

// GetURL fetches an absolute URL. It satisfies arm.Getter for pollers.
func (c *Client) GetURL(ctx context.Context, absoluteURL string) (*arm.Response, error) {
	return c.DoURL(ctx, http.MethodGet, absoluteURL)
}

// execute performs the HTTP exchange and translates the response.
func (c *Client) execute(ctx context.Context, method, fullURL string, body interface{}, headers map[string]string) (*arm.Response, error) {
	scope := c.scopeFactory.NewScope(method + " " + fullURL)
	defer scope.Close()

	var bodyReader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			scope.Failed(err)

			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		scope.Failed(err)

		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-ms-client-request-id", uuid.NewString())

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if c.tokenManager != nil {
		token, tokenErr := c.tokenManager.GetToken(ctx)
		if tokenErr != nil {
			scope.Failed(tokenErr)

			return nil, fmt.Errorf("failed to get token: %w", tokenErr)
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		scope.Failed(err)

		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		scope.Failed(err)

		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.RecordRequest(method, httpResp.StatusCode, time.Since(start))

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      method,
			"url":         fullURL,
			"status_code": httpResp.StatusCode,
			"duration":    time.Since(start).String(),
		})
	}

	resp := &arm.Response{
		StatusCode:    httpResp.StatusCode,
		Status:        httpResp.Status,
		Headers:       httpResp.Header,
		Body:          respBody,
		RequestMethod: method,
		RequestURL:    fullURL,
	}

	if httpResp.StatusCode >= constants.HTTPStatusBadRequest {
		respErr := arm.NewResponseError(resp)
		resp.Error = respErr
		scope.Failed(respErr)

		return resp, respErr
	}

	return resp, nil
}

// cacheKey builds the cache key for a request.
func (c *Client) cacheKey(req *Request) string {
	params := make(map[string]string, len(req.Query))
	for key := range req.Query {
		params[key] = req.Query.Get(key)
	}

	return c.cacheManager.GetCacheKey(req.Method, req.Path, params)
}

// cachedResponse returns a synthetic response from cache, or nil on miss.
func (c *Client) cachedResponse(ctx context.Context, req *Request, fullURL string) *arm.Response {
	data, err := c.cacheManager.Get(ctx, c.cacheKey(req))
	if err != nil {
		return nil
	}

	return &arm.Response{
		StatusCode:    http.StatusOK,
		Status:        "200 OK (cached)",
		Headers:       http.Header{},
		Body:          data,
		RequestMethod: req.Method,
		RequestURL:    fullURL,
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// GetCached performs a GET request with response caching enabled.
func (c *Client) GetCached(ctx context.Context, path string, query url.Values, ttl time.Duration) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query, CacheTTL: ttl})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, query url.Values) (*arm.Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodHead, Path: path, Query: query})
}
