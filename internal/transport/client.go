// Package transport provides the HTTP client used for all backend calls.
//
// Built on go-resty/resty over a go-retryablehttp transport:
//   - Context-based cancellation on every request
//   - Rate limiting per client instance (unlimited by default)
//   - Circuit breaker that fails fast when the backend stays down
//   - bytedance/sonic as the JSON codec
//
// Retries are disabled by default; callers opt in through Options.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/plantquery/plantquery/internal/resilience"
)

const defaultUserAgent = "PlantQuery/1.0"

// Options configures a Client.
type Options struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
	// RetryMax is the number of automatic retries per request.
	// Zero (the default) sends each request exactly once.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimitRPS paces outbound requests. Zero or negative means unlimited.
	RateLimitRPS   int
	RateLimitBurst int
	// BreakerDisabled turns off the circuit breaker entirely.
	BreakerDisabled  bool
	BreakerThreshold int
	BreakerCooldown  time.Duration
	UserAgent        string
}

// Client wraps resty with rate limiting and circuit breaker protection.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker

	mu sync.RWMutex
}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWaitMin == 0 {
		opts.RetryWaitMin = 1 * time.Second
	}
	if opts.RetryWaitMax == 0 {
		opts.RetryWaitMax = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryMax).
		SetRetryWaitTime(opts.RetryWaitMin).
		SetRetryMaxWaitTime(opts.RetryWaitMax).
		SetHeader("User-Agent", opts.UserAgent)
	restyClient.SetTransport(retryClient.HTTPClient.Transport)
	restyClient.JSONMarshal = sonic.Marshal
	restyClient.JSONUnmarshal = sonic.Unmarshal

	var breaker *resilience.Breaker
	if !opts.BreakerDisabled {
		breaker = resilience.New("backend", resilience.Settings{
			Threshold: uint32(opts.BreakerThreshold),
			Cooldown:  opts.BreakerCooldown,
		})
	}

	return &Client{
		Resty:   restyClient,
		Limiter: newLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		Breaker: breaker,
	}
}

func newLimiter(rps, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Request creates a request bound to ctx, honoring the breaker and limiter.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.Breaker != nil && c.Breaker.State() == resilience.StateOpen {
		return nil, resilience.ErrOpen
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// Do executes an HTTP call through the circuit breaker. Transport errors
// count as breaker failures; any received response, whatever its status,
// counts as success because the backend answered.
func (c *Client) Do(fn func() (*resty.Response, error)) (*resty.Response, error) {
	if c.Breaker == nil {
		return fn()
	}

	var resp *resty.Response
	err := c.Breaker.Do(func() error {
		var callErr error
		resp, callErr = fn()
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SetTimeout configures the request timeout.
func (c *Client) SetTimeout(duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetTimeout(duration)
}

// SetRetry configures retry behavior.
func (c *Client) SetRetry(maxRetries int, minWait, maxWait time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetRetryCount(maxRetries).
		SetRetryWaitTime(minWait).
		SetRetryMaxWaitTime(maxWait)
}

// SetRateLimit configures rate limiting in requests per second.
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// SetHeader adds a default header to every request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Resty.BaseURL
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	if c.Breaker == nil {
		return resilience.StateClosed
	}
	return c.Breaker.State()
}

// BreakerCounts returns circuit breaker statistics.
func (c *Client) BreakerCounts() resilience.Counts {
	if c.Breaker == nil {
		return resilience.Counts{}
	}
	return c.Breaker.Counts()
}
