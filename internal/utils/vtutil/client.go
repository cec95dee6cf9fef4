// Package vtutil looks up attachment payloads on VirusTotal by hash.
package vtutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deploymenttheory/go-msgreader/internal/logger"
	"github.com/deploymenttheory/go-msgreader/internal/utils/errors"

	vt "github.com/VirusTotal/vt-go"
)

// Default settings
const (
	DefaultRateLimitPerMinute = 4 // free tier
	DefaultRetryCount         = 2
	DefaultRetryDelay         = 5 * time.Second
	DefaultResultCacheTTL     = time.Hour
)

// ClientConfig holds configuration for the VirusTotal client
type ClientConfig struct {
	RateLimitPerMin  int           // Rate limit for API requests per minute
	RetryCount       int           // Number of retries for failed requests
	RetryDelay       time.Duration // Delay between retries
	ResultCacheTTL   time.Duration // Time-to-live for cached reports
	CustomHost       string        // Optional custom VirusTotal API host
	DisableRateLimit bool          // Option to disable rate limiting (use with caution)
	Cache            CacheStorage  // Report cache; nil disables caching
}

// Option configures a Client.
type Option func(*ClientConfig)

// FileLookup fetches the VirusTotal file object for a hash.
type FileLookup func(ctx context.Context, hash string) (*vt.Object, error)

// Client is a thread-safe, rate limited and caching wrapper around the
// VirusTotal files endpoint.
type Client struct {
	lookup       FileLookup
	config       ClientConfig
	lastRequest  time.Time
	requestCount int
	mutex        sync.Mutex
}

// DefaultClientConfig returns a default configuration for the client
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		RateLimitPerMin: DefaultRateLimitPerMinute,
		RetryCount:      DefaultRetryCount,
		RetryDelay:      DefaultRetryDelay,
		ResultCacheTTL:  DefaultResultCacheTTL,
		Cache:           NewMemoryCache(),
	}
}

// NewClient creates a client for the public API.
func NewClient(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: VirusTotal API key is required", errors.ErrAPIKeyMissing)
	}

	config := DefaultClientConfig()
	for _, option := range options {
		option(&config)
	}
	if config.CustomHost != "" {
		vt.SetHost(config.CustomHost)
	}

	vtClient := vt.NewClient(apiKey)
	lookup := func(ctx context.Context, hash string) (*vt.Object, error) {
		return vtClient.GetObject(vt.URL("files/%s", hash))
	}
	return newClient(lookup, config), nil
}

// NewClientWithLookup creates a client that resolves hashes through
// lookup instead of the public API.
func NewClientWithLookup(lookup FileLookup, options ...Option) *Client {
	config := DefaultClientConfig()
	for _, option := range options {
		option(&config)
	}
	return newClient(lookup, config)
}

func newClient(lookup FileLookup, config ClientConfig) *Client {
	logger.LogDebug("VirusTotal client initialized", map[string]interface{}{
		"rateLimit": config.RateLimitPerMin,
		"retries":   config.RetryCount,
		"cache":     fmt.Sprintf("%T", config.Cache),
	})
	return &Client{
		lookup:      lookup,
		config:      config,
		lastRequest: time.Now().Add(-time.Minute), // allow immediate requests
	}
}

// WithRateLimit sets the rate limit for API requests
func WithRateLimit(requestsPerMinute int) Option {
	return func(c *ClientConfig) {
		if requestsPerMinute > 0 {
			c.RateLimitPerMin = requestsPerMinute
		}
	}
}

// WithRetrySettings configures retry behavior
func WithRetrySettings(count int, delay time.Duration) Option {
	return func(c *ClientConfig) {
		if count >= 0 {
			c.RetryCount = count
		}
		if delay >= 0 {
			c.RetryDelay = delay
		}
	}
}

// WithCache sets the report cache and its time-to-live. A nil storage
// disables caching.
func WithCache(storage CacheStorage, ttl time.Duration) Option {
	return func(c *ClientConfig) {
		c.Cache = storage
		if ttl > 0 {
			c.ResultCacheTTL = ttl
		}
	}
}

// WithCustomHost sets a custom API host
func WithCustomHost(host string) Option {
	return func(c *ClientConfig) {
		c.CustomHost = host
	}
}

// WithDisableRateLimit disables rate limiting
func WithDisableRateLimit(disable bool) Option {
	return func(c *ClientConfig) {
		c.DisableRateLimit = disable
	}
}

// checkRateLimit returns how long to wait before the next request may be
// made, counting the request when it may go ahead.
func (c *Client) checkRateLimit() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.config.DisableRateLimit || c.config.RateLimitPerMin <= 0 {
		return 0
	}

	now := time.Now()
	elapsed := now.Sub(c.lastRequest)

	if elapsed >= time.Minute {
		c.requestCount = 1
		c.lastRequest = now
		return 0
	}

	if c.requestCount >= c.config.RateLimitPerMin {
		waitTime := time.Minute - elapsed
		logger.LogInfo("Rate limit reached, throttling requests", map[string]interface{}{
			"waitTime": waitTime.String(),
		})
		return waitTime
	}

	c.requestCount++
	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isNotFound reports whether err is the API's answer for an unknown hash.
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "notfounderror")
}

// executeWithRetry runs fn, waiting for the rate limit before each attempt
// and retrying failures other than not-found.
func (c *Client) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		for {
			waitTime := c.checkRateLimit()
			if waitTime == 0 {
				break
			}
			if err := sleep(ctx, waitTime); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if isNotFound(err) {
			return err
		}

		lastErr = err
		logger.LogWarn(fmt.Sprintf("VirusTotal API request failed (attempt %d/%d): %s",
			attempt+1, c.config.RetryCount+1, operation), map[string]interface{}{
			"error": err.Error(),
		})

		if attempt < c.config.RetryCount {
			if err := sleep(ctx, c.config.RetryDelay); err != nil {
				return err
			}
		}
	}

	logger.LogError(fmt.Sprintf("VirusTotal API request failed after %d attempts: %s",
		c.config.RetryCount+1, operation), lastErr, nil)
	return fmt.Errorf("%w: %v", errors.ErrAPICommunicationError, lastErr)
}

func (c *Client) cachedReport(key string) (*FileReport, bool) {
	if c.config.Cache == nil {
		return nil, false
	}
	data, found, err := c.config.Cache.Get(key)
	if err != nil {
		logger.LogWarn("VirusTotal cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	if !found {
		return nil, false
	}
	var report FileReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (c *Client) cacheReport(key string, report *FileReport) {
	if c.config.Cache == nil {
		return
	}
	data, err := json.Marshal(report)
	if err == nil {
		err = c.config.Cache.Set(key, data, c.config.ResultCacheTTL)
	}
	if err != nil {
		logger.LogWarn("VirusTotal cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
