package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/matzehuels/wikigraph/pkg/cache"
	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/httputil"
	"github.com/matzehuels/wikigraph/pkg/observability"
)

// Client provides the HTTP plumbing under [Source]: request headers, rate
// limiting, the circuit breaker, retries and response caching.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	headers  map[string]string
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	retries  int
	backoff  time.Duration
	logger   *log.Logger
}

// NewClient creates a Client from opts. Zero fields fall back to defaults.
func NewClient(backend cache.Cache, opts Options) *Client {
	opts = opts.withDefaults()
	if backend == nil {
		backend = cache.NewNullCache()
	}
	c := &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		cache:    backend,
		cacheTTL: opts.CacheTTL,
		headers:  map[string]string{"User-Agent": opts.UserAgent, "Accept": "application/json"},
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		retries:  opts.Retries,
		backoff:  opts.Backoff,
		logger:   opts.Logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wikipedia",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// A missing article is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errors.ErrCodeArticleNotFound)
		},
	})
	return c
}

// Cached retrieves a JSON value from cache or executes fetch and caches the
// result. If refresh is true, the cache is bypassed and fetch is always
// called. The fetch function should populate v; on success, v is stored.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	if !refresh {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Debug("cache read failed", "key", key, "error", err)
		} else if ok && json.Unmarshal(data, v) == nil {
			return nil
		}
	}
	if err := httputil.Retry(ctx, c.retries, c.backoff, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			c.logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

// Get performs a rate-limited GET through the circuit breaker and
// JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, err, "waiting for rate limiter")
	}
	_, err := c.breaker.Execute(func() (any, error) {
		body, err := c.doRequest(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode response")
		}
		return nil, nil
	})
	switch err {
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return errors.Wrap(errors.ErrCodeCircuitOpen, err, "wikipedia temporarily unavailable")
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "request to %s", host)
		}
		if ue, ok := err.(*url.Error); ok && ue.Timeout() {
			return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "request to %s", host)}
		}
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request to %s", host)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeArticleNotFound, "status %d", code)
	case code == http.StatusTooManyRequests:
		after := retryAfter(resp.Header.Get("Retry-After"))
		rl := &errors.RateLimitedError{RetryAfter: int(after / time.Second), Message: "wikipedia rate limit"}
		return &httputil.RetryableError{Err: rl, After: after}
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "status %d", code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "status %d", code)
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// apiURL builds a MediaWiki Action API URL.
func apiURL(endpoint string, params url.Values) string {
	return fmt.Sprintf("%s?%s", endpoint, params.Encode())
}
