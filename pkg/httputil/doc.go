// Package httputil provides HTTP helpers for the Wikipedia link source.
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures.
// Only errors wrapped with [RetryableError] are retried:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses (honoring Retry-After through RetryableError.After)
//
// The delay doubles after each attempt:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    return fetchPage(ctx, title)
//	})
//
// Response caching lives in package cache.
package httputil
