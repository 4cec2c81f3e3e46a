// Package observability lets a binary instrument the library packages
// without them importing a metrics backend.
//
// Four hook interfaces cover the events worth counting: link fetches and
// collapses ([ExpansionHooks]), layout ticks ([LayoutHooks]), cache lookups
// ([CacheHooks]) and Wikipedia API requests ([HTTPHooks]). Each starts as a
// no-op; a binary installs real implementations once at startup:
//
//	reg := prometheus.NewRegistry()
//	metrics.Register(reg) // calls SetExpansionHooks, SetLayoutHooks, ...
//
// Libraries fetch the current hooks at the call site:
//
//	observability.Expansion().OnFetchStart(ctx, title)
//	links, err := src.FetchLinks(ctx, title)
//	observability.Expansion().OnFetchComplete(ctx, title, len(links), time.Since(start), err)
//
// Hooks are called from fetch goroutines and the session loop concurrently
// and must be safe for concurrent use.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Expansion Hooks
// =============================================================================

// ExpansionHooks receives events from the expansion engine.
type ExpansionHooks interface {
	// OnFetchStart records a link fetch being dispatched.
	OnFetchStart(ctx context.Context, title string)

	// OnFetchComplete records a finished link fetch. err is nil on success.
	OnFetchComplete(ctx context.Context, title string, links int, duration time.Duration, err error)

	// OnCollapse records a collapse and the number of nodes it removed.
	OnCollapse(ctx context.Context, title string, removed int)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout simulation.
type LayoutHooks interface {
	// OnTick records one simulation step.
	OnTick(ctx context.Context, nodes, edges int, energy float64, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopExpansionHooks is a no-op implementation of ExpansionHooks.
type NoopExpansionHooks struct{}

func (NoopExpansionHooks) OnFetchStart(context.Context, string)                               {}
func (NoopExpansionHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopExpansionHooks) OnCollapse(context.Context, string, int)                            {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnTick(context.Context, int, int, float64, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	expansionHooks ExpansionHooks = NoopExpansionHooks{}
	layoutHooks    LayoutHooks    = NoopLayoutHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetExpansionHooks installs h; nil is ignored. Call it before any session
// starts.
func SetExpansionHooks(h ExpansionHooks) { install(&expansionHooks, h) }

// SetLayoutHooks installs h; nil is ignored.
func SetLayoutHooks(h LayoutHooks) { install(&layoutHooks, h) }

// SetCacheHooks installs h; nil is ignored.
func SetCacheHooks(h CacheHooks) { install(&cacheHooks, h) }

// SetHTTPHooks installs h; nil is ignored.
func SetHTTPHooks(h HTTPHooks) { install(&httpHooks, h) }

func install[T any](dst *T, h T) {
	if any(h) == nil {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	*dst = h
}

func current[T any](src *T) T {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return *src
}

// Expansion returns the installed expansion hooks.
func Expansion() ExpansionHooks { return current(&expansionHooks) }

// Layout returns the installed layout hooks.
func Layout() LayoutHooks { return current(&layoutHooks) }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current(&cacheHooks) }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current(&httpHooks) }

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	expansionHooks = NoopExpansionHooks{}
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
