package wiki

import (
	"time"

	"github.com/charmbracelet/log"
)

// Defaults applied by [NewClient] and [NewSource].
const (
	DefaultLanguage          = "en"
	DefaultUserAgent         = "wikigraph/dev (https://github.com/matzehuels/wikigraph)"
	DefaultTimeout           = 15 * time.Second
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 5
	DefaultRetries           = 3
	DefaultBackoff           = 500 * time.Millisecond
	DefaultBreakerFailures   = 5
	DefaultBreakerTimeout    = 30 * time.Second
	DefaultCacheTTL          = 7 * 24 * time.Hour
)

// Options configures the Wikipedia client.
type Options struct {
	Language          string        // Language edition, e.g. "en"
	Endpoint          string        // API endpoint override; empty derives it from Language
	UserAgent         string        // Sent with every request, as Wikimedia policy requires
	Timeout           time.Duration // Per-request HTTP timeout
	RequestsPerSecond float64       // Sustained request rate
	Burst             int           // Requests allowed above the sustained rate
	Retries           int           // Attempts per API page for transient failures
	Backoff           time.Duration // Initial retry delay, doubled per attempt
	BreakerFailures   uint32        // Consecutive failures that open the circuit
	BreakerTimeout    time.Duration // How long the circuit stays open
	CacheTTL          time.Duration // Lifetime of cached link lists
	Refresh           bool          // Bypass cached link lists
	Logger            *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if o.Burst <= 0 {
		o.Burst = DefaultBurst
	}
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = DefaultBreakerFailures
	}
	if o.BreakerTimeout <= 0 {
		o.BreakerTimeout = DefaultBreakerTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}

// EndpointFor returns the Action API endpoint of a language edition.
func EndpointFor(lang string) string {
	return "https://" + lang + ".wikipedia.org/w/api.php"
}
