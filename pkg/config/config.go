// Package config loads wikigraph settings from a TOML file.
//
// A missing file is not an error: every field has a default, so an empty
// file and no file behave the same. [Watch] reloads the file when it
// changes, which lets a running session pick up new [layout] parameters.
//
//	language = "de"
//
//	[layout]
//	repulsion = 6000
//	rest_length = 80
//
//	[engine]
//	tick_interval = "33ms"
//	max_concurrent_fetches = 8
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/wikigraph/pkg/buildinfo"
	"github.com/matzehuels/wikigraph/pkg/cache"
	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/explore"
	"github.com/matzehuels/wikigraph/pkg/layout"
	"github.com/matzehuels/wikigraph/pkg/wiki"
)

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the whole configuration file.
type Config struct {
	Language string        `toml:"language" validate:"required"`
	Layout   layout.Params `toml:"layout"`
	Engine   Engine        `toml:"engine"`
	Fetch    Fetch         `toml:"fetch"`
	Cache    Cache         `toml:"cache"`
	Server   Server        `toml:"server"`
}

// Engine configures the expansion engine and its session loop.
type Engine struct {
	TickInterval         Duration `toml:"tick_interval" validate:"gt=0"`
	MaxConcurrentFetches int64    `toml:"max_concurrent_fetches" validate:"gte=1,lte=64"`
	FetchTimeout         Duration `toml:"fetch_timeout" validate:"gt=0"`
	MaxLinks             int      `toml:"max_links" validate:"gte=0"`
}

// Fetch configures the Wikipedia API client.
type Fetch struct {
	UserAgent         string   `toml:"user_agent" validate:"required"`
	Endpoint          string   `toml:"endpoint" validate:"omitempty,url"`
	Timeout           Duration `toml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64  `toml:"requests_per_second" validate:"gt=0"`
	Burst             int      `toml:"burst" validate:"gte=1"`
	Retries           int      `toml:"retries" validate:"gte=1,lte=10"`
	BreakerFailures   uint32   `toml:"breaker_failures" validate:"gte=1"`
	BreakerTimeout    Duration `toml:"breaker_timeout" validate:"gt=0"`
}

// Cache selects the link-list cache backend.
type Cache struct {
	Backend         string   `toml:"backend" validate:"oneof=file redis mongo none"`
	TTL             Duration `toml:"ttl" validate:"gt=0"`
	Dir             string   `toml:"dir"`
	Prefix          string   `toml:"prefix"`
	RedisAddr       string   `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB         int      `toml:"redis_db" validate:"gte=0"`
	RedisPassword   string   `toml:"redis_password"`
	MongoURI        string   `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// Server configures `wikigraph serve`.
type Server struct {
	Addr         string   `toml:"addr" validate:"required"`
	PushInterval Duration `toml:"push_interval" validate:"gt=0"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Language: wiki.DefaultLanguage,
		Layout:   layout.DefaultParams(),
		Engine: Engine{
			TickInterval:         Duration(explore.DefaultTickInterval),
			MaxConcurrentFetches: explore.DefaultMaxConcurrentFetches,
			FetchTimeout:         Duration(explore.DefaultFetchTimeout),
		},
		Fetch: Fetch{
			UserAgent:         buildinfo.UserAgent(),
			Timeout:           Duration(wiki.DefaultTimeout),
			RequestsPerSecond: wiki.DefaultRequestsPerSecond,
			Burst:             wiki.DefaultBurst,
			Retries:           wiki.DefaultRetries,
			BreakerFailures:   wiki.DefaultBreakerFailures,
			BreakerTimeout:    Duration(wiki.DefaultBreakerTimeout),
		},
		Cache: Cache{
			Backend: cache.BackendFile,
			TTL:     Duration(wiki.DefaultCacheTTL),
		},
		Server: Server{
			Addr:         "127.0.0.1:8080",
			PushInterval: Duration(100 * time.Millisecond),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/wikigraph/config.toml, falling back
// to the user config directory of the platform.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "wikigraph", "config.toml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".wikigraph", "config.toml")
	}
	return filepath.Join(dir, "wikigraph", "config.toml")
}

// Load reads path on top of [Default]. An empty path means [DefaultPath].
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data, path)
}

// Parse decodes TOML data on top of [Default] and validates the result.
// name is used in error messages only.
func Parse(data []byte, name string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the language code.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, formatValidationError(err), "invalid configuration")
	}
	if err := errors.ValidateLanguage(c.Language); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
		switch e.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a URL", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, e.Tag(), e.Param()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// WikiOptions maps the [fetch] and [cache] sections onto client options.
func (c Config) WikiOptions() wiki.Options {
	return wiki.Options{
		Language:          c.Language,
		Endpoint:          c.Fetch.Endpoint,
		UserAgent:         c.Fetch.UserAgent,
		Timeout:           c.Fetch.Timeout.Std(),
		RequestsPerSecond: c.Fetch.RequestsPerSecond,
		Burst:             c.Fetch.Burst,
		Retries:           c.Fetch.Retries,
		BreakerFailures:   c.Fetch.BreakerFailures,
		BreakerTimeout:    c.Fetch.BreakerTimeout.Std(),
		CacheTTL:          c.Cache.TTL.Std(),
	}
}

// CacheOptions maps the [cache] section onto backend options. defaultDir
// is used when no directory is configured.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             dir,
		RedisAddr:       c.Cache.RedisAddr,
		RedisDB:         c.Cache.RedisDB,
		RedisPassword:   c.Cache.RedisPassword,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
}

// Keyer returns the cache keyer, scoped by the configured prefix.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix != "" {
		return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// EngineConfig maps the [engine] and [layout] sections onto engine settings.
func (c Config) EngineConfig() explore.Config {
	return explore.Config{
		MaxConcurrentFetches: c.Engine.MaxConcurrentFetches,
		FetchTimeout:         c.Engine.FetchTimeout.Std(),
		MaxLinks:             c.Engine.MaxLinks,
		Language:             c.Language,
		Layout:               c.Layout,
	}
}
