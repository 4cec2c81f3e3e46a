package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wikigraph/pkg/cache"
	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/layout"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "wikigraph", "config.toml"), DefaultPath())

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "wikigraph"), 0o755))
	writeConfig(t, filepath.Join(dir, "wikigraph"), `language = "fr"`)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Language)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
language = "de"

[layout]
repulsion = 6000
rest_length = 80
seed = 9

[engine]
tick_interval = "50ms"
max_concurrent_fetches = 8
fetch_timeout = "10s"
max_links = 200

[fetch]
user_agent = "test-agent/1.0"
endpoint = "http://localhost:9999/w/api.php"
requests_per_second = 2.5

[cache]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2
ttl = "1h"
prefix = "team:"

[server]
addr = ":9000"
push_interval = "250ms"
`), "test")
	require.NoError(t, err)

	assert.Equal(t, "de", cfg.Language)
	assert.Equal(t, 6000.0, cfg.Layout.Repulsion)
	assert.Equal(t, 80.0, cfg.Layout.RestLength)
	assert.Equal(t, uint64(9), cfg.Layout.Seed)
	assert.Equal(t, layout.DefaultDamping, cfg.Layout.Damping, "unset layout keys keep defaults")
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.TickInterval.Std())
	assert.Equal(t, int64(8), cfg.Engine.MaxConcurrentFetches)
	assert.Equal(t, 200, cfg.Engine.MaxLinks)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.PushInterval.Std())

	wo := cfg.WikiOptions()
	assert.Equal(t, "de", wo.Language)
	assert.Equal(t, "test-agent/1.0", wo.UserAgent)
	assert.Equal(t, "http://localhost:9999/w/api.php", wo.Endpoint)
	assert.Equal(t, 2.5, wo.RequestsPerSecond)
	assert.Equal(t, time.Hour, wo.CacheTTL)

	co := cfg.CacheOptions("/tmp/default")
	assert.Equal(t, cache.BackendRedis, co.Backend)
	assert.Equal(t, "localhost:6379", co.RedisAddr)
	assert.Equal(t, 2, co.RedisDB)
	assert.Equal(t, "/tmp/default", co.Dir)
	assert.Equal(t, "team:links:de:Graph theory", cfg.Keyer().LinksKey("de", "Graph theory"))

	ec := cfg.EngineConfig()
	assert.Equal(t, int64(8), ec.MaxConcurrentFetches)
	assert.Equal(t, 10*time.Second, ec.FetchTimeout)
	assert.Equal(t, "de", ec.Language)
	assert.Equal(t, cfg.Layout, ec.Layout)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", `language = `, "parse"},
		{"bad duration", "[engine]\ntick_interval = \"soon\"", "parse"},
		{"unknown key", `colour = "red"`, "unknown keys: colour"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"", "cache.backend must be one of"},
		{"redis without addr", "[cache]\nbackend = \"redis\"", "cache.redisaddr is required"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"", "cache.mongouri is required"},
		{"damping above one", "[layout]\ndamping = 1.5", "layout.damping"},
		{"zero damping", "[layout]\ndamping = 0", "layout.damping must be gt 0"},
		{"zero jitter", "[layout]\njitter = 0", "layout.jitter must be gt 0"},
		{"zero seed", "[layout]\nseed = 0", "layout.seed must be gte 1"},
		{"zero tick interval", "[engine]\ntick_interval = \"0s\"", "engine.tickinterval must be gt 0"},
		{"zero push interval", "[server]\npush_interval = \"0s\"", "server.pushinterval must be gt 0"},
		{"zero fetches", "[engine]\nmax_concurrent_fetches = 0", "engine.maxconcurrentfetches"},
		{"bad endpoint", "[fetch]\nendpoint = \"not a url\"", "fetch.endpoint must be a URL"},
		{"bad language", `language = "English"`, "language"},
		{"empty language", `language = ""`, "language is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body), "test")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "code = %s", errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("90")))
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[layout]\nrepulsion = 100")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	w := &Watcher{Path: path, Debounce: 20 * time.Millisecond}
	go func() { done <- w.Run(ctx, func(c Config) { changes <- c }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeConfig(t, dir, "[layout]\nrepulsion = 250")

	select {
	case cfg := <-changes:
		assert.Equal(t, 250.0, cfg.Layout.Repulsion)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	// Invalid content is skipped.
	writeConfig(t, dir, "[layout]\ndamping = 7")
	select {
	case cfg := <-changes:
		t.Fatalf("unexpected reload %+v", cfg.Layout)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
