// Package cache stores fetched link lists between sessions.
//
// All backends implement [Cache], a byte-oriented key/value store with
// per-entry TTL:
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for servers sharing a cache
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// [Open] builds a backend from [Options]. [Instrument] wraps any backend so
// hits, misses and writes are reported to the observability hooks.
//
// Keys come from a [Keyer] so that every backend lays out entries the same
// way:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LinksKey("en", "Graph theory") // "links:en:Graph theory"
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented cache with per-entry TTL.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend string // One of the Backend* constants; empty means file

	Dir string // File backend directory

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		c, err = NewFileCache(opts.Dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case BackendMongo:
		c, err = NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case BackendNone:
		c = NewNullCache()
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
