package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// The Redis and MongoDB backends run against real servers named by
// WIKIGRAPH_TEST_REDIS_ADDR and WIKIGRAPH_TEST_MONGO_URI.

func TestRedisCacheIntegration(t *testing.T) {
	addr := os.Getenv("WIKIGRAPH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WIKIGRAPH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	exerciseBackend(t, c)
}

func TestMongoCacheIntegration(t *testing.T) {
	uri := os.Getenv("WIKIGRAPH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WIKIGRAPH_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	c, err := NewMongoCache(ctx, uri, "wikigraph_test", "cache")
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	exerciseBackend(t, c)
}

func exerciseBackend(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := NewScopedKeyer(nil, "test:"+time.Now().Format(time.RFC3339Nano)+":").LinksKey("en", "Tree")

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get after Set = %q, hit %v, err %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get after Delete should hit nothing")
	}
}
