package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/observability"
)

func TestExpansionMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnFetchStart(ctx, "A")
	m.OnFetchStart(ctx, "B")
	if got := testutil.ToFloat64(m.fetching); got != 2 {
		t.Errorf("in_flight = %v, want 2", got)
	}

	m.OnFetchComplete(ctx, "A", 12, 200*time.Millisecond, nil)
	m.OnFetchComplete(ctx, "B", 0, time.Second, errors.New(errors.ErrCodeArticleNotFound, "missing"))
	if got := testutil.ToFloat64(m.fetching); got != 0 {
		t.Errorf("in_flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("OK")); got != 1 {
		t.Errorf("ok fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("ARTICLE_NOT_FOUND")); got != 1 {
		t.Errorf("not found fetches = %v, want 1", got)
	}

	m.OnFetchStart(ctx, "C")
	m.OnFetchComplete(ctx, "C", 0, time.Second, fmt.Errorf("plain"))
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("INTERNAL_ERROR")); got != 1 {
		t.Errorf("uncoded failures = %v, want 1", got)
	}

	m.OnCollapse(ctx, "A", 4)
	m.OnCollapse(ctx, "B", 1)
	if got := testutil.ToFloat64(m.collapsed); got != 5 {
		t.Errorf("collapsed nodes = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.collapses); got != 2 {
		t.Errorf("collapses = %v, want 2", got)
	}
}

func TestLayoutMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.OnTick(context.Background(), 10, 9, 3.5, time.Millisecond)
	m.OnTick(context.Background(), 12, 11, 1.5, time.Millisecond)

	if got := testutil.ToFloat64(m.ticks); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.nodes); got != 12 {
		t.Errorf("nodes = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.energy); got != 1.5 {
		t.Errorf("energy = %v, want 1.5", got)
	}
}

func TestCacheAndHTTPMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnCacheMiss(ctx, "links")
	m.OnCacheSet(ctx, "links", 128)
	m.OnCacheHit(ctx, "links")
	m.OnCacheHit(ctx, "links")
	if got := testutil.ToFloat64(m.cacheOps.WithLabelValues("links", "hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes); got != 128 {
		t.Errorf("bytes = %v, want 128", got)
	}

	m.OnRequest(ctx, "GET", "en.wikipedia.org", "/w/api.php")
	m.OnResponse(ctx, "GET", "en.wikipedia.org", "/w/api.php", 200, 50*time.Millisecond)
	m.OnResponse(ctx, "GET", "en.wikipedia.org", "/w/api.php", 429, 10*time.Millisecond)
	m.OnError(ctx, "GET", "en.wikipedia.org", "/w/api.php", fmt.Errorf("reset"))
	if got := testutil.ToFloat64(m.requests.WithLabelValues("en.wikipedia.org", "429")); got != 1 {
		t.Errorf("429 responses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestErrors.WithLabelValues("en.wikipedia.org")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestRegister(t *testing.T) {
	defer observability.Reset()

	reg := prometheus.NewRegistry()
	m := Register(reg)
	observability.Expansion().OnCollapse(context.Background(), "A", 3)
	if got := testutil.ToFloat64(m.collapsed); got != 3 {
		t.Errorf("collapsed via global hooks = %v, want 3", got)
	}

	n, err := testutil.GatherAndCount(reg, "wikigraph_expansion_collapses_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("registered series = %d, want 1", n)
	}
}
