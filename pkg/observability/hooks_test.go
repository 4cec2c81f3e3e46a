package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopExpansionHooks{}
	e.OnFetchStart(ctx, "Graph theory")
	e.OnFetchComplete(ctx, "Graph theory", 42, time.Second, nil)
	e.OnCollapse(ctx, "Vertex (graph theory)", 3)

	l := NoopLayoutHooks{}
	l.OnTick(ctx, 10, 9, 0.5, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "links")
	c.OnCacheMiss(ctx, "links")
	c.OnCacheSet(ctx, "links", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "en.wikipedia.org", "/w/api.php")
	h.OnResponse(ctx, "GET", "en.wikipedia.org", "/w/api.php", 200, time.Second)
	h.OnError(ctx, "GET", "en.wikipedia.org", "/w/api.php", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Expansion().(NoopExpansionHooks); !ok {
		t.Error("Expansion() should return NoopExpansionHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customExpansion := &testExpansionHooks{}
	SetExpansionHooks(customExpansion)
	if Expansion() != customExpansion {
		t.Error("SetExpansionHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Expansion().(NoopExpansionHooks); !ok {
		t.Error("Reset() should restore NoopExpansionHooks")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testExpansionHooks{}
	SetExpansionHooks(custom)
	SetExpansionHooks(nil)

	if Expansion() != custom {
		t.Error("SetExpansionHooks(nil) should be ignored")
	}
}

type testExpansionHooks struct{ NoopExpansionHooks }
type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
