package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wikigraph/pkg/explore"
	"github.com/matzehuels/wikigraph/pkg/graph"
)

var testLinks = map[string][]string{
	"Graph theory": {"Vertex (graph theory)", "AC/DC"},
	"AC/DC":        {"Rock music"},
}

type fixture struct {
	loop   *explore.Loop
	engine *explore.Engine
	srv    *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	src := explore.LinkSourceFunc(func(_ context.Context, id string) ([]string, error) {
		return testLinks[id], nil
	})
	e, err := explore.New(context.Background(), "Graph theory", src, explore.Config{})
	require.NoError(t, err)

	loop := explore.NewLoop(e, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "wikigraph_test_total", Help: "test"}))
	s := New(loop, Options{PushInterval: 5 * time.Millisecond, Gatherer: reg})
	srv := httptest.NewServer(s.Handler())

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
		e.Close()
	})
	return &fixture{loop: loop, engine: e, srv: srv}
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) snapshot(t *testing.T) graph.Graph {
	t.Helper()
	resp, err := http.Get(f.srv.URL + "/api/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g, err := graph.ReadGraph(resp.Body)
	require.NoError(t, err)
	return g
}

func (f *fixture) waitNodes(t *testing.T, n int) graph.Graph {
	t.Helper()
	var g graph.Graph
	require.Eventually(t, func() bool {
		g = f.snapshot(t)
		return len(g.Nodes) == n && g.InFlight == 0
	}, 5*time.Second, 5*time.Millisecond)
	return g
}

func nodePath(id, action string) string {
	return "/api/nodes/" + url.PathEscape(id) + "/" + action
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, f.loop.ID(), body["session"])

	mresp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	assert.Equal(t, http.StatusOK, mresp.StatusCode)
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	g := f.snapshot(t)
	assert.Equal(t, "Graph theory", g.Seed)
	assert.Equal(t, f.loop.ID(), g.Session)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "unexpanded", g.Nodes[0].State)
}

func TestExpandAndCollapse(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, nodePath("Graph theory", "expand"), "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var er expandResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	assert.True(t, er.Dispatched)

	g := f.waitNodes(t, 3)
	assert.Len(t, g.Edges, 2)

	resp = f.post(t, nodePath("Graph theory", "expand"), "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&er))
	assert.False(t, er.Dispatched, "expanded nodes are not fetched again")

	// Titles with a slash travel path-escaped.
	resp = f.post(t, nodePath("AC/DC", "expand"), "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	f.waitNodes(t, 4)

	resp = f.post(t, nodePath("AC/DC", "collapse"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cr collapseResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cr))
	assert.Equal(t, []string{"AC/DC", "Rock music"}, cr.Removed)
	f.waitNodes(t, 2)

	resp = f.post(t, nodePath("Graph theory", "collapse"), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cr))
	assert.Empty(t, cr.Removed, "the seed cannot be collapsed")
}

func TestUnknownNode(t *testing.T) {
	f := newFixture(t)
	for _, action := range []string{"expand", "collapse"} {
		resp := f.post(t, nodePath("Nope", action), "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, action)
	}
	resp := f.post(t, nodePath("Nope", "drag"), `{"phase":"start"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDrag(t *testing.T) {
	f := newFixture(t)
	id := nodePath("Graph theory", "drag")

	assert.Equal(t, http.StatusConflict, f.post(t, id, `{"phase":"move","x":1,"y":2}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.post(t, id, `{"phase":"fling"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, f.post(t, id, `not json`).StatusCode)

	assert.Equal(t, http.StatusNoContent, f.post(t, id, `{"phase":"start"}`).StatusCode)
	assert.Equal(t, http.StatusNoContent, f.post(t, id, `{"phase":"move","x":120,"y":-30}`).StatusCode)

	require.Eventually(t, func() bool {
		n, ok := f.snapshot(t).Node("Graph theory")
		return ok && n.Pinned && n.X == 120 && n.Y == -30
	}, 5*time.Second, 5*time.Millisecond)

	assert.Equal(t, http.StatusNoContent, f.post(t, id, `{"phase":"end"}`).StatusCode)
	require.Eventually(t, func() bool {
		n, _ := f.snapshot(t).Node("Graph theory")
		return !n.Pinned
	}, 5*time.Second, 5*time.Millisecond)
}

func dialWS(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, ok func(outbound) bool) outbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg outbound
		require.NoError(t, conn.ReadJSON(&msg))
		if ok(msg) {
			return msg
		}
	}
}

func TestWebSocket(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f)

	hello := readUntil(t, conn, func(m outbound) bool { return true })
	assert.Equal(t, msgHello, hello.Type)
	assert.Equal(t, f.loop.ID(), hello.Session)

	first := readUntil(t, conn, func(m outbound) bool { return m.Type == msgSnapshot })
	require.NotNil(t, first.Graph)
	assert.Equal(t, "Graph theory", first.Graph.Seed)

	require.NoError(t, conn.WriteJSON(inbound{Action: actionExpand, ID: "Graph theory"}))
	expanded := readUntil(t, conn, func(m outbound) bool {
		return m.Type == msgSnapshot && len(m.Graph.Nodes) == 3
	})
	assert.Len(t, expanded.Graph.Edges, 2)

	require.NoError(t, conn.WriteJSON(inbound{Action: actionDragStart, ID: "AC/DC"}))
	require.NoError(t, conn.WriteJSON(inbound{Action: actionDragMove, ID: "AC/DC", X: 50, Y: 60}))
	readUntil(t, conn, func(m outbound) bool {
		if m.Type != msgSnapshot {
			return false
		}
		n, ok := m.Graph.Node("AC/DC")
		return ok && n.Pinned && n.X == 50 && n.Y == 60
	})

	require.NoError(t, conn.WriteJSON(inbound{Action: actionCollapse, ID: "AC/DC"}))
	readUntil(t, conn, func(m outbound) bool {
		return m.Type == msgSnapshot && len(m.Graph.Nodes) == 2
	})
}

func TestWebSocketErrors(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	msg := readUntil(t, conn, func(m outbound) bool { return m.Type == msgError })
	assert.Contains(t, msg.Error, "invalid message")

	require.NoError(t, conn.WriteJSON(inbound{Action: "explode", ID: "Graph theory"}))
	msg = readUntil(t, conn, func(m outbound) bool { return m.Type == msgError })
	assert.Contains(t, msg.Error, "unknown action")

	require.NoError(t, conn.WriteJSON(inbound{Action: actionExpand}))
	msg = readUntil(t, conn, func(m outbound) bool { return m.Type == msgError })
	assert.Equal(t, "missing id", msg.Error)
}
