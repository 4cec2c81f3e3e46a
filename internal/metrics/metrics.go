// Package metrics implements the observability hooks with Prometheus
// collectors. Register installs them; the server exposes them on /metrics.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/observability"
)

const namespace = "wikigraph"

// Metrics holds every collector. It implements all hook interfaces of
// package observability.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetchLinks    prometheus.Histogram
	fetching      prometheus.Gauge
	collapses     prometheus.Counter
	collapsed     prometheus.Counter

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	nodes        prometheus.Gauge
	edges        prometheus.Gauge
	energy       prometheus.Gauge

	cacheOps   *prometheus.CounterVec
	cacheBytes prometheus.Counter

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "fetches_total",
			Help:      "Link fetches by outcome code",
		}, []string{"code"}),
		fetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "fetch_duration_seconds",
			Help:      "Link fetch latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		fetchLinks: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "links_per_fetch",
			Help:      "Links returned per successful fetch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		fetching: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "in_flight",
			Help:      "Link fetches currently running",
		}),
		collapses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "collapses_total",
			Help:      "Collapse operations",
		}),
		collapsed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "collapsed_nodes_total",
			Help:      "Nodes removed by collapses",
		}),
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "ticks_total",
			Help:      "Simulation steps",
		}),
		tickDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "tick_duration_seconds",
			Help:      "Simulation step latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "nodes",
			Help:      "Nodes in the most recent step",
		}),
		edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "edges",
			Help:      "Edges in the most recent step",
		}),
		energy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "energy",
			Help:      "Kinetic energy after the most recent step",
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Outgoing API requests by host and status",
		}, []string{"host", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Outgoing API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		requestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Outgoing API requests that failed without a response",
		}, []string{"host"}),
	}
}

// Register creates collectors on reg and installs them as the global hooks.
func Register(reg prometheus.Registerer) *Metrics {
	m := New(reg)
	observability.SetExpansionHooks(m)
	observability.SetLayoutHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	return m
}

func (m *Metrics) OnFetchStart(context.Context, string) { m.fetching.Inc() }

func (m *Metrics) OnFetchComplete(_ context.Context, _ string, links int, d time.Duration, err error) {
	m.fetching.Dec()
	m.fetchDuration.Observe(d.Seconds())
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		m.fetches.WithLabelValues(string(code)).Inc()
		return
	}
	m.fetches.WithLabelValues("OK").Inc()
	m.fetchLinks.Observe(float64(links))
}

func (m *Metrics) OnCollapse(_ context.Context, _ string, removed int) {
	m.collapses.Inc()
	m.collapsed.Add(float64(removed))
}

func (m *Metrics) OnTick(_ context.Context, nodes, edges int, energy float64, d time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
	m.nodes.Set(float64(nodes))
	m.edges.Set(float64(edges))
	m.energy.Set(energy)
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.requests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.requestErrors.WithLabelValues(host).Inc()
}
