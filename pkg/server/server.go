// Package server exposes a running exploration session over HTTP.
//
// Routes:
//
//	GET  /api/snapshot               latest frame as JSON
//	POST /api/nodes/{id}/expand      fetch and merge the links of id
//	POST /api/nodes/{id}/collapse    remove id and what only it reached
//	POST /api/nodes/{id}/drag        {"phase":"start|move|end","x":..,"y":..}
//	GET  /api/ws                     frame stream plus inbound actions
//	GET  /healthz                    liveness
//	GET  /metrics                    Prometheus exposition
//
// Node ids are article titles and must be path-escaped ("AC%2FDC").
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/wikigraph/pkg/explore"
	"github.com/matzehuels/wikigraph/pkg/geom"
)

// DefaultPushInterval bounds how often a WebSocket client receives frames.
const DefaultPushInterval = 100 * time.Millisecond

// Options configures a [Server].
type Options struct {
	PushInterval time.Duration       // Minimum gap between pushed frames
	Gatherer     prometheus.Gatherer // Source for /metrics; nil uses the default registry
	Logger       *log.Logger
}

// Server serves one session loop.
type Server struct {
	loop         *explore.Loop
	pushInterval time.Duration
	gatherer     prometheus.Gatherer
	logger       *log.Logger
	upgrader     websocket.Upgrader
}

// New creates a server for loop.
func New(loop *explore.Loop, opts Options) *Server {
	if opts.PushInterval <= 0 {
		opts.PushInterval = DefaultPushInterval
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		loop:         loop,
		pushInterval: opts.PushInterval,
		gatherer:     opts.Gatherer,
		logger:       opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.snapshot)
		r.Get("/ws", s.serveWS)
		r.Route("/nodes/{id}", func(r chi.Router) {
			r.Post("/expand", s.expand)
			r.Post("/collapse", s.collapse)
			r.Post("/drag", s.drag)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "session", s.loop.ID())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session": s.loop.ID()})
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.loop.Snapshot())
}

type expandResponse struct {
	ID         string `json:"id"`
	Dispatched bool   `json:"dispatched"`
}

func (s *Server) expand(w http.ResponseWriter, r *http.Request) {
	id := nodeID(r)
	var exists, dispatched bool
	err := s.loop.Do(r.Context(), func(e *explore.Engine) {
		exists = e.Store().Has(id)
		dispatched = e.Expand(id)
	})
	if !s.checkDo(w, err) {
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "unknown node %q", id)
		return
	}
	writeJSON(w, http.StatusAccepted, expandResponse{ID: id, Dispatched: dispatched})
}

type collapseResponse struct {
	ID      string   `json:"id"`
	Removed []string `json:"removed"`
}

func (s *Server) collapse(w http.ResponseWriter, r *http.Request) {
	id := nodeID(r)
	var exists bool
	var removed []string
	err := s.loop.Do(r.Context(), func(e *explore.Engine) {
		exists = e.Store().Has(id)
		removed = e.Collapse(id)
	})
	if !s.checkDo(w, err) {
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "unknown node %q", id)
		return
	}
	if removed == nil {
		removed = []string{}
	}
	writeJSON(w, http.StatusOK, collapseResponse{ID: id, Removed: removed})
}

// Drag phases.
const (
	phaseStart = "start"
	phaseMove  = "move"
	phaseEnd   = "end"
)

type dragRequest struct {
	Phase string  `json:"phase"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func (s *Server) drag(w http.ResponseWriter, r *http.Request) {
	id := nodeID(r)
	var req dragRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: %v", err)
		return
	}
	if req.Phase != phaseStart && req.Phase != phaseMove && req.Phase != phaseEnd {
		writeError(w, http.StatusBadRequest, "phase must be start, move or end")
		return
	}

	var exists, ok bool
	err := s.loop.Do(r.Context(), func(e *explore.Engine) {
		exists = e.Store().Has(id)
		switch req.Phase {
		case phaseStart:
			ok = e.DragStart(id)
		case phaseMove:
			ok = e.DragMove(id, geom.Vec{X: req.X, Y: req.Y})
		case phaseEnd:
			ok = e.DragEnd(id)
		}
	})
	if !s.checkDo(w, err) {
		return
	}
	switch {
	case !exists:
		writeError(w, http.StatusNotFound, "unknown node %q", id)
	case !ok:
		writeError(w, http.StatusConflict, "node %q is not being dragged", id)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// checkDo maps a failed loop command onto a response and reports whether
// the handler may continue.
func (s *Server) checkDo(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, explore.ErrLoopStopped):
		writeError(w, http.StatusServiceUnavailable, "session stopped")
	default:
		s.logger.Debug("request abandoned", "error", err)
		writeError(w, http.StatusServiceUnavailable, "%v", err)
	}
	return false
}

// nodeID returns the decoded {id} parameter.
func nodeID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}
