package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/wikigraph/pkg/geom"
	"github.com/matzehuels/wikigraph/pkg/graph"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Message types sent to WebSocket clients.
const (
	msgHello    = "hello"
	msgSnapshot = "snapshot"
	msgError    = "error"
)

// outbound is a message pushed to a client.
type outbound struct {
	Type    string       `json:"type"`
	Session string       `json:"session,omitempty"`
	Graph   *graph.Graph `json:"graph,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// inbound is an interaction sent by a client.
type inbound struct {
	Action string  `json:"action"`
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Inbound actions.
const (
	actionExpand    = "expand"
	actionCollapse  = "collapse"
	actionDragStart = "drag_start"
	actionDragMove  = "drag_move"
	actionDragEnd   = "drag_end"
)

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	frames, unsubscribe := s.loop.Subscribe()
	replies := make(chan outbound, 16)
	done := make(chan struct{})

	go s.readPump(conn, replies, done)
	s.writePump(conn, frames, replies, done)
	unsubscribe()
}

// readPump applies client actions. It closes done when the connection
// drops.
func (s *Server) readPump(conn *websocket.Conn, replies chan<- outbound, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.reply(replies, outbound{Type: msgError, Error: "invalid message: " + err.Error()})
			continue
		}
		if msg.ID == "" {
			s.reply(replies, outbound{Type: msgError, Error: "missing id"})
			continue
		}
		switch msg.Action {
		case actionExpand:
			s.loop.OnExpandRequested(msg.ID)
		case actionCollapse:
			s.loop.OnCollapseRequested(msg.ID)
		case actionDragStart:
			s.loop.OnDragStart(msg.ID)
		case actionDragMove:
			s.loop.OnDragMove(msg.ID, geom.Vec{X: msg.X, Y: msg.Y})
		case actionDragEnd:
			s.loop.OnDragEnd(msg.ID)
		default:
			s.reply(replies, outbound{Type: msgError, Error: "unknown action " + msg.Action})
		}
	}
}

func (s *Server) reply(replies chan<- outbound, msg outbound) {
	select {
	case replies <- msg:
	default:
	}
}

// writePump owns all writes to conn. Frames are coalesced so a client
// receives at most one every push interval.
func (s *Server) writePump(conn *websocket.Conn, frames <-chan graph.Graph, replies <-chan outbound, done <-chan struct{}) {
	defer conn.Close()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	push := time.NewTicker(s.pushInterval)
	defer push.Stop()

	write := func(msg outbound) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug("websocket write failed", "error", err)
			return false
		}
		return true
	}

	if !write(outbound{Type: msgHello, Session: s.loop.ID()}) {
		return
	}
	latest := s.loop.Snapshot()
	pending := true

	for {
		select {
		case <-done:
			return
		case g, ok := <-frames:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session stopped"),
					time.Now().Add(writeWait))
				return
			}
			latest, pending = g, true
		case msg := <-replies:
			if !write(msg) {
				return
			}
		case <-push.C:
			if !pending {
				continue
			}
			pending = false
			if !write(outbound{Type: msgSnapshot, Graph: &latest}) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
