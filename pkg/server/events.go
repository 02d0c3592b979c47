package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GustavoMelloGit/qwik/pkg/qwik"
)

// streamEvent is the JSON shape broadcast on the debug stream.
type streamEvent struct {
	Kind      string  `json:"kind"`
	Task      uint64  `json:"task"`
	Element   string  `json:"element"`
	Flags     string  `json:"flags"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

// Hub broadcasts task lifecycle events to connected websocket clients.
// Used by the debug stream; slow or dead clients are dropped, never waited
// on.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an event hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("debug stream upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Drain the connection so pings and close frames are processed.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast sends a task lifecycle event to every connected client.
func (h *Hub) Broadcast(ev qwik.TaskEvent) {
	msg := streamEvent{
		Kind:      ev.Kind.String(),
		ElapsedMS: float64(ev.Elapsed) / float64(time.Millisecond),
	}
	if ev.Task != nil {
		msg.Task = ev.Task.ID()
		msg.Element = ev.Task.Element().ID()
		msg.Flags = ev.Task.Flags().String()
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			h.drop(conn)
		}
	}
}

// ConnCount returns the number of connected debug clients.
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
