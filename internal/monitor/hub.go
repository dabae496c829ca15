// Package monitor streams simulation samples to websocket clients and
// takes simple run controls back from them.
package monitor

import (
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Gauge is one gauge reading in a Sample.
type Gauge struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Depth   float32 `json:"depth"`
	Outflow float32 `json:"outflow"`
}

// Sample is the message broadcast after a step.
type Sample struct {
	Sim      string  `json:"sim"`
	Step     int     `json:"step"`
	Volume   float64 `json:"volume"`
	Added    float64 `json:"added"`
	MaxDepth float64 `json:"maxDepth"`
	Wet      bool    `json:"wet"`
	Spilling bool    `json:"spilling"`
	Gauges   []Gauge `json:"gauges"`
}

// control is what clients may send.
type control struct {
	Paused *bool `json:"paused"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans samples out to every connected client. The zero value is not
// usable; call NewHub.
type Hub struct {
	logger *log.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	last    *Sample

	paused atomic.Bool
}

// NewHub returns an empty hub. A nil logger discards connection notes.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{logger: logger, clients: make(map[*websocket.Conn]*sync.Mutex)}
}

// Paused reports whether a client asked the run to pause.
func (h *Hub) Paused() bool { return h.paused.Load() }

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the client until it goes away.
// A new client receives the latest sample straight away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Println("monitor: upgrade:", err)
		return
	}
	defer conn.Close()

	connMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = connMu
	last := h.last
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	if last != nil {
		connMu.Lock()
		err := conn.WriteJSON(last)
		connMu.Unlock()
		if err != nil {
			return
		}
	}

	for {
		var msg control
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Println("monitor: read:", err)
			}
			return
		}
		if msg.Paused != nil {
			h.paused.Store(*msg.Paused)
			h.logger.Printf("monitor: paused=%v", *msg.Paused)
		}
	}
}

// Broadcast sends s to every client and keeps it for clients that connect
// later. Clients that fail to receive are dropped.
func (h *Hub) Broadcast(s Sample) {
	h.mu.Lock()
	h.last = &s
	h.mu.Unlock()

	var failed []*websocket.Conn
	h.mu.RLock()
	for conn, connMu := range h.clients {
		connMu.Lock()
		err := conn.WriteJSON(s)
		connMu.Unlock()
		if err != nil {
			h.logger.Println("monitor: write:", err)
			conn.Close()
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}
