package streaming

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/util"
)

// Hub owns the set of connected dashboard clients and fans out
// CaptureEvents to all of them. Zero value is not usable; construct with
// NewHub.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	gate    *gate
	nowFn   func() time.Time
}

// NewHub constructs a Hub ready to accept connections via ServeWS and
// broadcast via PublishAPICall/Publish.
func NewHub(cfg Config) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is a same-origin or locally-served consumer
			// of a developer tool, not a public endpoint; origin checks
			// are the caller's responsibility if this is ever exposed
			// beyond localhost.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		gate:    newGate(cfg),
		nowFn:   time.Now,
	}
}

// ServeWS upgrades an HTTP request to a WebSocket and registers the
// resulting connection as a dashboard client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register(c)
	// A panic in either pump (e.g. a malformed frame) must not take the
	// whole recording/replay process down with it.
	util.SafeGo(func() { h.writePump(c) })
	util.SafeGo(func() { h.readPump(c) })
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ClientCount reports the number of currently connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// readPump drains (and discards) inbound frames so the connection's
// control messages (ping/pong/close) are processed, and unregisters the
// client once the peer goes away. Dashboard clients are expected to be
// read-only consumers; anything they send is ignored.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the sole writer on c.conn, per gorilla/websocket's
// single-writer-goroutine requirement.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Publish broadcasts ev to every connected client. dedupKey groups events
// that should be throttled/deduplicated together (e.g. a call's URL+method);
// pass "" to bypass gating entirely (used for one-off lifecycle events).
func (h *Hub) Publish(ev CaptureEvent, dedupKey string) {
	if dedupKey != "" && !h.gate.allow(dedupKey, h.nowFn()) {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: drop it rather than block the hub or the
			// recording it is observing (spec.md 6.7).
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// PublishAPICall is the main entry point, wired as a tap.Config.OnResponse/
// OnError callback: broadcast a completed CapturedApiCall as it finishes.
// The dedup key groups by path rather than full URL so a noisy endpoint
// whose query string varies per call (cache-busting params, pagination
// cursors) still throttles as one stream.
func (h *Hub) PublishAPICall(call *types.CapturedApiCall) {
	if call == nil {
		return
	}
	h.Publish(CaptureEvent{
		Type:      EventAPICall,
		Timestamp: h.nowFn().UnixMilli(),
		Payload:   call,
	}, call.Request.Method+" "+util.ExtractURLPath(call.Request.URL))
}

// client is one connected dashboard WebSocket.
type client struct {
	conn *websocket.Conn
	send chan []byte
}
