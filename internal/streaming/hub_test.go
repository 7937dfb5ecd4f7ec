package streaming

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

func newTestServer(t *testing.T, h *Hub) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeWS(w, r); err != nil {
			t.Errorf("ServeWS: %v", err)
		}
	}))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return srv, wsURL
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHub_BroadcastsApiCallToConnectedClient(t *testing.T) {
	t.Parallel()
	h := NewHub(DefaultConfig())
	srv, url := newTestServer(t, h)
	defer srv.Close()

	conn := dial(t, url)
	defer conn.Close()

	// Give the server goroutine a moment to register the client.
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if h.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", h.ClientCount())
	}

	call := &types.CapturedApiCall{Request: types.CapturedRequest{ID: "r1", URL: "https://x/api", Method: "GET"}}
	h.PublishAPICall(call)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var ev CaptureEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ev.Type != EventAPICall {
		t.Errorf("event type = %v, want %v", ev.Type, EventAPICall)
	}
}

func TestHub_DuplicateCallWithinDedupWindowIsSuppressed(t *testing.T) {
	t.Parallel()
	h := NewHub(Config{ThrottleSeconds: 0, DedupWindow: time.Hour, MaxPerSecond: 100})
	srv, url := newTestServer(t, h)
	defer srv.Close()

	conn := dial(t, url)
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	call := &types.CapturedApiCall{Request: types.CapturedRequest{ID: "r1", URL: "https://x/api", Method: "GET"}}
	h.PublishAPICall(call)
	h.PublishAPICall(call) // same dedup key, should be suppressed

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("expected first message to arrive: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the duplicate publish to be suppressed within the dedup window")
	}
}

func TestHub_ClientCountDropsAfterDisconnect(t *testing.T) {
	t.Parallel()
	h := NewHub(DefaultConfig())
	srv, url := newTestServer(t, h)
	defer srv.Close()

	conn := dial(t, url)
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	conn.Close()

	deadline = time.Now().Add(time.Second)
	for h.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if h.ClientCount() != 0 {
		t.Fatalf("ClientCount = %d, want 0 after disconnect", h.ClientCount())
	}
}

func TestHub_PublishAPICallIgnoresNil(t *testing.T) {
	t.Parallel()
	h := NewHub(DefaultConfig())
	h.PublishAPICall(nil) // must not panic
}
