package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"stealth-guard/server"
	"stealth-guard/server/internal/telemetry"
	"stealth-guard/server/internal/world"
)

func newTestHub(t *testing.T) *server.Hub {
	t.Helper()
	w, err := world.New(world.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("failed to build world: %v", err)
	}
	cfg := server.DefaultHubConfig()
	cfg.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	return server.NewHub(cfg, w)
}

func dial(t *testing.T, hub *server.Hub) *websocket.Conn {
	t.Helper()
	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	return msg
}

func TestHandleSendsInitialStateWithLayout(t *testing.T) {
	hub := newTestHub(t)
	conn := dial(t, hub)

	msg := readJSON(t, conn)
	if msg["type"] != server.TypeState {
		t.Fatalf("expected state message, got %v", msg["type"])
	}
	if _, ok := msg["layout"]; !ok {
		t.Fatalf("expected initial state to carry the layout")
	}
	if id, ok := msg["subscriberId"].(string); !ok || id == "" {
		t.Fatalf("expected subscriber id, got %v", msg["subscriberId"])
	}
	if got := len(hub.DiagnosticsSnapshot().Subscribers); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
}

func TestHandleHeartbeatAck(t *testing.T) {
	hub := newTestHub(t)
	conn := dial(t, hub)
	readJSON(t, conn)

	sentAt := time.Now().UnixMilli()
	if err := conn.WriteJSON(server.ClientMessage{Type: server.TypeHeartbeat, SentAt: sentAt}); err != nil {
		t.Fatalf("failed to send heartbeat: %v", err)
	}

	ack := readJSON(t, conn)
	if ack["type"] != server.TypeHeartbeat {
		t.Fatalf("expected heartbeat ack, got %v", ack["type"])
	}
	if clientTime, ok := ack["clientTime"].(float64); !ok || int64(clientTime) != sentAt {
		t.Fatalf("expected client time %d echoed, got %v", sentAt, ack["clientTime"])
	}
}

func TestHandleBounceUnknownGuard(t *testing.T) {
	hub := newTestHub(t)
	conn := dial(t, hub)
	readJSON(t, conn)

	if err := conn.WriteJSON(server.ClientMessage{Type: server.TypeBounce, Guard: "nobody"}); err != nil {
		t.Fatalf("failed to send bounce: %v", err)
	}

	reply := readJSON(t, conn)
	if reply["type"] != server.TypeError {
		t.Fatalf("expected error reply, got %v", reply["type"])
	}
}

func TestHandleInputAndBounceReachHub(t *testing.T) {
	hub := newTestHub(t)
	conn := dial(t, hub)
	readJSON(t, conn)

	guardID := hub.DiagnosticsSnapshot().Guards[0].ID
	if err := conn.WriteJSON(server.ClientMessage{Type: server.TypeInput, DX: 1, Crouch: true}); err != nil {
		t.Fatalf("failed to send input: %v", err)
	}
	if err := conn.WriteJSON(server.ClientMessage{Type: server.TypeBounce, Guard: guardID}); err != nil {
		t.Fatalf("failed to send bounce: %v", err)
	}
	// Frames are handled in order, so the heartbeat ack proves the earlier
	// frames were applied.
	if err := conn.WriteJSON(server.ClientMessage{Type: server.TypeHeartbeat}); err != nil {
		t.Fatalf("failed to send heartbeat: %v", err)
	}
	readJSON(t, conn)

	if got := hub.TelemetrySnapshot().InputsApplied; got != 1 {
		t.Fatalf("expected 1 input applied, got %d", got)
	}
	if !hub.DiagnosticsSnapshot().Guards[0].Bouncing {
		t.Fatalf("expected guard %s to be bouncing", guardID)
	}
}
