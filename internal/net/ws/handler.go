package ws

import (
	"context"
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"stealth-guard/server"
)

type subscription interface {
	ID() string
	WriteMessage(messageType int, data []byte) error
}

type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades viewer connections and feeds their frames into the hub.
type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}
	h.Serve(r.Context(), conn)
}

// Serve runs the read loop for an upgraded connection until it fails.
func (h *Handler) Serve(ctx context.Context, conn *websocket.Conn) {
	if h == nil || h.hub == nil || conn == nil {
		return
	}

	sub := h.hub.Subscribe(conn)
	session := subscription(sub)
	defer h.hub.Disconnect(session.ID())

	data, err := h.hub.InitialState(session.ID())
	if err != nil {
		h.logger.Printf("failed to marshal initial state for %s: %v", session.ID(), err)
		return
	}
	if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if !h.dispatch(ctx, session, payload) {
			return
		}
	}
}

// dispatch handles one client frame. It returns false once the session can
// no longer be written to.
func (h *Handler) dispatch(ctx context.Context, session subscription, payload []byte) bool {
	var msg server.ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		h.logger.Printf("discarding malformed message from %s: %v", session.ID(), err)
		return true
	}

	writeJSON := func(payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Printf("failed to marshal response for %s: %v", session.ID(), err)
			return true
		}
		return session.WriteMessage(websocket.TextMessage, data) == nil
	}

	switch msg.Type {
	case server.TypeInput:
		h.hub.ApplyInput(msg.Input())
	case server.TypeBounce:
		if msg.Guard == "" || !h.hub.TriggerBounce(ctx, msg.Guard) {
			return writeJSON(server.ErrorMessage{
				Ver:    server.ProtocolVersion,
				Type:   server.TypeError,
				Reason: "unknown guard",
			})
		}
	case server.TypeHeartbeat:
		return writeJSON(h.hub.Heartbeat(time.Now(), msg.SentAt))
	default:
		h.logger.Printf("unknown message type %q from %s", msg.Type, session.ID())
	}
	return true
}
