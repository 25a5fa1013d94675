package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"stealth-guard/server/internal/guard"
	"stealth-guard/server/internal/telemetry"
	"stealth-guard/server/internal/world"
)

const (
	writeWait        = 10 * time.Second
	defaultTickRate  = 30
	defaultMaxStepMs = 250
)

// HubConfig captures the tunables for constructing a Hub.
type HubConfig struct {
	TickRate      int `json:"tickRate,omitempty" jsonschema:"description=Simulation ticks per second"`
	MaxStepMillis int `json:"maxStepMillis,omitempty" jsonschema:"description=Upper bound on the delta fed to a single tick"`

	Logger  telemetry.Logger  `json:"-"`
	Metrics telemetry.Metrics `json:"-"`
}

// DefaultHubConfig returns the baseline hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:      defaultTickRate,
		MaxStepMillis: defaultMaxStepMs,
	}
}

func (c HubConfig) normalized() HubConfig {
	if c.TickRate <= 0 {
		c.TickRate = defaultTickRate
	}
	if c.MaxStepMillis <= 0 {
		c.MaxStepMillis = defaultMaxStepMs
	}
	if c.Logger == nil {
		c.Logger = telemetry.WrapLogger(log.Default())
	}
	return c
}

// Conn is the slice of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	id          string
	conn        Conn
	connectedAt time.Time
	mu          sync.Mutex
}

// ID returns the identifier assigned at subscription.
func (s *subscriber) ID() string {
	return s.id
}

// WriteMessage serialises writes to the underlying connection.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Hub owns the world and every websocket subscriber watching it.
type Hub struct {
	mu          sync.Mutex
	cfg         HubConfig
	world       *world.World
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	logger      telemetry.Logger
	telemetry   *telemetryCounters
}

// NewHub wraps an already constructed world.
func NewHub(cfg HubConfig, w *world.World) *Hub {
	cfg = cfg.normalized()
	return &Hub{
		cfg:         cfg,
		world:       w,
		subscribers: make(map[string]*subscriber),
		logger:      cfg.Logger,
		telemetry:   newTelemetryCounters(cfg.Metrics),
	}
}

// TickRate returns the configured simulation frequency.
func (h *Hub) TickRate() int {
	return h.cfg.TickRate
}

// Subscribe registers a connection for state broadcasts.
func (h *Hub) Subscribe(conn Conn) *subscriber {
	id := fmt.Sprintf("viewer-%d", h.nextID.Add(1))
	sub := &subscriber{id: id, conn: conn, connectedAt: time.Now()}

	h.mu.Lock()
	h.subscribers[id] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	h.telemetry.RecordSubscribers(count)
	return sub
}

// Disconnect removes a subscriber and closes its connection. It reports
// whether the subscriber was still registered.
func (h *Hub) Disconnect(id string) bool {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if !ok {
		return false
	}
	h.telemetry.RecordSubscribers(count)
	sub.conn.Close()
	return true
}

// ApplyInput replaces the target's movement intent.
func (h *Hub) ApplyInput(in world.Input) {
	h.mu.Lock()
	h.world.SetInput(in)
	h.mu.Unlock()
	h.telemetry.IncrementInputs()
}

// TriggerBounce starts a bounce on the named guard. It reports whether the
// guard exists; a guard that is already bouncing ignores the request.
func (h *Hub) TriggerBounce(ctx context.Context, guardID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, g := range h.world.Guards() {
		if g.Agent.ID() != guardID {
			continue
		}
		g.Agent.Bounce(ctx)
		h.telemetry.IncrementBounceRequests()
		return true
	}
	return false
}

// Advance runs a single simulation step and returns the resulting state.
func (h *Hub) Advance(ctx context.Context, dt float64) world.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.world.Step(ctx, dt)
	return h.world.Snapshot()
}

// RunSimulation drives the fixed-rate tick loop until ctx is cancelled.
func (h *Hub) RunSimulation(ctx context.Context) {
	interval := time.Second / time.Duration(h.cfg.TickRate)
	maxStep := time.Duration(h.cfg.MaxStepMillis) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			if elapsed <= 0 {
				elapsed = interval
			}
			if elapsed > maxStep {
				elapsed = maxStep
			}
			last = now

			start := time.Now()
			snapshot := h.Advance(ctx, elapsed.Seconds())
			h.telemetry.RecordTickDuration(time.Since(start))
			h.BroadcastState(snapshot)
		}
	}
}

// MarshalState renders a state frame. Layout is attached when requested.
func (h *Hub) MarshalState(snapshot world.Snapshot, layout *world.Layout, subscriberID string) ([]byte, error) {
	msg := stateMessage{
		Ver:          ProtocolVersion,
		Type:         TypeState,
		SubscriberID: subscriberID,
		ServerTime:   time.Now().UnixMilli(),
		World:        snapshot,
		Layout:       layout,
	}
	return json.Marshal(msg)
}

// InitialState renders the first frame for a new subscriber, including the
// static level layout.
func (h *Hub) InitialState(subscriberID string) ([]byte, error) {
	h.mu.Lock()
	snapshot := h.world.Snapshot()
	layout := h.world.Layout()
	h.mu.Unlock()
	return h.MarshalState(snapshot, &layout, subscriberID)
}

// BroadcastState sends the snapshot to every subscriber, dropping those
// whose connection fails.
func (h *Hub) BroadcastState(snapshot world.Snapshot) {
	data, err := h.MarshalState(snapshot, nil, "")
	if err != nil {
		h.logger.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	sent := 0
	for _, sub := range subs {
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("failed to send update to %s: %v", sub.id, err)
			h.telemetry.IncrementWriteFailures()
			h.Disconnect(sub.id)
			continue
		}
		sent++
	}
	h.telemetry.RecordBroadcast(len(data), sent)
}

// Heartbeat builds the acknowledgement for a client heartbeat.
func (h *Hub) Heartbeat(receivedAt time.Time, clientSent int64) HeartbeatMessage {
	ack := HeartbeatMessage{
		Ver:        ProtocolVersion,
		Type:       TypeHeartbeat,
		ServerTime: receivedAt.UnixMilli(),
		ClientTime: clientSent,
	}
	if clientSent > 0 {
		if rtt := receivedAt.UnixMilli() - clientSent; rtt > 0 {
			ack.RTTMillis = rtt
		}
	}
	return ack
}

// Layout returns the static level geometry.
func (h *Hub) Layout() world.Layout {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Layout()
}

// WorldConfig returns the configuration the world was built from.
func (h *Hub) WorldConfig() world.Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Config()
}

// GuardConfigs returns the tuning each guard runs with, keyed by guard ID.
// Spawns with their own tuning differ from WorldConfig().Guard.
func (h *Hub) GuardConfigs() map[string]guard.Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	configs := make(map[string]guard.Config, len(h.world.Guards()))
	for _, g := range h.world.Guards() {
		configs[g.Agent.ID()] = g.Agent.Config()
	}
	return configs
}

type diagnosticsSubscriber struct {
	ID          string `json:"id"`
	ConnectedAt int64  `json:"connectedAt"`
}

// Diagnostics is the payload served by the diagnostics endpoint.
type Diagnostics struct {
	Tick        uint64                  `json:"tick"`
	Subscribers []diagnosticsSubscriber `json:"subscribers"`
	Guards      []guard.Snapshot        `json:"guards"`
}

// DiagnosticsSnapshot exposes subscriber and guard state.
func (h *Hub) DiagnosticsSnapshot() Diagnostics {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := make([]diagnosticsSubscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, diagnosticsSubscriber{ID: sub.id, ConnectedAt: sub.connectedAt.UnixMilli()})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })

	snapshot := h.world.Snapshot()
	return Diagnostics{
		Tick:        snapshot.Tick,
		Subscribers: subs,
		Guards:      snapshot.Guards,
	}
}

// TelemetrySnapshot returns the hub counters.
func (h *Hub) TelemetrySnapshot() telemetrySnapshot {
	return h.telemetry.Snapshot()
}
