package world

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"stealth-guard/server/internal/guard"
	"stealth-guard/server/logging"
)

// Guard pairs a guard's behaviour with the body it steers.
type Guard struct {
	Agent *guard.Agent
	Body  *Body
}

// World hosts the player, the guards and the level geometry. It is not safe
// for concurrent use; callers serialise access.
type World struct {
	cfg       Config
	inner     orb.Bound
	zones     []Zone
	obstacles []Obstacle
	player    *Player
	guards    []*Guard
	tick      uint64
}

// New builds the level described by cfg and spawns its guards.
func New(cfg Config, pub logging.Publisher) (*World, error) {
	cfg = cfg.normalized()
	if err := cfg.Guard.Validate(); err != nil {
		return nil, fmt.Errorf("world guard tuning: %w", err)
	}
	if pub == nil {
		pub = logging.NopPublisher()
	}
	pub = logging.WithFields(pub, map[string]any{"seed": cfg.Seed})

	w := &World{
		cfg:   cfg,
		inner: cfg.Arena().Pad(-cfg.BodyRadius),
	}
	for _, zc := range cfg.Zones {
		w.zones = append(w.zones, newZone(zc))
	}
	for i, box := range cfg.Obstacles {
		w.obstacles = append(w.obstacles, newObstacle(fmt.Sprintf("wall-%d", i+1), box))
	}

	start := w.playerStart()
	keepClear := []guard.Vec3{start}
	for _, spawn := range cfg.Guards {
		keepClear = append(keepClear, spawn.Position)
	}
	rng := NewDeterministicRNG(cfg.Seed, "obstacles")
	w.obstacles = append(w.obstacles, GenerateObstacles(rng, cfg, w.obstacles, keepClear, cfg.RandomBlocks)...)

	w.player = newPlayer(start, w.zones)

	ids := NewDeterministicRNG(cfg.Seed, "guard-ids")
	for _, spawn := range cfg.Guards {
		g, err := w.spawnGuard(spawn, ids, pub)
		if err != nil {
			return nil, err
		}
		w.guards = append(w.guards, g)
	}
	return w, nil
}

func (w *World) playerStart() guard.Vec3 {
	if w.cfg.PlayerStart != nil {
		return *w.cfg.PlayerStart
	}
	for _, zone := range w.zones {
		if zone.Kind == ZoneSpawn {
			c := zone.bound.Center()
			return guard.Vec3{X: c[0], Z: c[1]}
		}
	}
	return guard.Vec3{X: w.cfg.Width / 2, Z: w.cfg.Height / 2}
}

// spawnGuard draws unnamed guard IDs from ids so that a seed always yields the
// same IDs and, through them, the same recovery rotations.
func (w *World) spawnGuard(spawn GuardSpawn, ids io.Reader, pub logging.Publisher) (*Guard, error) {
	id := spawn.ID
	if id == "" {
		generated, err := uuid.NewRandomFromReader(ids)
		if err != nil {
			return nil, fmt.Errorf("spawn guard id: %w", err)
		}
		id = generated.String()
	}
	tuning := w.cfg.Guard
	if spawn.Config != nil {
		tuning = *spawn.Config
	}
	speed := spawn.Speed
	if speed <= 0 {
		speed = DefaultGuardSpeed
	}
	body := NewBody(spawn.Position, spawn.Yaw, speed, w.cfg.GuardTurnRate)
	agent, err := guard.New(guard.Options{
		ID:          id,
		Config:      tuning,
		Transform:   body,
		Navigator:   body,
		Target:      w.player,
		Concealment: w.player,
		Random:      NewDeterministicRNG(w.cfg.Seed, "guard/"+id),
		Publisher:   pub,
	})
	if err != nil {
		return nil, fmt.Errorf("spawn guard: %w", err)
	}
	return &Guard{Agent: agent, Body: body}, nil
}

// Blocked reports whether a body of the configured radius centred on p would
// leave the arena or overlap an obstacle.
func (w *World) Blocked(p orb.Point) bool {
	if !w.inner.Contains(p) {
		return true
	}
	for _, obs := range w.obstacles {
		if obs.bound.Pad(w.cfg.BodyRadius).Contains(p) {
			return true
		}
	}
	return false
}

// SetInput replaces the player's movement intent.
func (w *World) SetInput(in Input) {
	w.player.setInput(in)
}

// Step advances the world by dt seconds. Movement is resolved first; a guard
// whose body hits geometry is told to bounce before its behaviour ticks.
func (w *World) Step(ctx context.Context, dt float64) {
	w.tick++
	w.player.step(dt, w.cfg, w, w.zones)
	var blocker Blocker = w
	if w.cfg.DisableCollide {
		blocker = nil
	}
	for _, g := range w.guards {
		if hit := g.Body.Step(dt, blocker); hit {
			g.Agent.Bounce(ctx)
		}
		g.Agent.Tick(ctx, w.tick, dt)
	}
}

// Tick returns the number of completed steps.
func (w *World) Tick() uint64 {
	return w.tick
}

// Guards returns the spawned guards in spawn order.
func (w *World) Guards() []*Guard {
	return w.guards
}

// Player returns the target.
func (w *World) Player() *Player {
	return w.player
}

// Config returns the normalised configuration.
func (w *World) Config() Config {
	return w.cfg
}

// Snapshot is the per-tick dynamic state.
type Snapshot struct {
	Tick   uint64           `json:"tick"`
	Player PlayerSnapshot   `json:"player"`
	Guards []guard.Snapshot `json:"guards"`
}

func (w *World) Snapshot() Snapshot {
	guards := make([]guard.Snapshot, 0, len(w.guards))
	for _, g := range w.guards {
		guards = append(guards, g.Agent.Snapshot())
	}
	return Snapshot{
		Tick:   w.tick,
		Player: w.player.snapshot(),
		Guards: guards,
	}
}

// Layout is the static level geometry.
type Layout struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Zones     []Zone     `json:"zones"`
	Obstacles []Obstacle `json:"obstacles"`
}

func (w *World) Layout() Layout {
	return Layout{
		Width:     w.cfg.Width,
		Height:    w.cfg.Height,
		Zones:     append([]Zone(nil), w.zones...),
		Obstacles: append([]Obstacle(nil), w.obstacles...),
	}
}
