package world

import (
	"strings"

	"github.com/paulmach/orb"

	"stealth-guard/server/internal/guard"
)

const (
	DefaultSeed   = "prototype"
	DefaultWidth  = 40.0
	DefaultHeight = 40.0

	DefaultGuardSpeed    = 3.5
	DefaultGuardTurnRate = 120.0
	DefaultBodyRadius    = 0.4

	DefaultWalkSpeed   = 4.0
	DefaultCrouchSpeed = 2.0
	DefaultSprintSpeed = 6.5
)

// Box is an axis-aligned rectangle on the ground plane (X/Z).
type Box struct {
	MinX float64 `json:"minX"`
	MinZ float64 `json:"minZ"`
	MaxX float64 `json:"maxX"`
	MaxZ float64 `json:"maxZ"`
}

// Bound converts the box into an orb bound with X/Z mapped onto the planar axes.
func (b Box) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinX, b.MinZ}, Max: orb.Point{b.MaxX, b.MaxZ}}
}

// Polygon converts the box into a closed ring.
func (b Box) Polygon() orb.Polygon {
	return b.Bound().ToPolygon()
}

// ZoneConfig declares a polygonal area of the map.
type ZoneConfig struct {
	Name    string      `json:"name"`
	Kind    ZoneKind    `json:"kind" jsonschema:"enum=spawn,enum=end,enum=cover"`
	Polygon orb.Polygon `json:"polygon" jsonschema:"description=Rings of [x,z] points; the first ring is the outline"`
}

// GuardSpawn places a guard at startup.
type GuardSpawn struct {
	ID       string        `json:"id,omitempty" jsonschema:"description=Stable identifier; a random UUID is assigned when empty"`
	Position guard.Vec3    `json:"position"`
	Yaw      float64       `json:"yaw"`
	Speed    float64       `json:"speed,omitempty"`
	Config   *guard.Config `json:"config,omitempty" jsonschema:"description=Overrides the world-wide guard tuning"`
}

// Config describes the demo level hosting the guards.
type Config struct {
	Seed           string       `json:"seed"`
	Width          float64      `json:"width"`
	Height         float64      `json:"height"`
	Guard          guard.Config `json:"guard"`
	Guards         []GuardSpawn `json:"guards"`
	Zones          []ZoneConfig `json:"zones"`
	Obstacles      []Box        `json:"obstacles"`
	RandomBlocks   int          `json:"randomBlocks,omitempty" jsonschema:"description=Additional seeded obstacles scattered away from zones"`
	PlayerStart    *guard.Vec3  `json:"playerStart,omitempty"`
	BodyRadius     float64      `json:"bodyRadius,omitempty"`
	GuardTurnRate  float64      `json:"guardTurnRate,omitempty"`
	WalkSpeed      float64      `json:"walkSpeed,omitempty"`
	CrouchSpeed    float64      `json:"crouchSpeed,omitempty"`
	SprintSpeed    float64      `json:"sprintSpeed,omitempty"`
	DisableCollide bool         `json:"disableCollide,omitempty" jsonschema:"description=Skip obstacle contact bounces"`
}

func (cfg Config) normalized() Config {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = DefaultSeed
	}
	if normalized.Width <= 0 {
		normalized.Width = DefaultWidth
	}
	if normalized.Height <= 0 {
		normalized.Height = DefaultHeight
	}
	if normalized.Guard == (guard.Config{}) {
		normalized.Guard = guard.DefaultConfig()
	}
	if normalized.RandomBlocks < 0 {
		normalized.RandomBlocks = 0
	}
	if normalized.BodyRadius <= 0 {
		normalized.BodyRadius = DefaultBodyRadius
	}
	if normalized.GuardTurnRate <= 0 {
		normalized.GuardTurnRate = DefaultGuardTurnRate
	}
	if normalized.WalkSpeed <= 0 {
		normalized.WalkSpeed = DefaultWalkSpeed
	}
	if normalized.CrouchSpeed <= 0 {
		normalized.CrouchSpeed = DefaultCrouchSpeed
	}
	if normalized.SprintSpeed <= 0 {
		normalized.SprintSpeed = DefaultSprintSpeed
	}
	return normalized
}

func (cfg Config) Normalized() Config {
	return cfg.normalized()
}

// Arena returns the walkable extent of the level.
func (cfg Config) Arena() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{cfg.Width, cfg.Height}}
}

// DefaultConfig lays out a small level: a spawn pad and an exit in opposite
// corners, two cover patches, a handful of walls and two patrolling guards.
func DefaultConfig() Config {
	return Config{
		Seed:   DefaultSeed,
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Guard:  guard.DefaultConfig(),
		Guards: []GuardSpawn{
			{Position: guard.Vec3{X: 20, Z: 12}, Yaw: 90},
			{Position: guard.Vec3{X: 14, Z: 28}, Yaw: 0},
		},
		Zones: []ZoneConfig{
			{Name: "spawn", Kind: ZoneSpawn, Polygon: Box{MinX: 1, MinZ: 1, MaxX: 6, MaxZ: 6}.Polygon()},
			{Name: "exit", Kind: ZoneEnd, Polygon: Box{MinX: 34, MinZ: 34, MaxX: 39, MaxZ: 39}.Polygon()},
			{Name: "hedge", Kind: ZoneCover, Polygon: orb.Polygon{{{9, 18}, {13, 18}, {13, 22}, {9, 22}, {9, 18}}}},
			{Name: "crates", Kind: ZoneCover, Polygon: orb.Polygon{{{27, 8}, {31, 8}, {29, 12}, {27, 8}}}},
		},
		Obstacles: []Box{
			{MinX: 16, MinZ: 16, MaxX: 24, MaxZ: 18},
			{MinX: 30, MinZ: 20, MaxX: 32, MaxZ: 30},
			{MinX: 6, MinZ: 30, MaxX: 10, MaxZ: 32},
		},
	}
}
