package world

import (
	"math"

	"stealth-guard/server/internal/guard"
)

// Input is the player's latest movement intent.
type Input struct {
	DX     float64 `json:"dx"`
	DZ     float64 `json:"dz"`
	Crouch bool    `json:"crouch"`
	Sprint bool    `json:"sprint"`
}

// Player is the target the guards hunt. It satisfies guard.Target and
// guard.Concealment; cover zones hide it.
type Player struct {
	pos   guard.Vec3
	input Input
	state guard.MovementState
	flags ZoneFlags
}

func newPlayer(pos guard.Vec3, zones []Zone) *Player {
	p := &Player{pos: pos}
	p.flags = Classify(zones, pos)
	return p
}

func (p *Player) Position() guard.Vec3                { return p.pos }
func (p *Player) MovementState() guard.MovementState { return p.state }
func (p *Player) InSpawnArea() bool                   { return p.flags.Spawn }
func (p *Player) InEndArea() bool                     { return p.flags.End }
func (p *Player) IsHidden() bool                      { return p.flags.Cover }

func (p *Player) setInput(in Input) {
	length := math.Hypot(in.DX, in.DZ)
	if length > 1 {
		in.DX /= length
		in.DZ /= length
	}
	p.input = in
	switch {
	case in.Crouch:
		p.state = guard.MovementCrouching
	case in.Sprint:
		p.state = guard.MovementSprinting
	default:
		p.state = guard.MovementNormal
	}
}

func (p *Player) speed(cfg Config) float64 {
	switch p.state {
	case guard.MovementCrouching:
		return cfg.CrouchSpeed
	case guard.MovementSprinting:
		return cfg.SprintSpeed
	default:
		return cfg.WalkSpeed
	}
}

func (p *Player) step(dt float64, cfg Config, blocker Blocker, zones []Zone) {
	if dt > 0 && (p.input.DX != 0 || p.input.DZ != 0) {
		speed := p.speed(cfg)
		next := p.pos.Add(guard.Vec3{X: p.input.DX, Z: p.input.DZ}.Scale(speed * dt))
		if blocker == nil || !blocker.Blocked(planarPoint(next)) {
			p.pos = next
		}
	}
	p.flags = Classify(zones, p.pos)
}

// PlayerSnapshot is the broadcast view of the player.
type PlayerSnapshot struct {
	Position guard.Vec3          `json:"position"`
	State    guard.MovementState `json:"state"`
	Zones    ZoneFlags           `json:"zones"`
	Hidden   bool                `json:"hidden"`
}

func (p *Player) snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		Position: p.pos,
		State:    p.state,
		Zones:    p.flags,
		Hidden:   p.IsHidden(),
	}
}
