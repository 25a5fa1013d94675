package world

import (
	"math"

	"github.com/paulmach/orb"

	"stealth-guard/server/internal/guard"
)

const (
	// arriveEpsilon is the distance at which a body stops short of its
	// destination and reports zero velocity.
	arriveEpsilon = 1e-3
	// reverseArc is the angle beyond which movement counts as backing up and
	// the body keeps its facing.
	reverseArc = 135.0
)

// Blocker answers whether a body centred on the point would overlap geometry.
type Blocker interface {
	Blocked(p orb.Point) bool
}

// Body is a kinematic navigation agent: it walks in a straight line toward
// its destination, stops at geometry and turns to face the way it walks. It
// implements both guard.Transform and guard.Navigator.
type Body struct {
	pos      guard.Vec3
	yaw      float64
	velocity guard.Vec3
	dest     guard.Vec3
	hasDest  bool
	halted   bool
	speed    float64
	turnRate float64
}

// NewBody places a body at pos facing yaw degrees.
func NewBody(pos guard.Vec3, yaw, speed, turnRate float64) *Body {
	return &Body{
		pos:      pos,
		yaw:      guard.NormalizeYaw(yaw),
		speed:    speed,
		turnRate: turnRate,
	}
}

func (b *Body) Position() guard.Vec3 { return b.pos }
func (b *Body) Yaw() float64         { return b.yaw }
func (b *Body) Velocity() guard.Vec3 { return b.velocity }
func (b *Body) Halted() bool         { return b.halted }

func (b *Body) SetYaw(yaw float64) {
	b.yaw = guard.NormalizeYaw(yaw)
}

func (b *Body) SetDestination(point guard.Vec3) {
	b.dest = point
	b.hasDest = true
}

func (b *Body) SetHalted(halted bool) {
	b.halted = halted
}

// Destination returns the pending destination, if any.
func (b *Body) Destination() (guard.Vec3, bool) {
	return b.dest, b.hasDest
}

// Step moves the body for dt seconds. It returns true when the next position
// would have overlapped geometry; the body then stays put with zero velocity.
func (b *Body) Step(dt float64, blocker Blocker) bool {
	b.velocity = guard.Vec3{}
	if b.halted || !b.hasDest || dt <= 0 {
		return false
	}
	to := b.dest.Sub(b.pos)
	to.Y = 0
	dist := to.Len()
	if dist < arriveEpsilon {
		return false
	}
	dir := to.Scale(1 / dist)
	move := math.Min(b.speed*dt, dist)
	next := b.pos.Add(dir.Scale(move))
	if blocker != nil && blocker.Blocked(planarPoint(next)) {
		return true
	}
	b.pos = next
	b.velocity = dir.Scale(move / dt)
	b.faceMovement(dir, dt)
	return false
}

func (b *Body) faceMovement(dir guard.Vec3, dt float64) {
	if b.turnRate <= 0 {
		return
	}
	want := guard.YawFromHeading(dir)
	if guard.AngleBetween(b.yaw, want) > reverseArc {
		return
	}
	diff := guard.NormalizeYaw(want - b.yaw)
	if diff > 180 {
		diff -= 360
	}
	step := b.turnRate * dt
	if math.Abs(diff) <= step {
		b.yaw = want
		return
	}
	b.SetYaw(b.yaw + math.Copysign(step, diff))
}
