package guard

import "math"

// Vec3 is a point or direction in world space. Y is the vertical axis.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Len returns the magnitude of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Len()
}

// HeadingFromYaw converts a rotation about the vertical axis (degrees) into a
// unit forward vector. Yaw 0 faces +Z and yaw 90 faces +X.
func HeadingFromYaw(yaw float64) Vec3 {
	rad := yaw * math.Pi / 180
	return Vec3{X: math.Sin(rad), Z: math.Cos(rad)}
}

// YawFromHeading is the inverse of HeadingFromYaw for horizontal vectors.
func YawFromHeading(dir Vec3) float64 {
	if dir.X == 0 && dir.Z == 0 {
		return 0
	}
	return NormalizeYaw(math.Atan2(dir.X, dir.Z) * 180 / math.Pi)
}

// NormalizeYaw wraps an angle in degrees into [0, 360).
func NormalizeYaw(yaw float64) float64 {
	yaw = math.Mod(yaw, 360)
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// AngleBetween returns the unsigned shortest angle between two yaws in degrees.
func AngleBetween(a, b float64) float64 {
	diff := math.Abs(NormalizeYaw(a - b))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// MovementState enumerates the target's stance.
type MovementState uint8

const (
	MovementNormal MovementState = iota
	MovementCrouching
	MovementSprinting
	MovementAirborne
)

func (s MovementState) String() string {
	switch s {
	case MovementNormal:
		return "normal"
	case MovementCrouching:
		return "crouching"
	case MovementSprinting:
		return "sprinting"
	case MovementAirborne:
		return "airborne"
	default:
		return "unknown"
	}
}

// MarshalText renders the stance name in snapshots.
func (s MovementState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Target is the read-only view of the entity a guard may pursue.
type Target interface {
	Position() Vec3
	MovementState() MovementState
	InSpawnArea() bool
	InEndArea() bool
}

// Concealment reports whether the target is currently hidden.
type Concealment interface {
	IsHidden() bool
}

// ConcealmentFunc adapts a function into the Concealment interface.
type ConcealmentFunc func() bool

// IsHidden implements Concealment.
func (f ConcealmentFunc) IsHidden() bool {
	if f == nil {
		return false
	}
	return f()
}

// Navigator turns destination requests into physical movement.
type Navigator interface {
	SetDestination(point Vec3)
	Velocity() Vec3
	SetHalted(halted bool)
}

// Transform exposes the guard's position and orientation. Position is owned by
// the navigation capability; yaw is written by the recovery routines.
type Transform interface {
	Position() Vec3
	Yaw() float64
	SetYaw(yaw float64)
}

// Random supplies the randomness used to pick recovery rotations. *rand.Rand
// satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// Mode identifies which motion intent the decision loop chose last.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModePatrol
	ModePursue
)

func (m Mode) String() string {
	switch m {
	case ModePatrol:
		return "patrol"
	case ModePursue:
		return "pursue"
	default:
		return "idle"
	}
}

// MarshalText renders the mode name in snapshots.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
