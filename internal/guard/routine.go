package guard

import "math"

const (
	// rotationTolerance is the angular distance (degrees) at which a recovery
	// rotation snaps onto its target.
	rotationTolerance = 0.1
	// arrivalTolerance is how close the guard must get to its back-up point.
	arrivalTolerance = 0.1
)

// Phase identifies the step a recovery routine is suspended in.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseBackingUp
	PhaseRotating
	PhaseCoolingDown
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseBackingUp:
		return "backing_up"
	case PhaseRotating:
		return "rotating"
	case PhaseCoolingDown:
		return "cooling_down"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalText renders the phase name in snapshots.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// PickRotation draws a signed rotation in degrees: the sign is -1 or +1 with
// equal probability and the magnitude is uniform in [min, max].
func PickRotation(rng Random, minDeg, maxDeg float64) float64 {
	sign := 1.0
	if rng.Intn(2) == 0 {
		sign = -1
	}
	magnitude := minDeg
	if maxDeg > minDeg {
		magnitude = minDeg + rng.Float64()*(maxDeg-minDeg)
	}
	return sign * magnitude
}

// rotation turns a transform toward a fixed yaw at a bounded angular speed.
type rotation struct {
	from   float64
	delta  float64
	target float64
}

func newRotation(from, delta float64) rotation {
	return rotation{
		from:   from,
		delta:  delta,
		target: NormalizeYaw(from + delta),
	}
}

// remaining returns the signed shortest turn from yaw to the target. An exact
// half turn keeps the originally chosen direction.
func (r rotation) remaining(yaw float64) float64 {
	d := NormalizeYaw(r.target - yaw)
	if d > 180 {
		d -= 360
	}
	if d == 180 && r.delta < 0 {
		d = -180
	}
	return d
}

// advance performs one suspended rotation step. It first checks whether the
// target is within tolerance and, if so, snaps onto it and reports completion.
// Otherwise it turns by at most speed*dt degrees and yields.
func (r rotation) advance(t Transform, speed, dt float64) bool {
	yaw := t.Yaw()
	rem := r.remaining(yaw)
	if math.Abs(rem) <= rotationTolerance {
		t.SetYaw(r.target)
		return true
	}
	step := speed * dt
	if step >= math.Abs(rem) {
		t.SetYaw(r.target)
		return false
	}
	t.SetYaw(NormalizeYaw(yaw + math.Copysign(step, rem)))
	return false
}
