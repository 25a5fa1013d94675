package guard

import (
	"context"

	guardlog "stealth-guard/server/logging/guard"
)

// unstuckRoutine is the lightweight reorientation fired by the stationary
// watchdog. It never halts navigation and never blocks the decision loop.
type unstuckRoutine struct {
	phase Phase
	turn  rotation
}

func (u *unstuckRoutine) active() bool {
	return u.phase == PhaseRotating
}

// abandon drops a rotation in flight so a bounce can take over the body. The
// abandoned rotation never records a last known heading and never publishes
// guard.unstuck_finished.
func (u *unstuckRoutine) abandon() {
	if u.active() {
		u.phase = PhaseIdle
	}
}

// startUnstuck begins a forced rotation. A rotation already in flight is left
// alone; the caller resets the watchdog either way.
func (a *Agent) startUnstuck(ctx context.Context) bool {
	if a.unstuck.active() {
		return false
	}
	a.unstuck = unstuckRoutine{
		phase: PhaseRotating,
		turn:  newRotation(a.transform.Yaw(), PickRotation(a.rng, a.cfg.MinRotation, a.cfg.MaxRotation)),
	}
	a.lastRotation = a.unstuck.turn.delta
	a.unstucks++

	guardlog.UnstuckTriggered(ctx, a.pub, a.tick, a.id, guardlog.UnstuckPayload{
		StationarySeconds: a.stationary,
		RotationPayload: guardlog.RotationPayload{
			FromYaw: a.unstuck.turn.from,
			Delta:   a.unstuck.turn.delta,
			ToYaw:   a.unstuck.turn.target,
		},
	})
	return true
}

func (a *Agent) advanceUnstuck(ctx context.Context, dt float64) {
	u := &a.unstuck
	if !u.active() {
		return
	}
	if !u.turn.advance(a.transform, a.cfg.RotationSpeed, dt) {
		return
	}
	a.lastHeading = a.Facing()
	u.phase = PhaseDone
	guardlog.UnstuckFinished(ctx, a.pub, a.tick, a.id, guardlog.RotationPayload{
		FromYaw: u.turn.from,
		Delta:   u.turn.delta,
		ToYaw:   u.turn.target,
	})
}
