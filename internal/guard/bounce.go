package guard

import (
	"context"

	guardlog "stealth-guard/server/logging/guard"
)

// bounceRoutine backs the guard away from an obstacle, turns it by a random
// amount and holds the decision loop off for a cooldown.
type bounceRoutine struct {
	phase    Phase
	backUp   Vec3
	turn     rotation
	cooldown float64
}

func (b *bounceRoutine) active() bool {
	return b.phase != PhaseIdle && b.phase != PhaseDone
}

// Bounce starts the obstacle recovery sequence. It reports false, and changes
// nothing, when a bounce is already in progress.
func (a *Agent) Bounce(ctx context.Context) bool {
	if a == nil || a.bouncing {
		return false
	}
	a.bouncing = true
	a.unstuck.abandon()

	pos := a.transform.Position()
	a.bounce = bounceRoutine{
		phase:  PhaseBackingUp,
		backUp: pos.Sub(a.Facing().Scale(a.cfg.BackUpDistance)),
	}
	a.nav.SetDestination(a.bounce.backUp)
	a.bounces++

	guardlog.BounceStarted(ctx, a.pub, a.tick, a.id, guardlog.BounceStartedPayload{
		BackUpX: a.bounce.backUp.X,
		BackUpZ: a.bounce.backUp.Z,
	})
	return true
}

// advanceBounce runs the bounce until its next suspension point.
func (a *Agent) advanceBounce(ctx context.Context, dt float64) {
	b := &a.bounce
	switch b.phase {
	case PhaseBackingUp:
		if Distance(a.transform.Position(), b.backUp) >= arrivalTolerance {
			return
		}
		a.nav.SetHalted(true)
		b.turn = newRotation(a.transform.Yaw(), PickRotation(a.rng, a.cfg.MinRotation, a.cfg.MaxRotation))
		a.lastRotation = b.turn.delta
		b.phase = PhaseRotating
		a.advanceBounce(ctx, dt)
	case PhaseRotating:
		if !b.turn.advance(a.transform, a.cfg.RotationSpeed, dt) {
			return
		}
		a.lastHeading = a.Facing()
		a.nav.SetHalted(false)
		b.cooldown = 0
		b.phase = PhaseCoolingDown
	case PhaseCoolingDown:
		b.cooldown += dt
		if b.cooldown < a.cfg.BounceInterval {
			return
		}
		b.phase = PhaseDone
		a.bouncing = false
		guardlog.BounceFinished(ctx, a.pub, a.tick, a.id, guardlog.RotationPayload{
			FromYaw: b.turn.from,
			Delta:   b.turn.delta,
			ToYaw:   b.turn.target,
		})
	}
}
