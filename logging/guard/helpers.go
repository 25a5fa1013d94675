package guard

import (
	"context"

	"stealth-guard/server/logging"
)

const (
	// EventTargetAcquired is emitted when perception starts detecting the target.
	EventTargetAcquired logging.EventType = "guard.target_acquired"
	// EventTargetLost is emitted when a pursuing guard falls back to patrol.
	EventTargetLost logging.EventType = "guard.target_lost"
	// EventBounceStarted is emitted when an external trigger starts a bounce.
	EventBounceStarted logging.EventType = "guard.bounce_started"
	// EventBounceFinished is emitted once the bounce cooldown elapses.
	EventBounceFinished logging.EventType = "guard.bounce_finished"
	// EventUnstuckTriggered is emitted when the stationary watchdog fires.
	EventUnstuckTriggered logging.EventType = "guard.unstuck_triggered"
	// EventUnstuckFinished is emitted when the forced rotation settles.
	EventUnstuckFinished logging.EventType = "guard.unstuck_finished"
)

// DetectionPayload describes the perception inputs at a transition.
type DetectionPayload struct {
	Distance       float64 `json:"distance"`
	EffectiveRange float64 `json:"effectiveRange"`
	Crouching      bool    `json:"crouching,omitempty"`
	Hidden         bool    `json:"hidden,omitempty"`
	Exempt         bool    `json:"exempt,omitempty"`
}

// RotationPayload describes a recovery rotation.
type RotationPayload struct {
	FromYaw float64 `json:"fromYaw"`
	Delta   float64 `json:"delta"`
	ToYaw   float64 `json:"toYaw"`
}

// BounceStartedPayload captures where the guard backs up to.
type BounceStartedPayload struct {
	BackUpX float64 `json:"backUpX"`
	BackUpZ float64 `json:"backUpZ"`
}

// UnstuckPayload captures the watchdog reading when it fired.
type UnstuckPayload struct {
	StationarySeconds float64 `json:"stationarySeconds"`
	RotationPayload
}

func guardRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindGuard}
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, guardID string, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    guardRef(guardID),
		Severity: severity,
		Category: logging.CategoryBehaviour,
		Payload:  payload,
	})
}

// TargetAcquired publishes the switch from patrol to pursuit.
func TargetAcquired(ctx context.Context, pub logging.Publisher, tick uint64, guardID string, payload DetectionPayload) {
	publish(ctx, pub, EventTargetAcquired, tick, guardID, logging.SeverityInfo, payload)
}

// TargetLost publishes the switch from pursuit back to patrol.
func TargetLost(ctx context.Context, pub logging.Publisher, tick uint64, guardID string, payload DetectionPayload) {
	publish(ctx, pub, EventTargetLost, tick, guardID, logging.SeverityInfo, payload)
}

// BounceStarted publishes the start of a bounce.
func BounceStarted(ctx context.Context, pub logging.Publisher, tick uint64, guardID string, payload BounceStartedPayload) {
	publish(ctx, pub, EventBounceStarted, tick, guardID, logging.SeverityDebug, payload)
}

// BounceFinished publishes the end of the bounce cooldown.
func BounceFinished(ctx context.Context, pub logging.Publisher, tick uint64, guardID string, payload RotationPayload) {
	publish(ctx, pub, EventBounceFinished, tick, guardID, logging.SeverityDebug, payload)
}

// UnstuckTriggered publishes a forced rotation caused by the stationary watchdog.
func UnstuckTriggered(ctx context.Context, pub logging.Publisher, tick uint64, guardID string, payload UnstuckPayload) {
	publish(ctx, pub, EventUnstuckTriggered, tick, guardID, logging.SeverityWarn, payload)
}

// UnstuckFinished publishes the completion of a forced rotation.
func UnstuckFinished(ctx context.Context, pub logging.Publisher, tick uint64, guardID string, payload RotationPayload) {
	publish(ctx, pub, EventUnstuckFinished, tick, guardID, logging.SeverityDebug, payload)
}
