package guard

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"

	"stealth-guard/server/logging"
	guardlog "stealth-guard/server/logging/guard"
)

// ErrMissingCapability is returned by New when a required collaborator is nil.
var ErrMissingCapability = errors.New("guard capability missing")

// Options bundles the collaborators injected into a guard.
type Options struct {
	ID          string
	Config      Config
	Transform   Transform
	Navigator   Navigator
	Target      Target
	Concealment Concealment
	Random      Random
	Publisher   logging.Publisher
}

// Agent is a single guard. All methods must be called from the goroutine that
// drives its ticks.
type Agent struct {
	id          string
	cfg         Config
	transform   Transform
	nav         Navigator
	target      Target
	concealment Concealment
	rng         Random
	pub         logging.Publisher

	tick        uint64
	lastHeading Vec3
	moving      bool
	bouncing    bool
	stationary  float64
	mode        Mode
	detection   Detection

	bounce  bounceRoutine
	unstuck unstuckRoutine

	lastRotation float64
	bounces      uint64
	unstucks     uint64
}

// New validates the configuration and builds a guard facing its transform's
// current yaw.
func New(opts Options) (*Agent, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("guard %q: %w", opts.ID, err)
	}
	if opts.Transform == nil {
		return nil, fmt.Errorf("guard %q: %w: transform", opts.ID, ErrMissingCapability)
	}
	if opts.Navigator == nil {
		return nil, fmt.Errorf("guard %q: %w: navigator", opts.ID, ErrMissingCapability)
	}
	rng := opts.Random
	if rng == nil {
		rng = rand.New(rand.NewSource(seedFor(opts.ID)))
	}
	pub := opts.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	a := &Agent{
		id:          opts.ID,
		cfg:         opts.Config,
		transform:   opts.Transform,
		nav:         opts.Navigator,
		target:      opts.Target,
		concealment: opts.Concealment,
		rng:         rng,
		pub:         pub,
	}
	a.lastHeading = a.Facing()
	return a, nil
}

func seedFor(id string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(id))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// ID returns the guard identifier.
func (a *Agent) ID() string {
	return a.id
}

// Config returns the guard's tuning.
func (a *Agent) Config() Config {
	return a.cfg
}

// Facing is the unit forward vector derived from the current yaw.
func (a *Agent) Facing() Vec3 {
	return HeadingFromYaw(a.transform.Yaw())
}

// LastHeading is the direction patrol continues along.
func (a *Agent) LastHeading() Vec3 {
	return a.lastHeading
}

// Bouncing reports whether a bounce currently suspends the decision loop.
func (a *Agent) Bouncing() bool {
	return a.bouncing
}

// StationaryTime returns seconds since movement was last detected.
func (a *Agent) StationaryTime() float64 {
	return a.stationary
}

// Mode returns the motion intent issued on the most recent decision.
func (a *Agent) Mode() Mode {
	return a.mode
}

// Tick advances the guard by one frame of dt seconds: the decision loop runs
// first unless a bounce holds it off, then any suspended recovery routine is
// resumed.
func (a *Agent) Tick(ctx context.Context, tick uint64, dt float64) {
	if a == nil {
		return
	}
	if dt < 0 {
		dt = 0
	}
	a.tick = tick
	if !a.bouncing {
		a.decide(ctx, dt)
	}
	if a.bounce.active() {
		a.advanceBounce(ctx, dt)
	}
	if a.unstuck.active() {
		a.advanceUnstuck(ctx, dt)
	}
}

func (a *Agent) decide(ctx context.Context, dt float64) {
	a.moving = a.nav.Velocity().Len() > a.cfg.MovementThreshold
	if a.moving {
		a.stationary = 0
	} else {
		a.stationary += dt
	}

	if !a.moving && a.stationary >= a.cfg.StationaryTimeout {
		a.startUnstuck(ctx)
		a.stationary = 0
	}

	det := Perceive(a.cfg, a.transform.Position(), a.target, a.concealment)
	previous := a.mode
	if det.Acquired {
		a.pursue()
	} else {
		a.patrol()
	}
	a.detection = det
	a.reportTransition(ctx, previous, det)
}

func (a *Agent) reportTransition(ctx context.Context, previous Mode, det Detection) {
	if previous == a.mode {
		return
	}
	payload := guardlog.DetectionPayload{
		Distance:       det.Distance,
		EffectiveRange: det.EffectiveRange,
		Crouching:      det.Crouching,
		Hidden:         det.Hidden,
		Exempt:         det.Exempt,
	}
	switch {
	case a.mode == ModePursue:
		guardlog.TargetAcquired(ctx, a.pub, a.tick, a.id, payload)
	case previous == ModePursue:
		guardlog.TargetLost(ctx, a.pub, a.tick, a.id, payload)
	}
}

// Snapshot is a read-only copy of the guard state.
type Snapshot struct {
	ID                string  `json:"id"`
	Position          Vec3    `json:"position"`
	Yaw               float64 `json:"yaw"`
	Heading           Vec3    `json:"heading"`
	LastHeading       Vec3    `json:"lastHeading"`
	Mode              Mode    `json:"mode"`
	Moving            bool    `json:"moving"`
	Bouncing          bool    `json:"bouncing"`
	BouncePhase       Phase   `json:"bouncePhase"`
	Unstucking        bool    `json:"unstucking"`
	StationarySeconds float64 `json:"stationarySeconds"`
	TargetDistance    float64 `json:"targetDistance"`
	EffectiveRange    float64 `json:"effectiveRange"`
	LastRotation      float64 `json:"lastRotation"`
	Bounces           uint64  `json:"bounces"`
	Unstucks          uint64  `json:"unstucks"`
}

// Snapshot captures the guard's current state.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		ID:                a.id,
		Position:          a.transform.Position(),
		Yaw:               a.transform.Yaw(),
		Heading:           a.Facing(),
		LastHeading:       a.lastHeading,
		Mode:              a.mode,
		Moving:            a.moving,
		Bouncing:          a.bouncing,
		BouncePhase:       a.bounce.phase,
		Unstucking:        a.unstuck.active(),
		StationarySeconds: a.stationary,
		TargetDistance:    a.detection.Distance,
		EffectiveRange:    a.detection.EffectiveRange,
		LastRotation:      a.lastRotation,
		Bounces:           a.bounces,
		Unstucks:          a.unstucks,
	}
}
