package guard

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid guard config")

// Config holds the per-guard tuning parameters. It is fixed once the guard is
// constructed.
type Config struct {
	DetectionRange    float64 `json:"detectionRange" jsonschema:"description=Distance at which a standing target is detected,minimum=0"`
	CrouchModifier    float64 `json:"crouchModifier" jsonschema:"description=Multiplier applied to the detection range while the target crouches,minimum=0"`
	MinRotation       float64 `json:"minRotation" jsonschema:"description=Smallest recovery rotation in degrees,minimum=0"`
	MaxRotation       float64 `json:"maxRotation" jsonschema:"description=Largest recovery rotation in degrees. Turns take the shorter way round,minimum=0"`
	BounceInterval    float64 `json:"bounceInterval" jsonschema:"description=Cooldown in seconds after a bounce completes,minimum=0"`
	BackUpDistance    float64 `json:"backUpDistance" jsonschema:"description=Reverse travel in metres before a bounce rotation,minimum=0"`
	StationaryTimeout float64 `json:"stationaryTimeout" jsonschema:"description=Seconds without movement before a forced unstuck rotation,minimum=0"`
	RotationSpeed     float64 `json:"rotationSpeed" jsonschema:"description=Angular speed of recovery rotations in degrees per second,minimum=0"`
	MovementThreshold float64 `json:"movementThreshold" jsonschema:"description=Minimum velocity magnitude counted as moving,minimum=0"`
}

// DefaultConfig returns the stock guard tuning.
func DefaultConfig() Config {
	return Config{
		DetectionRange:    10,
		CrouchModifier:    0.5,
		MinRotation:       15,
		MaxRotation:       90,
		BounceInterval:    2,
		BackUpDistance:    1,
		StationaryTimeout: 5,
		RotationSpeed:     180,
		MovementThreshold: 0.1,
	}
}

// Validate reports every parameter that would make the guard misbehave.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"detectionRange", c.DetectionRange},
		{"crouchModifier", c.CrouchModifier},
		{"minRotation", c.MinRotation},
		{"maxRotation", c.MaxRotation},
		{"bounceInterval", c.BounceInterval},
		{"backUpDistance", c.BackUpDistance},
		{"stationaryTimeout", c.StationaryTimeout},
		{"rotationSpeed", c.RotationSpeed},
		{"movementThreshold", c.MovementThreshold},
	} {
		check(!math.IsNaN(field.value) && !math.IsInf(field.value, 0), "%s must be finite", field.name)
	}
	check(c.DetectionRange >= 0, "detectionRange %v is negative", c.DetectionRange)
	check(c.CrouchModifier >= 0, "crouchModifier %v is negative", c.CrouchModifier)
	check(c.MinRotation >= 0, "minRotation %v is negative", c.MinRotation)
	check(c.MinRotation <= c.MaxRotation, "minRotation %v exceeds maxRotation %v", c.MinRotation, c.MaxRotation)
	check(c.BounceInterval >= 0, "bounceInterval %v is negative", c.BounceInterval)
	check(c.BackUpDistance >= 0, "backUpDistance %v is negative", c.BackUpDistance)
	check(c.StationaryTimeout > 0, "stationaryTimeout %v must be positive", c.StationaryTimeout)
	check(c.RotationSpeed > 0, "rotationSpeed %v must be positive", c.RotationSpeed)
	check(c.MovementThreshold >= 0, "movementThreshold %v is negative", c.MovementThreshold)
	return errors.Join(errs...)
}
