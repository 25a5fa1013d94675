package guard

// Detection is the outcome of a single perception pass.
type Detection struct {
	Acquired       bool
	Distance       float64
	EffectiveRange float64
	Crouching      bool
	Hidden         bool
	// Exempt is set while the target stands in a spawn or end area.
	Exempt bool
}

// EffectiveRange returns the detection range for the given stance.
func EffectiveRange(cfg Config, state MovementState) float64 {
	if state == MovementCrouching {
		return cfg.DetectionRange * cfg.CrouchModifier
	}
	return cfg.DetectionRange
}

// Perceive evaluates whether the target is detectable from origin. There is
// no hysteresis: the result depends only on the current inputs.
func Perceive(cfg Config, origin Vec3, target Target, concealment Concealment) Detection {
	if target == nil {
		return Detection{}
	}
	state := target.MovementState()
	det := Detection{
		Distance:       Distance(origin, target.Position()),
		EffectiveRange: EffectiveRange(cfg, state),
		Crouching:      state == MovementCrouching,
	}
	if concealment != nil {
		det.Hidden = concealment.IsHidden()
	}
	if target.InSpawnArea() || target.InEndArea() {
		det.Exempt = true
		return det
	}
	det.Acquired = det.Distance <= det.EffectiveRange && !det.Hidden
	return det
}
