package guard

import "testing"

func TestPerceiveDistanceThresholdIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name     string
		distance float64
		want     bool
	}{
		{name: "inside", distance: 3, want: true},
		{name: "boundary", distance: 10, want: true},
		{name: "just outside", distance: 10.0001, want: false},
		{name: "far", distance: 50, want: false},
		{name: "on top", distance: 0, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := &fakeTarget{pos: Vec3{Z: tc.distance}}
			det := Perceive(cfg, Vec3{}, target, target)
			if det.Acquired != tc.want {
				t.Fatalf("expected acquired=%v at distance %v, got %v", tc.want, tc.distance, det.Acquired)
			}
		})
	}
}

func TestPerceiveCrouchHalvesRange(t *testing.T) {
	cfg := DefaultConfig()
	target := &fakeTarget{pos: Vec3{X: 0.6 * cfg.DetectionRange}}

	if det := Perceive(cfg, Vec3{}, target, target); !det.Acquired {
		t.Fatalf("expected standing target at 6 to be detected")
	}

	target.state = MovementCrouching
	det := Perceive(cfg, Vec3{}, target, target)
	if det.Acquired {
		t.Fatalf("expected crouching target at 6 to stay undetected")
	}
	if det.EffectiveRange != 5 {
		t.Fatalf("expected effective range 5, got %v", det.EffectiveRange)
	}
}

func TestPerceiveAreaExemptionsOverrideDistance(t *testing.T) {
	cfg := DefaultConfig()
	for _, target := range []*fakeTarget{{spawn: true}, {end: true}, {spawn: true, end: true}} {
		det := Perceive(cfg, Vec3{}, target, target)
		if det.Acquired {
			t.Fatalf("expected exempt target at distance 0 to be ignored: %+v", target)
		}
		if !det.Exempt {
			t.Fatalf("expected detection to be flagged exempt: %+v", target)
		}
	}
}

func TestPerceiveHiddenTargetIsNeverAcquired(t *testing.T) {
	target := &fakeTarget{pos: Vec3{X: 1}, hidden: true}
	if det := Perceive(DefaultConfig(), Vec3{}, target, target); det.Acquired {
		t.Fatalf("expected hidden target to be ignored")
	}
}

func TestPerceiveWithoutConcealmentTreatsTargetAsVisible(t *testing.T) {
	target := &fakeTarget{pos: Vec3{X: 1}, hidden: true}
	if det := Perceive(DefaultConfig(), Vec3{}, target, nil); !det.Acquired {
		t.Fatalf("expected target to be acquired when no concealment source is wired")
	}
}

func TestPerceiveNilTarget(t *testing.T) {
	if det := Perceive(DefaultConfig(), Vec3{}, nil, nil); det.Acquired {
		t.Fatalf("expected nil target to be undetected")
	}
}

func TestPerceiveRangeSweep(t *testing.T) {
	cfg := DefaultConfig()
	for _, state := range []MovementState{MovementNormal, MovementCrouching} {
		limit := EffectiveRange(cfg, state)
		for d := 0.0; d <= 2*cfg.DetectionRange; d += 0.25 {
			target := &fakeTarget{pos: Vec3{X: d}, state: state}
			got := Perceive(cfg, Vec3{}, target, target).Acquired
			if want := d <= limit; got != want {
				t.Fatalf("state=%s distance=%v: expected acquired=%v, got %v", state, d, want, got)
			}
		}
	}
}
