package guard

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectionRange = -1
	cfg.RotationSpeed = 0
	cfg.StationaryTimeout = math.NaN()

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, fragment := range []string{"detectionRange", "rotationSpeed", "stationaryTimeout"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected error to mention %s, got %v", fragment, err)
		}
	}
}

func TestValidateAcceptsRotationBeyondHalfTurn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRotation = 270
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected wide rotation range to validate, got %v", err)
	}

	cfg.MinRotation = 300
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected min above max to be rejected, got %v", err)
	}
}
