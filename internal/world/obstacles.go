package world

import (
	"fmt"
	"math/rand"

	"github.com/paulmach/orb"

	"stealth-guard/server/internal/guard"
)

const (
	ObstacleMinSize     = 1.0
	ObstacleMaxSize     = 4.0
	ObstacleSpawnMargin = 2.0
)

// Obstacle is a blocking rectangle. Guards that walk into one bounce off it.
type Obstacle struct {
	ID    string    `json:"id"`
	Box   Box       `json:"box"`
	bound orb.Bound
}

func newObstacle(id string, box Box) Obstacle {
	return Obstacle{ID: id, Box: box, bound: box.Bound()}
}

// GenerateObstacles scatters count extra blocks using the seeded RNG. Blocks
// never overlap zones, guard spawns, existing obstacles or the player start.
func GenerateObstacles(rng *rand.Rand, cfg Config, existing []Obstacle, keepClear []guard.Vec3, count int) []Obstacle {
	if count <= 0 {
		return nil
	}
	obstacles := make([]Obstacle, 0, count)
	attempts := 0
	maxAttempts := count * 20
	for len(obstacles) < count && attempts < maxAttempts {
		attempts++

		width := RandomDistance(rng, ObstacleMinSize, ObstacleMaxSize)
		depth := RandomDistance(rng, ObstacleMinSize, ObstacleMaxSize)
		maxX := cfg.Width - ObstacleSpawnMargin - width
		maxZ := cfg.Height - ObstacleSpawnMargin - depth
		if maxX <= ObstacleSpawnMargin || maxZ <= ObstacleSpawnMargin {
			break
		}
		x := RandomDistance(rng, ObstacleSpawnMargin, maxX)
		z := RandomDistance(rng, ObstacleSpawnMargin, maxZ)
		box := Box{MinX: x, MinZ: z, MaxX: x + width, MaxZ: z + depth}
		candidate := box.Bound().Pad(cfg.BodyRadius * 2)

		if overlapsAny(candidate, cfg, existing, obstacles, keepClear) {
			continue
		}
		obstacles = append(obstacles, newObstacle(fmt.Sprintf("block-%d", len(existing)+len(obstacles)+1), box))
	}
	return obstacles
}

func overlapsAny(candidate orb.Bound, cfg Config, existing, generated []Obstacle, keepClear []guard.Vec3) bool {
	for _, zone := range cfg.Zones {
		if candidate.Intersects(zone.Polygon.Bound()) {
			return true
		}
	}
	for _, group := range [][]Obstacle{existing, generated} {
		for _, obs := range group {
			if candidate.Intersects(obs.bound) {
				return true
			}
		}
	}
	for _, p := range keepClear {
		if candidate.Contains(planarPoint(p)) {
			return true
		}
	}
	return false
}
