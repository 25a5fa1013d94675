package world

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"stealth-guard/server/internal/guard"
)

// ZoneKind classifies an area of the map by how it affects detection.
type ZoneKind string

const (
	ZoneSpawn ZoneKind = "spawn"
	ZoneEnd   ZoneKind = "end"
	ZoneCover ZoneKind = "cover"
)

// Zone is a named polygon on the ground plane.
type Zone struct {
	Name    string      `json:"name"`
	Kind    ZoneKind    `json:"kind"`
	Polygon orb.Polygon `json:"polygon"`
	bound   orb.Bound
}

func newZone(cfg ZoneConfig) Zone {
	return Zone{
		Name:    cfg.Name,
		Kind:    cfg.Kind,
		Polygon: cfg.Polygon,
		bound:   cfg.Polygon.Bound(),
	}
}

// Contains reports whether the point lies inside the zone, ignoring height.
func (z Zone) Contains(p guard.Vec3) bool {
	if len(z.Polygon) == 0 {
		return false
	}
	pt := planarPoint(p)
	if !z.bound.Contains(pt) {
		return false
	}
	return planar.PolygonContains(z.Polygon, pt)
}

// ZoneFlags records which kinds of zone a point falls into.
type ZoneFlags struct {
	Spawn bool `json:"spawn"`
	End   bool `json:"end"`
	Cover bool `json:"cover"`
}

// Classify evaluates every zone against the point.
func Classify(zones []Zone, p guard.Vec3) ZoneFlags {
	var flags ZoneFlags
	for _, zone := range zones {
		if !zone.Contains(p) {
			continue
		}
		switch zone.Kind {
		case ZoneSpawn:
			flags.Spawn = true
		case ZoneEnd:
			flags.End = true
		case ZoneCover:
			flags.Cover = true
		}
	}
	return flags
}

func planarPoint(p guard.Vec3) orb.Point {
	return orb.Point{p.X, p.Z}
}
