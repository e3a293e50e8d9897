package route

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/geom"
)

// Anchor is a route endpoint on a surface.
type Anchor struct {
	Position v3.Vec
	Normal   v3.Vec // surface normal; need not be unit length
}

// Standoff returns the anchor projected height units along its normal. An
// anchor without a usable normal is returned unchanged.
func (a Anchor) Standoff(height float64) v3.Vec {
	n, ok := geom.Direction(a.Normal)
	if !ok {
		return a.Position
	}
	return a.Position.Add(n.MulScalar(height))
}

// Route is the result of Create.
type Route struct {
	Points []v3.Vec // anchor, stand-off, waypoints, stand-off, anchor; simplified
	Found  bool     // false when the search gave up and Points is the direct connector
	Stats  Stats
}

// Create routes a pipe between two anchors. Both anchors are projected along
// their normals by cfg.Height and the search runs between the projected
// points, starting with the start normal as its heading. When no path is
// found the route falls back to the straight connector through both
// stand-off points.
func Create(start, end Anchor, cfg Config, oracle Oracle) Route {
	standA := start.Standoff(cfg.Height)
	standB := end.Standoff(cfg.Height)

	waypoints, stats, found := FindPath(standA, standB, start.Normal, cfg, oracle)

	points := make([]v3.Vec, 0, len(waypoints)+4)
	points = append(points, start.Position, standA)
	points = append(points, waypoints...)
	points = append(points, standB, end.Position)

	return Route{
		Points: Simplify(dedupe(points)),
		Found:  found,
		Stats:  stats,
	}
}

// dedupe removes consecutive duplicate points, which appear when an anchor
// has no normal or a stand-off lands on a waypoint.
func dedupe(points []v3.Vec) []v3.Vec {
	out := points[:0:0]
	for i, p := range points {
		if i > 0 && geom.Distance(p, out[len(out)-1]) < 1e-9 {
			continue
		}
		out = append(out, p)
	}
	return out
}
