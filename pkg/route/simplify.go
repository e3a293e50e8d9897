package route

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/geom"
)

// Simplify removes interior points that are collinear with their neighbours,
// repeating until no point can be removed. Endpoints are always kept and the
// input slice is not modified.
func Simplify(points []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(points))
	copy(out, points)
	for {
		n := len(out)
		out = simplifyPass(out)
		if len(out) == n {
			return out
		}
	}
}

// simplifyPass drops collinear interior points in one left-to-right sweep,
// comparing each point against the last point kept.
func simplifyPass(points []v3.Vec) []v3.Vec {
	if len(points) < 3 {
		return points
	}
	kept := points[:1]
	for i := 1; i < len(points)-1; i++ {
		if geom.Collinear(kept[len(kept)-1], points[i], points[i+1]) {
			continue
		}
		kept = append(kept, points[i])
	}
	return append(kept, points[len(points)-1])
}
