package frame

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/shape"
)

// ErrTooFewPoints is returned when a polyline cannot describe a pipe.
var ErrTooFewPoints = errors.New("frame: need at least two points")

// endClearance multiplies the ring thickness kept free next to the first and
// last polyline points, where caps sit.
const endClearance = 2.5

// tangentStep is the parameter offset of the forward-difference sample used
// to find a span's bending plane.
const tangentStep = 0.001

// carry is the state threaded from one span into the next.
type carry struct {
	prev   mgl64.Quat // orientation of the last emitted frame
	offset float64    // roll applied to the current span, radians
}

// Build frames the polyline points using the corner and thickness settings
// of cfg. The first frame sits on points[0] facing points[1], the last on the
// final point; every interior point becomes cfg.SegmentCount+1 frames along a
// rounded corner.
func Build(points []v3.Vec, cfg shape.Config) (Path, error) {
	if len(points) < 2 {
		return Path{}, fmt.Errorf("frame: got %d points: %w", len(points), ErrTooFewPoints)
	}
	segs := max(cfg.SegmentCount, 1)

	first, _ := geom.LookRotation(points[1].Sub(points[0]), geom.Up)
	path := Path{
		Frames:       make([]Frame, 0, 2+(len(points)-2)*(segs+1)),
		SegmentCount: segs,
	}
	path.Frames = append(path.Frames, Frame{Position: points[0], Rotation: first})

	c := carry{prev: first}
	for x := 1; x < len(points)-1; x++ {
		in, out := handles(points, x, cfg.Curvature, cfg.EffectiveRingThickness())
		var frames []Frame
		frames, c = corner(in, points[x], out, segs, c)
		path.RingIndices = append(path.RingIndices, len(path.Frames), len(path.Frames)+segs)
		path.Frames = append(path.Frames, frames...)
	}

	path.Frames = append(path.Frames, Frame{Position: points[len(points)-1], Rotation: c.prev})
	return path, nil
}

// handles returns the Bezier control points on the incoming and outgoing
// edges of interior point x. Handles sit curvature units from the corner
// unless the edge is too short, in which case they fall back toward the edge
// midpoint. Edges touching the polyline ends keep extra room for caps.
func handles(points []v3.Vec, x int, curvature, thickness float64) (in, out v3.Vec) {
	p := points[x]
	in = handle(p, points[x-1], curvature, thickness)
	out = handle(p, points[x+1], curvature, thickness)
	if x == 1 {
		in = endHandle(p, points[x-1], curvature, thickness)
	}
	if x == len(points)-2 {
		out = endHandle(p, points[x+1], curvature, thickness)
	}
	return in, out
}

func handle(p, neighbour v3.Vec, curvature, thickness float64) v3.Vec {
	d := p.Sub(neighbour)
	dir, _ := geom.Direction(d)
	if d.Length() > 2*curvature+thickness {
		return p.Sub(dir.MulScalar(curvature))
	}
	return geom.Lerp(p, neighbour, 0.5).Add(dir.MulScalar(thickness / 2))
}

func endHandle(p, end v3.Vec, curvature, thickness float64) v3.Vec {
	d := p.Sub(end)
	dir, _ := geom.Direction(d)
	if d.Length() > curvature+endClearance*thickness {
		return p.Sub(dir.MulScalar(curvature))
	}
	return end.Add(dir.MulScalar(endClearance * thickness))
}

// corner samples the quadratic Bezier in -> p -> out at segs+1 evenly spaced
// parameters. The span's roll is fixed at its first sample so that it lines
// up with c.prev, then applied to every sample.
func corner(in, p, out v3.Vec, segs int, c carry) ([]Frame, carry) {
	frames := make([]Frame, 0, segs+1)
	for s := 0; s <= segs; s++ {
		t := float64(s) / float64(segs)
		a, b := geom.Lerp(in, p, t), geom.Lerp(p, out, t)
		pos := geom.Lerp(a, b, t)

		rot := c.prev
		if naive, ok := orient(a, b, geom.Lerp(in, p, t+tangentStep), geom.Lerp(p, out, t+tangentStep), c.prev); ok {
			if s == 0 {
				c.offset = twist(naive, c.prev)
			}
			rot = geom.Roll(naive, c.offset)
		} else if s == 0 {
			c.offset = 0
		}

		frames = append(frames, Frame{Position: pos, Rotation: rot})
		c.prev = rot
	}
	return frames, c
}

// orient builds the unrolled orientation of a sample from its chord a->b and
// the chord one step further along. The up hint is the normal of the plane
// the two chords span, or prev's up when the chords are parallel. It returns
// false when the chord has no length.
func orient(a, b, aNext, bNext v3.Vec, prev mgl64.Quat) (mgl64.Quat, bool) {
	chord := b.Sub(a)
	if _, ok := geom.Direction(chord); !ok {
		return prev, false
	}
	up := chord.Cross(bNext.Sub(aNext))
	if _, ok := geom.Direction(up); !ok {
		up = geom.Rotate(prev, geom.Up)
	}
	return geom.LookRotation(chord, up)
}

// twist returns the roll about local +Z that brings naive closest to prev.
func twist(naive, prev mgl64.Quat) float64 {
	angle := geom.Angle(prev, naive)
	if angle == 0 {
		return 0
	}
	if geom.Angle(geom.Roll(naive, -angle), prev) < geom.Angle(geom.Roll(naive, angle), prev) {
		return -angle
	}
	return angle
}
