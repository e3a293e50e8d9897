// Package frame turns a polyline into a sequence of oriented cross-section
// frames. Corners are rounded with quadratic Bezier spans and each span is
// rolled so that consecutive frames never flip about their travel direction.
package frame

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/conduit/pkg/geom"
)

// Frame places one cross-section. Rotation maps local +Z to the direction of
// travel and local +Y to the section's up vector.
type Frame struct {
	Position v3.Vec
	Rotation mgl64.Quat
}

// Point maps a point in the frame's local space to world space.
func (f Frame) Point(local v3.Vec) v3.Vec {
	return geom.Rotate(f.Rotation, local).Add(f.Position)
}

// Vector maps a direction in the frame's local space to world space.
func (f Frame) Vector(local v3.Vec) v3.Vec {
	return geom.Rotate(f.Rotation, local)
}

func (f Frame) Forward() v3.Vec { return f.Vector(geom.Forward) }
func (f Frame) Up() v3.Vec      { return f.Vector(geom.Up) }
func (f Frame) Right() v3.Vec   { return f.Vector(geom.Right) }

// Advance returns the frame moved d units along its forward axis.
func (f Frame) Advance(d float64) Frame {
	f.Position = f.Position.Add(f.Forward().MulScalar(d))
	return f
}

// Path is the framed form of a polyline.
type Path struct {
	Frames []Frame

	// RingIndices lists the first and last frame of every rounded corner,
	// in order.
	RingIndices []int

	// SegmentCount is the number of Bezier steps per corner; each corner
	// contributes SegmentCount+1 frames.
	SegmentCount int
}

// Spans returns the number of gaps between consecutive frames.
func (p Path) Spans() int {
	if len(p.Frames) < 2 {
		return 0
	}
	return len(p.Frames) - 1
}

// IsCurveSpan reports whether span s, between frames s and s+1, lies inside
// a rounded corner rather than on a straight run.
func (p Path) IsCurveSpan(s int) bool {
	return s%(p.SegmentCount+1) != 0
}

// Length returns the total distance between consecutive frame positions.
func (p Path) Length() float64 {
	var l float64
	for i := 1; i < len(p.Frames); i++ {
		l += geom.Distance(p.Frames[i].Position, p.Frames[i-1].Position)
	}
	return l
}

// Positions returns the frame positions in order.
func (p Path) Positions() []v3.Vec {
	out := make([]v3.Vec, len(p.Frames))
	for i, f := range p.Frames {
		out[i] = f.Position
	}
	return out
}
