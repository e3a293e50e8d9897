package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// capsule is the SDF3 of a swept sphere between two points. sdfx has no
// primitive for an arbitrary segment, and the network uses these for the
// colliders of built pipes.
type capsule struct {
	a, b   v3.Vec
	radius float64
	bb     sdf.Box3
}

func newCapsule(a, b v3.Vec, radius float64) *capsule {
	r := v3.Vec{X: radius, Y: radius, Z: radius}
	return &capsule{
		a:      a,
		b:      b,
		radius: radius,
		bb:     sdf.Box3{Min: a.Min(b).Sub(r), Max: a.Max(b).Add(r)},
	}
}

// Evaluate returns the distance from p to the capsule surface.
func (c *capsule) Evaluate(p v3.Vec) float64 {
	ab := c.b.Sub(c.a)
	t := 0.0
	if l2 := ab.Dot(ab); l2 > 0 {
		t = math.Max(0, math.Min(1, p.Sub(c.a).Dot(ab)/l2))
	}
	return p.Sub(c.a.Add(ab.MulScalar(t))).Length() - c.radius
}

// BoundingBox returns the capsule's axis-aligned bounds.
func (c *capsule) BoundingBox() sdf.Box3 {
	return c.bb
}
