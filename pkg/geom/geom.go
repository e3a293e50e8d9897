// Package geom holds the small vector and rotation helpers shared by the
// routing and framing engines. Points are sdfx vectors; orientations are
// mathgl quaternions.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// CollinearEpsilon bounds the squared cross product magnitude below which
// three points are treated as lying on one line.
const CollinearEpsilon = 1e-4

// zeroLength is the length below which a direction is considered undefined.
const zeroLength = 1e-9

// Common axes.
var (
	Right   = v3.Vec{X: 1}
	Up      = v3.Vec{Y: 1}
	Forward = v3.Vec{Z: 1}
)

// Collinear reports whether a, b and c lie on one line.
func Collinear(a, b, c v3.Vec) bool {
	cr := b.Sub(a).Cross(c.Sub(a))
	return cr.Dot(cr) < CollinearEpsilon
}

// Distance returns |a - b|.
func Distance(a, b v3.Vec) float64 {
	return a.Sub(b).Length()
}

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Direction returns v normalized, or false when v has no usable length.
func Direction(v v3.Vec) (v3.Vec, bool) {
	l := v.Length()
	if l < zeroLength {
		return v3.Vec{}, false
	}
	return v.DivScalar(l), true
}

// SameDirection reports whether two unit vectors point the same way.
func SameDirection(a, b v3.Vec) bool {
	return a.Dot(b) > 1-1e-6
}

// ToMGL converts an sdfx vector to a mathgl vector.
func ToMGL(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMGL converts a mathgl vector to an sdfx vector.
func FromMGL(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Rotate applies q to v.
func Rotate(q mgl64.Quat, v v3.Vec) v3.Vec {
	return FromMGL(q.Rotate(ToMGL(v)))
}

// RotateY returns v rotated about the world +Y axis by deg degrees.
func RotateY(v v3.Vec, deg float64) v3.Vec {
	if deg == 0 {
		return v
	}
	q := mgl64.QuatRotate(mgl64.DegToRad(deg), mgl64.Vec3{0, 1, 0})
	return Rotate(q, v)
}

// LookRotation returns the rotation whose local +Z maps to forward and whose
// local +Y is as close to up as possible. It returns false when forward has
// no length. When up is parallel to forward another reference axis is used.
func LookRotation(forward, up v3.Vec) (mgl64.Quat, bool) {
	f, ok := Direction(forward)
	if !ok {
		return mgl64.QuatIdent(), false
	}
	r, ok := Direction(up.Cross(f))
	if !ok {
		ref := Up
		if math.Abs(f.Y) > 0.9 {
			ref = Forward
		}
		r, _ = Direction(ref.Cross(f))
	}
	u := f.Cross(r)
	m := mgl64.Mat3FromCols(ToMGL(r), ToMGL(u), ToMGL(f))
	return mgl64.Mat4ToQuat(m.Mat4()).Normalize(), true
}

// Angle returns the angle in radians of the rotation taking a to b.
func Angle(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Dot(b))
	if d >= 1 {
		return 0
	}
	return 2 * math.Acos(d)
}

// Roll rotates q about its own local +Z axis by angle radians.
func Roll(q mgl64.Quat, angle float64) mgl64.Quat {
	if angle == 0 {
		return q
	}
	return q.Mul(mgl64.QuatRotate(angle, mgl64.Vec3{0, 0, 1})).Normalize()
}
