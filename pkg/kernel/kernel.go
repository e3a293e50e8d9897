// Package kernel defines the abstract geometry kernel interface and the
// triangle mesh type shared by obstacle previews and generated pipes. The
// sdfx implementation provides solid modeling behind this interface so the
// scene and routing layers never depend on a particular backend.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)

	// Distance returns the signed distance from p to the surface, negative
	// inside. Implementations may underestimate the true distance but must
	// never overestimate it.
	Distance(p [3]float64) float64
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	Sphere(radius float64) Solid
	Capsule(a, b [3]float64, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
