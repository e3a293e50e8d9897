package route

import v3 "github.com/deadsy/sdfx/vec/v3"

// ProbeDistance caps the rays cast when measuring distance to obstacles.
const ProbeDistance = 200

// Oracle answers the obstacle queries the search needs. Implementations own
// all spatial knowledge; the search never indexes geometry itself.
type Oracle interface {
	// Obstructed reports whether a sphere of the given radius swept from
	// one point to another touches an obstacle.
	Obstructed(from, to v3.Vec, radius float64) bool

	// RayDistance returns the distance to the first obstacle along dir
	// (a unit vector) from origin, or false when nothing is hit within max.
	RayDistance(origin, dir v3.Vec, max float64) (float64, bool)
}

// OpenSpace is an Oracle with no obstacles.
type OpenSpace struct{}

// Obstructed always reports a clear sweep.
func (OpenSpace) Obstructed(from, to v3.Vec, radius float64) bool { return false }

// RayDistance never hits.
func (OpenSpace) RayDistance(origin, dir v3.Vec, max float64) (float64, bool) { return 0, false }
