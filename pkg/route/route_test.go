package route

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tolerance = 1e-6

// box is an axis-aligned obstacle used by the test oracles.
type box struct{ min, max v3.Vec }

func (b box) distance(p v3.Vec) float64 {
	dx := math.Max(math.Max(b.min.X-p.X, 0), p.X-b.max.X)
	dy := math.Max(math.Max(b.min.Y-p.Y, 0), p.Y-b.max.Y)
	dz := math.Max(math.Max(b.min.Z-p.Z, 0), p.Z-b.max.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ray returns the entry distance of the ray into b using the slab method.
func (b box) ray(origin, dir v3.Vec) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.min.X, b.min.Y, b.min.Z}
	hi := [3]float64{b.max.X, b.max.Y, b.max.Z}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo[i]-o[i])/d[i], (hi[i]-o[i])/d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin, tmax = math.Max(tmin, t1), math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// boxOracle samples swept spheres against a set of boxes and records every
// sweep it reports clear.
type boxOracle struct {
	boxes []box
	clear map[cellKey]bool
}

func newBoxOracle(boxes ...box) *boxOracle {
	return &boxOracle{boxes: boxes, clear: make(map[cellKey]bool)}
}

func (o *boxOracle) blocked(p v3.Vec, radius float64) bool {
	for _, b := range o.boxes {
		if b.distance(p) < radius {
			return true
		}
	}
	return false
}

func (o *boxOracle) Obstructed(from, to v3.Vec, radius float64) bool {
	const steps = 32
	for i := 0; i <= steps; i++ {
		p := from.Add(to.Sub(from).MulScalar(float64(i) / steps))
		if o.blocked(p, radius) {
			return true
		}
	}
	o.clear[keyOf(to)] = true
	return false
}

func (o *boxOracle) RayDistance(origin, dir v3.Vec, max float64) (float64, bool) {
	best, hit := max, false
	for _, b := range o.boxes {
		if t, ok := b.ray(origin, dir); ok && t <= best {
			best, hit = t, true
		}
	}
	return best, hit
}

// corridorOracle only allows movement along the +X axis between 0 and
// length, with walls at a fixed distance on either side.
type corridorOracle struct {
	length, wall float64
}

func (c corridorOracle) Obstructed(from, to v3.Vec, radius float64) bool {
	onAxis := func(p v3.Vec) bool {
		return math.Abs(p.Y) < tolerance && math.Abs(p.Z) < tolerance && p.X >= -tolerance && p.X <= c.length+tolerance
	}
	return !onAxis(from) || !onAxis(to)
}

func (c corridorOracle) RayDistance(origin, dir v3.Vec, max float64) (float64, bool) {
	if math.Abs(dir.Y) > 0.5 || math.Abs(dir.Z) > 0.5 {
		return c.wall, true
	}
	return 0, false
}

func vecEqual(a, b v3.Vec) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance && math.Abs(a.Z-b.Z) < tolerance
}

func pathEqual(a, b []v3.Vec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !vecEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestCreateRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	r := Create(
		Anchor{Position: v3.Vec{}, Normal: v3.Vec{Y: 1}},
		Anchor{Position: v3.Vec{X: 10}, Normal: v3.Vec{Y: 1}},
		cfg, OpenSpace{},
	)
	if !r.Found {
		t.Fatal("Create() did not find a path in open space")
	}
	want := []v3.Vec{{}, {Y: 5}, {X: 10, Y: 5}, {X: 10}}
	if !pathEqual(r.Points, want) {
		t.Errorf("Create() points = %v, want %v", r.Points, want)
	}
}

func TestCreateFallsBackToConnector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	r := Create(
		Anchor{Position: v3.Vec{}, Normal: v3.Vec{Y: 1}},
		Anchor{Position: v3.Vec{X: 30, Z: 12}, Normal: v3.Vec{Y: 1}},
		cfg, nil,
	)
	if r.Found {
		t.Fatal("Create() with no iterations reported a path")
	}
	want := []v3.Vec{{}, {Y: 5}, {X: 30, Y: 5, Z: 12}, {X: 30, Z: 12}}
	if !pathEqual(r.Points, want) {
		t.Errorf("Create() points = %v, want %v", r.Points, want)
	}
}

func TestFindPathStraight(t *testing.T) {
	tests := []struct {
		name    string
		target  v3.Vec
		heading v3.Vec
	}{
		{"along x", v3.Vec{X: 30}, v3.Vec{X: 1}},
		{"along -z", v3.Vec{Z: -24}, v3.Vec{}},
		{"up", v3.Vec{Y: 18}, v3.Vec{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := v3.Vec{}
			waypoints, _, ok := FindPath(start, tt.target, tt.heading, DefaultConfig(), OpenSpace{})
			if !ok {
				t.Fatal("FindPath() found no path")
			}
			full := append([]v3.Vec{start}, waypoints...)
			full = append(full, tt.target)
			if got := Simplify(full); len(got) != 2 {
				t.Errorf("simplified path = %v, want only the endpoints", got)
			}
		})
	}
}

func TestFindPathMaxIterationsZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	waypoints, stats, ok := FindPath(v3.Vec{}, v3.Vec{X: 12, Y: 6}, v3.Vec{}, cfg, OpenSpace{})
	if ok {
		t.Fatalf("FindPath() = %v, want no path", waypoints)
	}
	if stats.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", stats.Iterations)
	}
}

func TestFindPathIterationCap(t *testing.T) {
	// The target sits inside a solid block, so nothing can get near it.
	o := newBoxOracle(box{v3.Vec{X: 20, Y: -10, Z: -10}, v3.Vec{X: 40, Y: 10, Z: 10}})
	cfg := DefaultConfig()
	cfg.MaxIterations = 50
	_, stats, ok := FindPath(v3.Vec{}, v3.Vec{X: 30}, v3.Vec{}, cfg, o)
	if ok {
		t.Fatal("FindPath() reached an enclosed target")
	}
	if stats.Iterations > cfg.MaxIterations {
		t.Errorf("iterations = %d, exceeds cap %d", stats.Iterations, cfg.MaxIterations)
	}
	if stats.Iterations != cfg.MaxIterations {
		t.Errorf("iterations = %d, want the search to use the whole budget %d", stats.Iterations, cfg.MaxIterations)
	}
}

func TestFindPathSeededChaosIsReproducible(t *testing.T) {
	run := func() ([]v3.Vec, bool) {
		cfg := DefaultConfig()
		cfg.Chaos = 20
		cfg.Rand = NewRand(42)
		wp, _, ok := FindPath(v3.Vec{}, v3.Vec{X: 21, Y: 9, Z: -15}, v3.Vec{Y: 1}, cfg, OpenSpace{})
		return wp, ok
	}
	a, okA := run()
	b, okB := run()
	if okA != okB || !pathEqual(a, b) {
		t.Errorf("same seed gave different results: %v (%v) vs %v (%v)", a, okA, b, okB)
	}
}

func TestFindPathDetoursAroundObstacle(t *testing.T) {
	wall := box{v3.Vec{X: 10.5, Y: -4.5, Z: -4.5}, v3.Vec{X: 19.5, Y: 4.5, Z: 4.5}}
	o := newBoxOracle(wall)
	cfg := DefaultConfig()
	start, target := v3.Vec{}, v3.Vec{X: 30}

	waypoints, _, ok := FindPath(start, target, v3.Vec{X: 1}, cfg, o)
	if !ok {
		t.Fatal("FindPath() found no way around the wall")
	}
	if len(waypoints) < 2 {
		t.Fatalf("waypoints = %v, want a detour", waypoints)
	}
	for _, p := range waypoints {
		if !o.clear[keyOf(p)] {
			t.Errorf("waypoint %v was never reported clear by the oracle", p)
		}
		if wall.distance(p) < cfg.Radius {
			t.Errorf("waypoint %v is within the probe radius of the wall", p)
		}
	}
}

func TestFindPathCostGrowsWithObstacleWeight(t *testing.T) {
	o := corridorOracle{length: 30, wall: 4}
	prev := -1.0
	for _, w := range []float64{0, 0.5, 1, 5, 20} {
		cfg := DefaultConfig()
		cfg.NearObstaclesPriority = w
		_, stats, ok := FindPath(v3.Vec{}, v3.Vec{X: 30}, v3.Vec{X: 1}, cfg, o)
		if !ok {
			t.Fatalf("weight %v: no path through the corridor", w)
		}
		if stats.Cost < prev {
			t.Errorf("weight %v: cost %f is below cost %f of a smaller weight", w, stats.Cost, prev)
		}
		prev = stats.Cost
	}
}

func TestFindPathGridRotation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridRotationY = 45
	waypoints, _, ok := FindPath(v3.Vec{}, v3.Vec{X: 30, Z: 30}, v3.Vec{}, cfg, OpenSpace{})
	if !ok {
		t.Fatal("FindPath() found no path on a rotated grid")
	}
	// Rotated +Z points straight at the target, so the run never leaves x == z.
	for _, p := range waypoints {
		if math.Abs(p.X-p.Z) > 1e-3 || math.Abs(p.Y) > 1e-3 {
			t.Errorf("waypoint %v is off the diagonal", p)
		}
	}
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name string
		in   []v3.Vec
		want []v3.Vec
	}{
		{"empty", nil, []v3.Vec{}},
		{"single", []v3.Vec{{X: 1}}, []v3.Vec{{X: 1}}},
		{"straight", []v3.Vec{{}, {X: 1}, {X: 2}, {X: 5}}, []v3.Vec{{}, {X: 5}}},
		{"corner", []v3.Vec{{}, {X: 3}, {X: 6}, {X: 6, Y: 3}, {X: 6, Y: 6}}, []v3.Vec{{}, {X: 6}, {X: 6, Y: 6}}},
		{"duplicate", []v3.Vec{{}, {}, {Y: 2}}, []v3.Vec{{}, {Y: 2}}},
		{"zigzag", []v3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}, []v3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Simplify(tt.in); !pathEqual(got, tt.want) {
				t.Errorf("Simplify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	in := []v3.Vec{{}, {X: 2}, {X: 4}, {X: 4, Y: 1}, {X: 4, Y: 1}, {X: 4, Y: 5}, {X: 4, Y: 5, Z: 3}, {X: 4, Y: 5, Z: 9}}
	once := Simplify(in)
	twice := Simplify(once)
	if !pathEqual(once, twice) {
		t.Errorf("Simplify(Simplify(x)) = %v, want %v", twice, once)
	}
}

func TestSimplifyDoesNotModifyInput(t *testing.T) {
	in := []v3.Vec{{}, {X: 1}, {X: 2}}
	Simplify(in)
	if !vecEqual(in[1], v3.Vec{X: 1}) || len(in) != 3 {
		t.Errorf("input modified: %v", in)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	cfg := DefaultConfig()
	cfg.Chaos = 1
	if err := cfg.Validate(); err == nil {
		t.Error("chaos without a random source should not validate")
	}
	cfg.Rand = NewRand(1)
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	cfg.GridSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero grid size should not validate")
	}
}
