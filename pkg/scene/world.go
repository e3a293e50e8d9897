package scene

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/route"
)

const (
	// boundsPadding widens every indexed box so flat solids still intersect
	// queries.
	boundsPadding = 1e-3
	// minMarchStep keeps the swept-sphere march moving near grazing contacts.
	minMarchStep = 1e-3
	// hitEpsilon is how close a ray must get to a surface to count as a hit.
	hitEpsilon = 1e-4
	// maxTraceSteps bounds each sphere trace.
	maxTraceSteps = 256
)

// item is one indexed solid.
type item struct {
	name  string
	solid kernel.Solid
	rect  rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

// World is a spatial index of named obstacle solids. It answers the routing
// queries by sphere tracing the signed distance of every solid whose bounds
// meet the query. Several solids may share a name.
type World struct {
	tree   *rtreego.Rtree
	byName map[string][]*item
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{
		tree:   rtreego.NewTree(3, 5, 25),
		byName: make(map[string][]*item),
	}
}

// Add indexes a solid under name.
func (w *World) Add(name string, solid kernel.Solid) {
	lo, hi := solid.BoundingBox()
	it := &item{name: name, solid: solid, rect: rectOf(toVec(lo), toVec(hi), boundsPadding)}
	w.tree.Insert(it)
	w.byName[name] = append(w.byName[name], it)
}

// Remove drops every solid indexed under name and reports how many there were.
func (w *World) Remove(name string) int {
	items := w.byName[name]
	for _, it := range items {
		w.tree.Delete(it)
	}
	delete(w.byName, name)
	return len(items)
}

// Len returns the number of indexed solids.
func (w *World) Len() int {
	return w.tree.Size()
}

// Has reports whether any solid is indexed under name.
func (w *World) Has(name string) bool {
	return len(w.byName[name]) > 0
}

// Without returns an Oracle over the world that ignores the named solids.
func (w *World) Without(names ...string) route.Oracle {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	return view{w: w, skip: skip}
}

// Obstructed reports whether a sphere of the given radius swept from one
// point to the other touches any solid. Solids the sphere already touches at
// from are ignored, so a search can leave a point that sits against a surface.
func (w *World) Obstructed(from, to v3.Vec, radius float64) bool {
	return view{w: w}.Obstructed(from, to, radius)
}

// RayDistance returns the distance along dir to the nearest solid surface.
func (w *World) RayDistance(origin, dir v3.Vec, max float64) (float64, bool) {
	return view{w: w}.RayDistance(origin, dir, max)
}

// view is a World seen without some of its solids.
type view struct {
	w    *World
	skip map[string]bool
}

func (v view) candidates(a, b v3.Vec, pad float64) []kernel.Solid {
	var filters []rtreego.Filter
	if len(v.skip) > 0 {
		filters = append(filters, func(_ []rtreego.Spatial, obj rtreego.Spatial) (bool, bool) {
			return v.skip[obj.(*item).name], false
		})
	}
	found := v.w.tree.SearchIntersect(rectOf(a.Min(b), a.Max(b), pad), filters...)
	solids := make([]kernel.Solid, len(found))
	for i, s := range found {
		solids[i] = s.(*item).solid
	}
	return solids
}

func (v view) Obstructed(from, to v3.Vec, radius float64) bool {
	for _, s := range v.candidates(from, to, radius+boundsPadding) {
		if sweepHits(s, from, to, radius) {
			return true
		}
	}
	return false
}

func (v view) RayDistance(origin, dir v3.Vec, max float64) (float64, bool) {
	best, hit := max, false
	end := origin.Add(dir.MulScalar(max))
	for _, s := range v.candidates(origin, end, boundsPadding) {
		if d, ok := trace(s, origin, dir, best); ok && (!hit || d < best) {
			best, hit = d, true
		}
	}
	if !hit {
		return 0, false
	}
	return best, true
}

// sweepHits marches a sphere along the segment, stepping by the clearance
// the distance field guarantees. A sphere that starts in contact with s never
// hits it.
func sweepHits(s kernel.Solid, from, to v3.Vec, radius float64) bool {
	length := to.Sub(from).Length()
	start := distance(s, from) - radius
	if length == 0 || start <= 0 {
		return false
	}
	dir := to.Sub(from).MulScalar(1 / length)
	for t := math.Min(length, math.Max(start, minMarchStep)); ; {
		clearance := distance(s, from.Add(dir.MulScalar(t))) - radius
		if clearance <= 0 {
			return true
		}
		if t >= length {
			return false
		}
		t = math.Min(length, t+math.Max(clearance, minMarchStep))
	}
}

// trace sphere-traces a ray against s up to max.
func trace(s kernel.Solid, origin, dir v3.Vec, max float64) (float64, bool) {
	t := 0.0
	for range maxTraceSteps {
		d := distance(s, origin.Add(dir.MulScalar(t)))
		if d < hitEpsilon {
			return t, true
		}
		t += d
		if t > max {
			return 0, false
		}
	}
	return 0, false
}

func distance(s kernel.Solid, p v3.Vec) float64 {
	return s.Distance([3]float64{p.X, p.Y, p.Z})
}

func toVec(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

func rectOf(lo, hi v3.Vec, pad float64) rtreego.Rect {
	r, _ := rtreego.NewRectFromPoints(
		rtreego.Point{lo.X - pad, lo.Y - pad, lo.Z - pad},
		rtreego.Point{hi.X + pad, hi.Y + pad, hi.Z + pad},
	)
	return r
}
