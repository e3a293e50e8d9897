// Package route finds obstacle-free pipe routes on a lazily expanded 3D grid
// and reduces them to minimal polylines.
package route

import (
	"container/heap"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/conduit/pkg/geom"
)

// heuristicWeight scales the straight-line distance used as H.
const heuristicWeight = 10

// Stats describes a finished search.
type Stats struct {
	Iterations int     // nodes expanded
	Nodes      int     // nodes discovered
	Cost       float64 // G of the accepted node, 0 when no path was found
}

// axes are the six unrotated grid directions.
var axes = [6]v3.Vec{
	{Y: 1}, {Y: -1},
	{X: -1}, {X: 1},
	{Z: 1}, {Z: -1},
}

// search is the state of one FindPath call. Nothing in it outlives the call.
type search struct {
	cfg      Config
	oracle   Oracle
	target   v3.Vec
	heading  v3.Vec // direction treated as incoming at the start node
	dirs     [6]v3.Vec
	priority float64

	nodes []node
	index map[cellKey]int
	open  openSet
}

// FindPath runs an A* search from start toward target over a grid of
// cfg.GridSize cells rotated by cfg.GridRotationY about +Y. A node within one
// grid cell of target ends the search. The returned waypoints exclude start,
// run toward target and skip points collinear with their neighbours.
//
// startDirection is the heading assumed at start when applying the
// straight-path priority. Not finding a path is a normal outcome reported by
// the boolean; the search never expands more than cfg.MaxIterations nodes.
func FindPath(start, target, startDirection v3.Vec, cfg Config, oracle Oracle) ([]v3.Vec, Stats, bool) {
	s := newSearch(start, target, startDirection, cfg, oracle)
	var stats Stats
	for s.open.Len() > 0 && stats.Iterations < cfg.MaxIterations {
		stats.Iterations++
		cur := heap.Pop(&s.open).(int)
		s.nodes[cur].closed = true

		if geom.Distance(s.nodes[cur].pos, target) <= cfg.GridSize {
			stats.Nodes = len(s.nodes)
			stats.Cost = s.nodes[cur].g
			return s.backtrack(cur), stats, true
		}
		s.expand(cur)
	}
	stats.Nodes = len(s.nodes)
	return nil, stats, false
}

func newSearch(start, target, startDirection v3.Vec, cfg Config, oracle Oracle) *search {
	if oracle == nil {
		oracle = OpenSpace{}
	}
	heading, _ := geom.Direction(startDirection)
	s := &search{
		cfg:      cfg,
		oracle:   oracle,
		target:   target,
		heading:  heading,
		priority: heuristic(start, target) / 100,
		index:    make(map[cellKey]int),
	}
	for i, a := range axes {
		s.dirs[i] = geom.RotateY(a, cfg.GridRotationY)
	}
	s.open.arena = &s.nodes

	root := s.add(start)
	s.nodes[root].h = heuristic(start, target)
	heap.Push(&s.open, root)
	return s
}

func heuristic(a, b v3.Vec) float64 {
	return geom.Distance(a, b) * heuristicWeight
}

// add registers a new node at p and returns its arena index.
func (s *search) add(p v3.Vec) int {
	idx := len(s.nodes)
	s.nodes = append(s.nodes, node{pos: p, parent: -1, via: -1, heapIndex: -1})
	s.index[keyOf(p)] = idx
	return idx
}

// expand relaxes every unobstructed neighbour of the node at cur.
func (s *search) expand(cur int) {
	from := s.nodes[cur].pos
	for d, dir := range s.dirs {
		to := from.Add(dir.MulScalar(s.cfg.GridSize))
		next, seen := s.index[keyOf(to)]
		if seen && s.nodes[next].closed {
			continue
		}
		if s.oracle.Obstructed(from, to, s.cfg.Radius) {
			continue
		}
		if !seen {
			next = s.add(to)
		}

		cost := s.nodes[cur].g + s.cfg.GridSize + s.shaping(cur, d, to)
		n := &s.nodes[next]
		queued := n.heapIndex >= 0
		if queued && cost >= n.g {
			continue
		}
		n.g = cost
		n.parent = cur
		n.via = d
		if queued {
			heap.Fix(&s.open, n.heapIndex)
			continue
		}
		n.h = heuristic(to, s.target)
		heap.Push(&s.open, next)
	}
}

// shaping returns the cost terms added on top of the grid step for moving
// from the node at cur along direction d to p.
func (s *search) shaping(cur, d int, p v3.Vec) float64 {
	var extra float64
	if s.turns(cur, d) {
		extra += s.cfg.StraightPathPriority * s.priority
	}
	if s.cfg.Chaos != 0 && s.cfg.Rand != nil {
		extra += (s.cfg.Rand.Float64()*2 - 1) * s.cfg.Chaos * s.priority
	}
	if s.cfg.NearObstaclesPriority != 0 {
		extra += s.cfg.NearObstaclesPriority * s.nearestObstacle(p) * s.priority / 10
	}
	return extra
}

// turns reports whether leaving cur along direction d changes direction.
func (s *search) turns(cur, d int) bool {
	via := s.nodes[cur].via
	if via < 0 {
		if s.heading == (v3.Vec{}) {
			return false
		}
		return !geom.SameDirection(s.heading, s.dirs[d])
	}
	return via != d
}

// nearestObstacle casts rays along the six world axes from p and returns the
// closest hit, or ProbeDistance when nothing is hit.
func (s *search) nearestObstacle(p v3.Vec) float64 {
	nearest := float64(ProbeDistance)
	for _, a := range axes {
		if d, ok := s.oracle.RayDistance(p, a, ProbeDistance); ok {
			nearest = math.Min(nearest, d)
		}
	}
	return nearest
}

// backtrack walks parent links from the accepted node back to the start,
// dropping points that lie on the line between the last kept point and
// their own predecessor.
func (s *search) backtrack(end int) []v3.Vec {
	var points []v3.Vec
	for cur := end; s.nodes[cur].parent >= 0; cur = s.nodes[cur].parent {
		n := s.nodes[cur]
		if len(points) == 0 || !geom.Collinear(points[len(points)-1], n.pos, s.nodes[n.parent].pos) {
			points = append(points, n.pos)
		}
	}
	return lo.Reverse(points)
}
