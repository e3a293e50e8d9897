package route

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// keyResolution is the spacing used to quantize node positions into map keys.
const keyResolution = 1e-3

// cellKey identifies a grid position within one search.
type cellKey [3]int64

func keyOf(p v3.Vec) cellKey {
	return cellKey{
		int64(math.Round(p.X / keyResolution)),
		int64(math.Round(p.Y / keyResolution)),
		int64(math.Round(p.Z / keyResolution)),
	}
}

// node is a grid point discovered during a search. Nodes refer to their
// predecessor by arena index.
type node struct {
	pos       v3.Vec
	g, h      float64
	parent    int // -1 for the start node
	via       int // direction index of the edge from parent, -1 for the start node
	closed    bool
	heapIndex int // position in the open set, -1 when not queued
}

func (n *node) f() float64 { return n.g + n.h }

// openSet is a container/heap priority queue of arena indices ordered by F,
// then H.
type openSet struct {
	arena *[]node
	items []int
}

func (q *openSet) Len() int { return len(q.items) }

func (q *openSet) Less(i, j int) bool {
	a, b := &(*q.arena)[q.items[i]], &(*q.arena)[q.items[j]]
	if fa, fb := a.f(), b.f(); fa != fb {
		return fa < fb
	}
	return a.h < b.h
}

func (q *openSet) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	(*q.arena)[q.items[i]].heapIndex = i
	(*q.arena)[q.items[j]].heapIndex = j
}

func (q *openSet) Push(x any) {
	idx := x.(int)
	(*q.arena)[idx].heapIndex = len(q.items)
	q.items = append(q.items, idx)
}

func (q *openSet) Pop() any {
	n := len(q.items)
	idx := q.items[n-1]
	q.items = q.items[:n-1]
	(*q.arena)[idx].heapIndex = -1
	return idx
}
