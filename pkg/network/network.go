// Package network manages a set of pipes sharing one obstacle world. Each
// built pipe becomes an obstacle for the pipes routed after it.
//
// A Network is not safe for concurrent use.
package network

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/scene"
	"github.com/chazu/conduit/pkg/shape"
)

// standoffCollider names the temporary capsules guarding anchors while a
// bundle is routed.
const standoffCollider = "standoff"

var (
	// ErrNoPipe is returned for a pipe index outside the network.
	ErrNoPipe = errors.New("network: no such pipe")
	// ErrNoPoint is returned for a point index outside a pipe.
	ErrNoPoint = errors.New("network: no such point")
	// ErrTooFewPoints is returned when a pipe would be left with fewer than
	// two points.
	ErrTooFewPoints = errors.New("network: a pipe needs at least two points")
)

// Network routes pipes through a World and meshes them.
type Network struct {
	// Route and Shape apply to pipes added from now on.
	Route route.Config
	Shape shape.Config

	// Logger receives path-failure notices. Nil discards them.
	Logger *log.Logger

	world *scene.World
	kern  kernel.Kernel
	pipes []*Pipe
}

// New returns an empty network routing through world. Capsule colliders for
// built pipes are made with k. A nil world starts from empty space.
func New(world *scene.World, k kernel.Kernel) *Network {
	if world == nil {
		world = scene.NewWorld()
	}
	return &Network{
		Route: route.DefaultConfig(),
		Shape: shape.Default(),
		world: world,
		kern:  k,
	}
}

// World returns the obstacle world, including the built pipes.
func (n *Network) World() *scene.World { return n.world }

// Pipes returns the pipes in insertion order.
func (n *Network) Pipes() []*Pipe { return n.pipes }

// Len returns the number of pipes.
func (n *Network) Len() int { return len(n.pipes) }

// AddPipe routes Shape.PipesAmount parallel pipes between two anchors. The
// bundle is spread across cross(normal, end-start) with GridSize between
// neighbouring pipes. It returns the new pipes and whether every one of them
// found a path; pipes that did not are still added along the direct
// connector.
func (n *Network) AddPipe(name string, start, end route.Anchor) ([]*Pipe, bool) {
	amount := max(n.Shape.PipesAmount, 1)
	width := float64(amount)*n.Shape.Radius + float64(amount-1)*n.Route.GridSize
	step := width / float64(amount)
	chord := end.Position.Sub(start.Position)
	startDir := across(start.Normal, chord)
	endDir := across(end.Normal, chord)

	type request struct{ start, end route.Anchor }
	requests := make([]request, amount)
	for i := range requests {
		offset := step * (float64(i) - float64(amount)/2 + 0.5)
		requests[i] = request{
			start: route.Anchor{Position: start.Position.Add(startDir.MulScalar(offset)), Normal: start.Normal},
			end:   route.Anchor{Position: end.Position.Add(endDir.MulScalar(offset)), Normal: end.Normal},
		}
	}

	for _, r := range requests {
		n.guard(r.start, n.Route.Height, n.Shape.Radius)
		n.guard(r.end, n.Route.Height, n.Shape.Radius)
	}
	defer n.world.Remove(standoffCollider)

	ok := true
	added := make([]*Pipe, 0, amount)
	for i, r := range requests {
		p := n.route(bundleName(name, i, amount, len(n.pipes)), r.start, r.end, n.Route, n.Shape)
		ok = ok && p.Found
		added = append(added, p)
	}
	return added, ok
}

// AddPolyline adds a pipe that follows points exactly.
func (n *Network) AddPolyline(name string, points []v3.Vec) (*Pipe, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("network: polyline %q has %d points: %w", name, len(points), ErrTooFewPoints)
	}
	p := &Pipe{
		ID:     uuid.New(),
		Name:   lo.Ternary(name != "", name, fmt.Sprintf("pipe-%d", len(n.pipes))),
		Points: slices.Clone(points),
		Found:  true,
		Route:  n.Route,
		Shape:  n.Shape,
	}
	n.pipes = append(n.pipes, p)
	n.collide(p)
	return p, nil
}

// InsertPoint adds a point after pointIndex: the midpoint of the following
// segment, or one unit along every axis past the last point.
func (n *Network) InsertPoint(pipeIndex, pointIndex int) error {
	p, err := n.pipe(pipeIndex)
	if err != nil {
		return err
	}
	if pointIndex < 0 || pointIndex >= len(p.Points) {
		return fmt.Errorf("network: pipe %q point %d: %w", p.Name, pointIndex, ErrNoPoint)
	}
	var at v3.Vec
	if pointIndex == len(p.Points)-1 {
		at = p.Points[pointIndex].Add(v3.Vec{X: 1, Y: 1, Z: 1})
	} else {
		at = geom.Lerp(p.Points[pointIndex], p.Points[pointIndex+1], 0.5)
	}
	p.Points = slices.Insert(p.Points, pointIndex+1, at)
	n.collide(p)
	return nil
}

// RemovePoint deletes one point of a pipe.
func (n *Network) RemovePoint(pipeIndex, pointIndex int) error {
	p, err := n.pipe(pipeIndex)
	if err != nil {
		return err
	}
	if pointIndex < 0 || pointIndex >= len(p.Points) {
		return fmt.Errorf("network: pipe %q point %d: %w", p.Name, pointIndex, ErrNoPoint)
	}
	if len(p.Points) <= 2 {
		return fmt.Errorf("network: pipe %q: %w", p.Name, ErrTooFewPoints)
	}
	p.Points = slices.Delete(p.Points, pointIndex, pointIndex+1)
	n.collide(p)
	return nil
}

// RemovePipe deletes a pipe and its obstacle capsules.
func (n *Network) RemovePipe(pipeIndex int) error {
	p, err := n.pipe(pipeIndex)
	if err != nil {
		return err
	}
	n.world.Remove(p.collider())
	n.pipes = slices.Delete(n.pipes, pipeIndex, pipeIndex+1)
	return nil
}

// RegeneratePaths reroutes every pipe between its current end points, using
// the first and last segments as anchor normals. Pipes are rerouted in order
// with the same configuration they were built with. It reports whether every
// pipe found a path.
func (n *Network) RegeneratePaths() bool {
	old := n.pipes
	n.Clear()

	for _, p := range old {
		start, end := p.anchors()
		n.guard(start, p.Route.Height, p.Shape.Radius)
		n.guard(end, p.Route.Height, p.Shape.Radius)
	}
	defer n.world.Remove(standoffCollider)

	ok := true
	for _, p := range old {
		start, end := p.anchors()
		ok = n.route(p.Name, start, end, p.Route, p.Shape).Found && ok
	}
	return ok
}

// Clear removes every pipe. Obstacles that are not pipes stay in the world.
func (n *Network) Clear() {
	for _, p := range n.pipes {
		n.world.Remove(p.collider())
	}
	n.pipes = nil
}

// Mesh meshes every pipe into one buffer. Each pipe contributes a "<name>/body"
// group and, with a separate rings material, a "<name>/rings" group, so
// materials alternate body, rings per pipe. Pipes that fail to mesh are
// skipped and reported in the joined error.
func (n *Network) Mesh() (*kernel.Mesh, error) {
	out := &kernel.Mesh{PartName: "pipes"}
	var errs []error
	for _, p := range n.pipes {
		m, err := p.Mesh()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.Append(m, 0)
	}
	return out, errors.Join(errs...)
}

// MaxCurvature returns half the longest segment over all pipes.
func (n *Network) MaxCurvature() float64 {
	return lo.Max(lo.Map(n.pipes, func(p *Pipe, _ int) float64 { return p.MaxCurvature() }))
}

func (n *Network) pipe(i int) (*Pipe, error) {
	if i < 0 || i >= len(n.pipes) {
		return nil, fmt.Errorf("network: pipe %d of %d: %w", i, len(n.pipes), ErrNoPipe)
	}
	return n.pipes[i], nil
}

// route creates one pipe, appends it and makes it an obstacle.
func (n *Network) route(name string, start, end route.Anchor, rc route.Config, sc shape.Config) *Pipe {
	r := route.Create(start, end, rc, n.world)
	if !r.Found {
		n.logf("network: no path for %s after %d iterations, using the direct connector", name, r.Stats.Iterations)
	}
	p := &Pipe{
		ID:     uuid.New(),
		Name:   name,
		Points: r.Points,
		Found:  r.Found,
		Stats:  r.Stats,
		Route:  rc,
		Shape:  sc,
	}
	n.pipes = append(n.pipes, p)
	n.collide(p)
	return p
}

// collide replaces the obstacle capsules of p with one per segment.
func (n *Network) collide(p *Pipe) {
	n.world.Remove(p.collider())
	if n.kern == nil {
		return
	}
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		if geom.Distance(a, b) == 0 {
			continue
		}
		n.world.Add(p.collider(), n.kern.Capsule(array(a), array(b), p.Shape.Radius))
	}
}

// guard adds a temporary capsule along the anchor normal that keeps other
// pipes off the stand-off leg. It stops short of the stand-off point so the
// search can still leave it sideways.
func (n *Network) guard(a route.Anchor, height, radius float64) {
	normal, ok := geom.Direction(a.Normal)
	half := height - 3*radius
	if !ok || half <= 0 || n.kern == nil {
		return
	}
	centre := a.Position.Add(normal.MulScalar(height / 2))
	leg := normal.MulScalar(math.Max(half-radius, 0))
	n.world.Add(standoffCollider, n.kern.Capsule(array(centre.Sub(leg)), array(centre.Add(leg)), math.Min(radius, half)))
}

func (n *Network) logf(format string, args ...any) {
	if n.Logger != nil {
		n.Logger.Printf(format, args...)
	}
}

// across returns the unit offset direction of a bundle: perpendicular to both
// the anchor normal and the chord when they are not parallel.
func across(normal, chord v3.Vec) v3.Vec {
	if d, ok := geom.Direction(normal.Cross(chord)); ok {
		return d
	}
	for _, axis := range []v3.Vec{geom.Right, geom.Up, geom.Forward} {
		if d, ok := geom.Direction(chord.Cross(axis)); ok {
			return d
		}
	}
	return geom.Right
}

func bundleName(name string, i, amount, seq int) string {
	switch {
	case name == "":
		return fmt.Sprintf("pipe-%d", seq)
	case amount > 1:
		return fmt.Sprintf("%s-%d", name, i)
	default:
		return name
	}
}

func array(v v3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
