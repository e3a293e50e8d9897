// Package tessellate walks a scene and produces triangle meshes using a
// geometry kernel: one mesh per obstacle and one combined mesh for every
// pipe, routed around the obstacles.
package tessellate

import (
	"fmt"
	"log"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/network"
	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/scene"
)

// cylinderSegments is passed to kernels that facet cylinders.
const cylinderSegments = 32

// transform is one (place ...) level.
type transform struct {
	translation v3.Vec
	rotation    v3.Vec // Euler angles in degrees
}

// transformStack accumulates spatial transforms during scene traversal.
type transformStack struct {
	levels []transform
}

func newTransformStack() *transformStack {
	return &transformStack{}
}

func (ts *transformStack) push(t transform) {
	ts.levels = append(ts.levels, t)
}

func (ts *transformStack) pop() {
	if len(ts.levels) > 0 {
		ts.levels = ts.levels[:len(ts.levels)-1]
	}
}

// apply places s by every transform on the stack, innermost first. Each
// level rotates before it translates.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) kernel.Solid {
	for i := len(ts.levels) - 1; i >= 0; i-- {
		t := ts.levels[i]
		if r := t.rotation; r != (v3.Vec{}) {
			s = k.Rotate(s, r.X, r.Y, r.Z)
		}
		if p := t.translation; p != (v3.Vec{}) {
			s = k.Translate(s, p.X, p.Y, p.Z)
		}
	}
	return s
}

// Options controls a tessellation.
type Options struct {
	// MeshObstacles asks for a preview mesh of every obstacle. Obstacles are
	// always added to the routing world.
	MeshObstacles bool
	// Logger receives routing notices. Nil discards them.
	Logger *log.Logger
}

// Result is the output of Tessellate.
type Result struct {
	Obstacles []*kernel.Mesh // one per placed obstacle, when requested
	Pipes     *kernel.Mesh   // every pipe, grouped per pipe
	Network   *network.Network
	Warnings  []string // pipes that fell back to the direct connector
}

// walker carries the state of one traversal.
type walker struct {
	s     *scene.Scene
	k     kernel.Kernel
	opts  Options
	world *scene.World
	ts    *transformStack
	seen  map[scene.NodeID]bool

	obstacles []*kernel.Mesh
	pipes     []*scene.Node // in traversal order
}

// Tessellate walks the scene, indexes every obstacle in a routing world,
// then routes and meshes every pipe in traversal order. Each pipe becomes an
// obstacle for the ones after it. The tessellator never mutates the scene.
func Tessellate(s *scene.Scene, k kernel.Kernel, opts Options) (*Result, error) {
	world := scene.NewWorld()
	if s == nil {
		return &Result{Pipes: &kernel.Mesh{}, Network: network.New(world, k)}, nil
	}

	w := &walker{
		s:     s,
		k:     k,
		opts:  opts,
		world: world,
		ts:    newTransformStack(),
		seen:  make(map[scene.NodeID]bool),
	}
	for _, rootID := range s.Roots {
		root := s.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walkNode(root); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}

	res := &Result{Obstacles: w.obstacles, Network: network.New(world, k)}
	res.Network.Logger = opts.Logger
	for _, n := range w.pipes {
		if warning := w.addPipe(res.Network, n); warning != "" {
			res.Warnings = append(res.Warnings, warning)
		}
	}

	pipes, err := res.Network.Mesh()
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	res.Pipes = pipes
	return res, nil
}

// walkNode recursively traverses a node and its children.
func (w *walker) walkNode(n *scene.Node) error {
	switch n.Kind {
	case scene.NodeObstacle:
		return w.handleObstacle(n)

	case scene.NodeTransform:
		return w.handleTransform(n)

	case scene.NodeGroup:
		return w.handleChildren(n)

	case scene.NodePipe:
		// Pipes are routed once every obstacle is known. A pipe reached
		// twice through shared parents is still built once.
		if !w.seen[n.ID] {
			w.seen[n.ID] = true
			w.pipes = append(w.pipes, n)
		}
		return nil

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// handleObstacle creates the solid for an obstacle node, indexes it and
// optionally meshes it.
func (w *walker) handleObstacle(n *scene.Node) error {
	data, ok := n.Data.(scene.ObstacleData)
	if !ok {
		return fmt.Errorf("obstacle node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	var solid kernel.Solid
	switch data.Prim {
	case scene.PrimBox:
		solid = w.k.Box(data.Size.X, data.Size.Y, data.Size.Z)
	case scene.PrimSphere:
		solid = w.k.Sphere(data.Radius)
	case scene.PrimCylinder:
		solid = w.k.Cylinder(data.Height, data.Radius, cylinderSegments)
	default:
		return fmt.Errorf("obstacle node %s has unknown primitive %v", n.ID.Short(), data.Prim)
	}
	solid = w.ts.apply(w.k, solid)
	w.world.Add("obstacle/"+n.Label(), solid)

	if !w.opts.MeshObstacles {
		return nil
	}
	mesh, err := w.k.ToMesh(solid)
	if err != nil {
		return fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	mesh.PartName = n.Label()
	w.obstacles = append(w.obstacles, mesh)
	return nil
}

// handleTransform pushes the transform, recurses into children, then pops.
func (w *walker) handleTransform(n *scene.Node) error {
	td, ok := n.Data.(scene.TransformData)
	if !ok {
		return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	var t transform
	if td.Translation != nil {
		t.translation = *td.Translation
	}
	if td.Rotation != nil {
		t.rotation = *td.Rotation
	}
	w.ts.push(t)
	defer w.ts.pop()
	return w.handleChildren(n)
}

// handleChildren recurses into children transparently.
func (w *walker) handleChildren(n *scene.Node) error {
	for _, child := range w.s.Children(n) {
		if err := w.walkNode(child); err != nil {
			return err
		}
	}
	return nil
}

// addPipe routes or places one pipe node and returns a warning when it
// could not be routed.
func (w *walker) addPipe(net *network.Network, n *scene.Node) string {
	d := n.Data.(scene.PipeData)
	net.Route = w.s.RouteConfig(n)
	net.Shape = w.s.ShapeConfig(n)

	if !d.Routed() {
		if _, err := net.AddPolyline(n.Label(), d.Points); err != nil {
			return err.Error()
		}
		return ""
	}

	pipes, ok := net.AddPipe(n.Label(),
		route.Anchor{Position: d.Start, Normal: d.StartNormal},
		route.Anchor{Position: d.End, Normal: d.EndNormal})
	if ok {
		return ""
	}
	var iterations int
	for _, p := range pipes {
		iterations = max(iterations, p.Stats.Iterations)
	}
	return fmt.Sprintf("pipe %q: no path found after %d iterations, using the direct connector", n.Label(), iterations)
}
