package scene

import (
	"encoding/binary"
	"fmt"

	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/shape"
)

// Defaults contains scene-wide settings that pipes inherit.
type Defaults struct {
	Route route.Config `json:"route"`
	Shape shape.Config `json:"shape"`
	Seed  uint64       `json:"seed"` // chaos seed; pipes derive their own from it
}

// Scene is the data structure produced by script evaluation.
// Each evaluation produces a new scene; consumers treat it as read-only.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  Defaults          `json:"defaults"`
}

// New creates an empty Scene with default settings.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: Defaults{
			Route: route.DefaultConfig(),
			Shape: shape.Default(),
		},
	}
}

// AddNode adds a node to the scene. It does not check for duplicates.
func (s *Scene) AddNode(n *Node) {
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the scene.
func (s *Scene) AddRoot(id NodeID) {
	s.Roots = append(s.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Children returns the child nodes of the given node.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}

// RouteConfig returns the routing parameters for the pipe node n. When chaos
// is enabled the config carries a random source seeded from the scene seed
// and the node ID, so every pipe jitters reproducibly and independently.
func (s *Scene) RouteConfig(n *Node) route.Config {
	cfg := s.Defaults.Route
	if d, ok := n.Data.(PipeData); ok && d.Route != nil {
		cfg = *d.Route
	}
	if cfg.Chaos != 0 && cfg.Rand == nil {
		cfg.Rand = route.NewRand(s.Defaults.Seed ^ binary.LittleEndian.Uint64(n.ID[:8]))
	}
	return cfg
}

// ShapeConfig returns the shape parameters for the pipe node n.
func (s *Scene) ShapeConfig(n *Node) shape.Config {
	if d, ok := n.Data.(PipeData); ok && d.Shape != nil {
		return *d.Shape
	}
	return s.Defaults.Shape
}
