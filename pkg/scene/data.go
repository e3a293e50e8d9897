package scene

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/shape"
)

// ---------------------------------------------------------------------------
// Obstacles
// ---------------------------------------------------------------------------

// PrimitiveKind distinguishes between obstacle shapes.
type PrimitiveKind int

const (
	PrimBox      PrimitiveKind = iota // box with its minimum corner at the origin
	PrimSphere                        // sphere centred on the origin
	PrimCylinder                      // cylinder along Z centred on the origin
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimSphere:
		return "sphere"
	case PrimCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// ObstacleData describes a solid obstacle.
type ObstacleData struct {
	Prim   PrimitiveKind `json:"prim"`
	Size   v3.Vec        `json:"size,omitempty"`   // box extents
	Radius float64       `json:"radius,omitempty"` // sphere and cylinder
	Height float64       `json:"height,omitempty"` // cylinder
}

func (ObstacleData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to its children.
// Created by the (place ...) form. Only obstacles are moved; pipe anchors are
// always in world coordinates.
type TransformData struct {
	Translation *v3.Vec `json:"translation,omitempty"`
	Rotation    *v3.Vec `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping. Created by the (group ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Pipe
// ---------------------------------------------------------------------------

// PipeData requests a pipe. A pipe either routes between two anchors or, when
// Points is set, follows the given polyline as-is.
type PipeData struct {
	Start       v3.Vec   `json:"start"`
	StartNormal v3.Vec   `json:"start_normal"`
	End         v3.Vec   `json:"end"`
	EndNormal   v3.Vec   `json:"end_normal"`
	Points      []v3.Vec `json:"points,omitempty"`

	// Overrides of the scene defaults; nil means use the defaults.
	Route *route.Config `json:"route,omitempty"`
	Shape *shape.Config `json:"shape,omitempty"`
}

func (PipeData) nodeData() {}

// Routed reports whether the pipe needs the router.
func (d PipeData) Routed() bool {
	return len(d.Points) == 0
}
