package scene

import (
	"github.com/google/uuid"
)

// namespace seeds the name-based node identifiers.
var namespace = uuid.MustParse("6f1c9a52-3b0e-4d8e-9a57-2c4b8e1f0d33")

// NodeID identifies a node. IDs derived from the same path are equal, so
// re-evaluating a script yields the same identifiers.
type NodeID uuid.UUID

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives a NodeID from a node path such as "box/wall".
func NewNodeID(path string) NodeID {
	return NodeID(uuid.NewSHA1(namespace, []byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

func (id NodeID) String() string { return uuid.UUID(id).String() }

// Short returns the first eight hex digits of the ID.
func (id NodeID) Short() string { return id.String()[:8] }

// MarshalText encodes the ID in its canonical UUID form.
func (id NodeID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText decodes a canonical UUID.
func (id *NodeID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// NodeKind enumerates the types of nodes in a scene.
type NodeKind int

const (
	NodeObstacle  NodeKind = iota // solid the router must avoid
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping
	NodePipe                      // pipe to route and mesh
)

func (k NodeKind) String() string {
	switch k {
	case NodeObstacle:
		return "obstacle"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	case NodePipe:
		return "pipe"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of a scene.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// Label returns the node's name, or its short ID when unnamed.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
