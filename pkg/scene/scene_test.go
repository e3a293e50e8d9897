package scene

import (
	"encoding/json"
	"testing"

	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/shape"
)

func TestNewNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("pipe/main")
	b := NewNodeID("pipe/main")
	c := NewNodeID("pipe/other")
	if a != b {
		t.Errorf("same path gave %s and %s", a, b)
	}
	if a == c {
		t.Errorf("different paths gave the same ID %s", a)
	}
	if a.IsZero() {
		t.Error("NewNodeID returned the zero ID")
	}
	if got := len(a.Short()); got != 8 {
		t.Errorf("len(Short()) = %d, want 8", got)
	}
}

func TestNodeIDTextRoundTrip(t *testing.T) {
	id := NewNodeID("obstacle/wall")
	data, err := json.Marshal(map[string]NodeID{"id": id})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]NodeID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["id"] != id {
		t.Errorf("got %s, want %s", got["id"], id)
	}
}

func TestSceneLookup(t *testing.T) {
	s := New()
	wallID := NewNodeID("obstacle/wall")
	rootID := NewNodeID("group/root")
	s.AddNode(&Node{ID: wallID, Kind: NodeObstacle, Name: "wall", Data: ObstacleData{Prim: PrimSphere, Radius: 1}})
	s.AddNode(&Node{ID: rootID, Kind: NodeGroup, Children: []NodeID{wallID, NewNodeID("missing")}, Data: GroupData{}})
	s.AddRoot(rootID)

	if n := s.Lookup("wall"); n == nil || n.ID != wallID {
		t.Errorf("Lookup(wall) = %v", n)
	}
	if n := s.Lookup("nope"); n != nil {
		t.Errorf("Lookup(nope) = %v, want nil", n)
	}
	if got := s.Children(s.Get(rootID)); len(got) != 1 || got[0].ID != wallID {
		t.Errorf("Children() = %v, want [wall]", got)
	}
	if s.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", s.NodeCount())
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup did not panic")
		}
	}()
	New().MustLookup("ghost")
}

func TestPipeConfigOverrides(t *testing.T) {
	s := New()
	s.Defaults.Route.GridSize = 4

	n := &Node{ID: NewNodeID("pipe/a"), Kind: NodePipe, Data: PipeData{}}
	if got := s.RouteConfig(n).GridSize; got != 4 {
		t.Errorf("default GridSize = %f, want 4", got)
	}
	if got := s.ShapeConfig(n); got != shape.Default() {
		t.Errorf("default shape = %+v", got)
	}

	rc := route.DefaultConfig()
	rc.GridSize = 7
	sc := shape.Default()
	sc.Radius = 3
	n.Data = PipeData{Route: &rc, Shape: &sc}
	if got := s.RouteConfig(n).GridSize; got != 7 {
		t.Errorf("override GridSize = %f, want 7", got)
	}
	if got := s.ShapeConfig(n).Radius; got != 3 {
		t.Errorf("override Radius = %f, want 3", got)
	}
}

func TestRouteConfigSeedsChaos(t *testing.T) {
	s := New()
	s.Defaults.Seed = 42
	s.Defaults.Route.Chaos = 1

	a := &Node{ID: NewNodeID("pipe/a"), Kind: NodePipe, Data: PipeData{}}
	b := &Node{ID: NewNodeID("pipe/b"), Kind: NodePipe, Data: PipeData{}}

	ra, ra2, rb := s.RouteConfig(a), s.RouteConfig(a), s.RouteConfig(b)
	if ra.Rand == nil || rb.Rand == nil {
		t.Fatal("chaos config without a random source")
	}
	if err := ra.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	x, x2, y := ra.Rand.Uint64(), ra2.Rand.Uint64(), rb.Rand.Uint64()
	if x != x2 {
		t.Error("same pipe drew different sequences")
	}
	if x == y {
		t.Error("different pipes drew the same sequence")
	}

	s.Defaults.Route.Chaos = 0
	if s.RouteConfig(a).Rand != nil {
		t.Error("random source set without chaos")
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{NodeObstacle.String(), "obstacle"},
		{NodeTransform.String(), "transform"},
		{NodeGroup.String(), "group"},
		{NodePipe.String(), "pipe"},
		{PrimBox.String(), "box"},
		{PrimSphere.String(), "sphere"},
		{PrimCylinder.String(), "cylinder"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
