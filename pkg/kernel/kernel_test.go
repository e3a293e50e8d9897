package kernel

import "testing"

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

func (s *stubSolid) Distance(_ [3]float64) float64 { return 0 }

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{0, 0, 0},
		maxBB: [3]float64{x, y, z},
	}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) Sphere(radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -radius},
		maxBB: [3]float64{radius, radius, radius},
	}
}

func (k *stubKernel) Capsule(a, b [3]float64, radius float64) Solid {
	s := &stubSolid{}
	for i := range a {
		s.minBB[i] = min(a[i], b[i]) - radius
		s.maxBB[i] = max(a[i], b[i]) + radius
	}
	return s
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }
func (k *stubKernel) Rotate(s Solid, _, _, _ float64) Solid    { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(1, 1, 1)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}

func TestStubKernelCapsuleBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	lo, hi := k.Capsule([3]float64{0, 2, 0}, [3]float64{4, 0, 0}, 1).BoundingBox()
	if lo != [3]float64{-1, -1, -1} || hi != [3]float64{5, 3, 1} {
		t.Errorf("Capsule bounds = %v..%v, want [-1 -1 -1]..[5 3 1]", lo, hi)
	}
}

// --- Mesh composition ---

func triangle(offset float32) *Mesh {
	return &Mesh{
		Vertices: []float32{offset, 0, 0, offset + 1, 0, 0, offset, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:      []float32{0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
		Groups:   []Group{{Name: "body", Material: 0, Start: 0, Count: 3}},
	}
}

func TestMeshAppend(t *testing.T) {
	m := triangle(0)
	m.Append(triangle(5), 2)
	m.Append(nil, 0)

	if got := m.VertexCount(); got != 6 {
		t.Fatalf("VertexCount() = %d, want 6", got)
	}
	if got := len(m.UVs); got != 12 {
		t.Errorf("len(UVs) = %d, want 12", got)
	}
	wantIdx := []uint32{0, 1, 2, 3, 4, 5}
	for i, w := range wantIdx {
		if m.Indices[i] != w {
			t.Fatalf("Indices = %v, want %v", m.Indices, wantIdx)
		}
	}
	if len(m.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(m.Groups))
	}
	if g := m.Groups[1]; g.Start != 3 || g.Count != 3 || g.Material != 2 {
		t.Errorf("appended group = %+v, want start 3, count 3, material 2", g)
	}
	if got := m.Vertex(3); got != [3]float32{5, 0, 0} {
		t.Errorf("Vertex(3) = %v, want [5 0 0]", got)
	}
}

func TestMeshGroupIndices(t *testing.T) {
	m := triangle(0)
	m.Groups = []Group{{Name: "a", Start: 0, Count: 3}}
	if got := m.GroupIndices("a"); len(got) != 3 {
		t.Errorf("GroupIndices(a) = %v, want 3 indices", got)
	}
	if got := m.GroupIndices("missing"); got != nil {
		t.Errorf("GroupIndices(missing) = %v, want nil", got)
	}
}
