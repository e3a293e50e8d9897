package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, uvs has 2 floats per vertex and
// indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`         // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`          // [nx0,ny0,nz0, ...]
	UVs      []float32 `json:"uvs,omitempty"`    // [u0,v0, u1,v1, ...]
	Indices  []uint32  `json:"indices"`          // [i0,i1,i2, ...] triangles
	Groups   []Group   `json:"groups,omitempty"` // submeshes, in index order
	PartName string    `json:"partName"`         // scene node this came from
}

// Group is a contiguous run of triangles sharing one material slot.
type Group struct {
	Name     string `json:"name"`
	Material int    `json:"material"`
	Start    int    `json:"start"` // first index in Indices
	Count    int    `json:"count"` // number of indices
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Append copies the geometry of o onto the end of m, rebasing its indices
// and groups. Materials of o's groups are shifted by materialOffset.
func (m *Mesh) Append(o *Mesh, materialOffset int) {
	if o == nil {
		return
	}
	base := uint32(m.VertexCount())
	start := len(m.Indices)

	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	m.UVs = append(m.UVs, o.UVs...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, i+base)
	}
	for _, g := range o.Groups {
		g.Start += start
		g.Material += materialOffset
		m.Groups = append(m.Groups, g)
	}
}

// GroupIndices returns the index slice covered by the named group, or nil.
func (m *Mesh) GroupIndices(name string) []uint32 {
	for _, g := range m.Groups {
		if g.Name == name {
			return m.Indices[g.Start : g.Start+g.Count]
		}
	}
	return nil
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) [3]float32 {
	return [3]float32{m.Normals[3*i], m.Normals[3*i+1], m.Normals[3*i+2]}
}
