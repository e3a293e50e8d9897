package tube

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/kernel"
)

// buffer accumulates one submesh in double precision.
type buffer struct {
	positions []v3.Vec
	normals   []v3.Vec
	uvs       [][2]float64
	indices   []uint32
}

// vertex appends a vertex and returns its index.
func (b *buffer) vertex(p, n v3.Vec, u, v float64) uint32 {
	b.positions = append(b.positions, p)
	b.normals = append(b.normals, n)
	b.uvs = append(b.uvs, [2]float64{u, v})
	return uint32(len(b.positions) - 1)
}

func (b *buffer) triangle(i, j, k uint32) {
	b.indices = append(b.indices, i, j, k)
}

// mesh converts the buffer to a kernel mesh with a single group.
func (b *buffer) mesh(group string, material int) *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, 3*len(b.positions)),
		Normals:  make([]float32, 0, 3*len(b.normals)),
		UVs:      make([]float32, 0, 2*len(b.uvs)),
		Indices:  append([]uint32(nil), b.indices...),
	}
	for i, p := range b.positions {
		n := b.normals[i]
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		m.UVs = append(m.UVs, float32(b.uvs[i][0]), float32(b.uvs[i][1]))
	}
	if len(m.Indices) > 0 {
		m.Groups = []kernel.Group{{Name: group, Material: material, Start: 0, Count: len(m.Indices)}}
	}
	return m
}
