package sdfx

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/kernel"
)

// Triangles converts indexed meshes into sdfx triangles.
func Triangles(meshes ...*kernel.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			var tri sdf.Triangle3
			for j := 0; j < 3; j++ {
				v := m.Vertex(int(m.Indices[i+j]))
				tri[j] = v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
			}
			out = append(out, &tri)
		}
	}
	return out
}

// SaveSTL writes the meshes to a binary STL file.
func SaveSTL(path string, meshes ...*kernel.Mesh) error {
	tris := Triangles(meshes...)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: nothing to write to %s", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: write %s: %w", path, err)
	}
	return nil
}
