// Package tube extrudes a framed path into a triangle mesh: the pipe body,
// optional rings around every corner, optional end caps and the extruded
// corner variant.
package tube

import (
	"errors"
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/conduit/pkg/frame"
	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/shape"
)

// ErrTooFewFrames is returned when a path has nothing to extrude.
var ErrTooFewFrames = errors.New("tube: need at least two frames")

// Group names used in generated meshes.
const (
	GroupBody  = "body"
	GroupRings = "rings"
)

// Material slots assigned to the groups.
const (
	MaterialBody  = 0
	MaterialRings = 1
)

// Build meshes path with the cross-section and decorations of cfg. Ring and
// cap geometry lands in a separate "rings" group on material slot 1 when
// cfg.SeparateRingsMaterial is set; otherwise everything is one "body" group.
func Build(path frame.Path, cfg shape.Config) (*kernel.Mesh, error) {
	body, rings, err := BuildParts(path, cfg)
	if err != nil {
		return nil, err
	}
	if rings.IsEmpty() {
		return body, nil
	}
	body.Append(rings, 0)
	if !cfg.SeparateRingsMaterial {
		body.Groups = []kernel.Group{{Name: GroupBody, Material: MaterialBody, Count: len(body.Indices)}}
	}
	return body, nil
}

// BuildParts meshes path into two buffers: the plain tube body and the
// decoration (rings, caps and extruded corners). The decoration mesh is empty
// when cfg asks for none.
func BuildParts(path frame.Path, cfg shape.Config) (body, rings *kernel.Mesh, err error) {
	if len(path.Frames) < 2 {
		return nil, nil, fmt.Errorf("tube: got %d frames: %w", len(path.Frames), ErrTooFewFrames)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("tube: %w", err)
	}

	b := newBuilder(path, cfg)
	extruded := cfg.HasRings && cfg.HasExtrusion

	var bodyBuf, ringBuf buffer
	b.sweep(&bodyBuf, cfg.Radius, func(s int) bool { return !extruded || !path.IsCurveSpan(s) })

	if extruded {
		b.extrusion(&ringBuf)
	} else if cfg.HasRings {
		for _, idx := range path.RingIndices {
			thickness := cfg.EffectiveRingThickness()
			start := path.Frames[idx].Advance(-thickness / 2)
			b.collar(&ringBuf, start, thickness, cfg.Radius+cfg.RingRadius)
		}
	}
	if cfg.HasCaps {
		first := path.Frames[0]
		last := path.Frames[len(path.Frames)-1]
		r := cfg.Radius + cfg.CapRadius
		b.collar(&ringBuf, first.Advance(cfg.CapOffset), cfg.CapThickness, r)
		b.collar(&ringBuf, last.Advance(-cfg.CapOffset-cfg.CapThickness), cfg.CapThickness, r)
	}

	ringMaterial := MaterialBody
	if cfg.SeparateRingsMaterial {
		ringMaterial = MaterialRings
	}
	return bodyBuf.mesh(GroupBody, MaterialBody), ringBuf.mesh(GroupRings, ringMaterial), nil
}

// builder holds the per-call state shared by the emitters.
type builder struct {
	path  frame.Path
	cfg   shape.Config
	edges int
	dirs  []v3.Vec  // local unit directions around the cross-section
	v     []float64 // V coordinate of each frame
}

func newBuilder(path frame.Path, cfg shape.Config) *builder {
	b := &builder{path: path, cfg: cfg, edges: cfg.EdgeCount}
	b.dirs = make([]v3.Vec, b.edges)
	for i := range b.dirs {
		theta := 2 * math.Pi * float64(i) / float64(b.edges)
		b.dirs[i] = v3.Vec{X: math.Sin(theta), Y: math.Cos(theta)}
	}

	b.v = make([]float64, len(path.Frames))
	for i := 1; i < len(path.Frames); i++ {
		b.v[i] = b.v[i-1] + geom.Distance(path.Frames[i].Position, path.Frames[i-1].Position)
	}
	if total := b.v[len(b.v)-1]; !cfg.WorldSpaceUV && total > 0 {
		for i := range b.v {
			b.v[i] /= total
		}
	}
	return b
}

// ring emits edges+1 vertices around f at the given radius, the last one a
// copy of the first carrying U = 1. It returns the index of the first.
func (b *builder) ring(buf *buffer, f frame.Frame, radius, v float64) uint32 {
	base := uint32(len(buf.positions))
	for i := 0; i <= b.edges; i++ {
		d := b.dirs[i%b.edges]
		buf.vertex(f.Point(d.MulScalar(radius)), f.Vector(d), float64(i)/float64(b.edges), v)
	}
	return base
}

// bridge connects two rings emitted by ring with outward-facing triangles.
func (b *builder) bridge(buf *buffer, cur, next uint32) {
	for i := uint32(0); i < uint32(b.edges); i++ {
		cA, cB := cur+i, cur+i+1
		nA, nB := next+i, next+i+1
		buf.triangle(cA, nA, cB)
		buf.triangle(cB, nA, nB)
	}
}

// sweep emits a ring per frame and bridges the spans keep accepts.
func (b *builder) sweep(buf *buffer, radius float64, keep func(span int) bool) {
	bases := make([]uint32, len(b.path.Frames))
	for i, f := range b.path.Frames {
		bases[i] = b.ring(buf, f, radius, b.v[i])
	}
	for s := 0; s < len(bases)-1; s++ {
		if keep(s) {
			b.bridge(buf, bases[s], bases[s+1])
		}
	}
}

// disc emits a flat fan across the cross-section at f, facing along the
// frame's forward axis when forward is set and against it otherwise.
func (b *builder) disc(buf *buffer, f frame.Frame, radius float64, forward bool) {
	normal := f.Forward()
	if !forward {
		normal = normal.MulScalar(-1)
	}
	base := uint32(len(buf.positions))
	scale := b.cfg.RingsUVScale
	for _, d := range b.dirs {
		buf.vertex(f.Point(d.MulScalar(radius)), normal, d.X*scale, d.Y*scale)
	}
	for i := uint32(1); i+1 < uint32(b.edges); i++ {
		if forward {
			buf.triangle(base, base+i+1, base+i)
		} else {
			buf.triangle(base, base+i, base+i+1)
		}
	}
}

// collar emits a short closed cylinder starting at start and running
// thickness units along its forward axis.
func (b *builder) collar(buf *buffer, start frame.Frame, thickness, radius float64) {
	end := start.Advance(thickness)
	lo := b.ring(buf, start, radius, 0)
	hi := b.ring(buf, end, radius, thickness)
	b.bridge(buf, lo, hi)
	b.disc(buf, start, radius, false)
	b.disc(buf, end, radius, true)
}

// extrusion re-emits every corner at the ring radius and closes each step
// between the body and the wider corner with a disc.
func (b *builder) extrusion(buf *buffer) {
	radius := b.cfg.Radius + b.cfg.RingRadius
	b.sweep(buf, radius, b.path.IsCurveSpan)
	for k := 0; k+1 < len(b.path.RingIndices); k += 2 {
		b.disc(buf, b.path.Frames[b.path.RingIndices[k]], radius, false)
		b.disc(buf, b.path.Frames[b.path.RingIndices[k+1]], radius, true)
	}
}
