// Package shape defines the per-pipe shape parameters consumed by the
// framing and tube meshing stages.
package shape

import "fmt"

// Config describes the cross-section and decoration of a pipe. Ring and cap
// radii are extra radius added on top of Radius.
type Config struct {
	Radius       float64 `toml:"radius"`        // tube radius
	EdgeCount    int     `toml:"edge_count"`    // vertices per cross-section ring
	SegmentCount int     `toml:"segment_count"` // samples per rounded corner, minus one
	Curvature    float64 `toml:"curvature"`     // corner handle length

	HasRings      bool    `toml:"rings"`
	HasExtrusion  bool    `toml:"extrusion"` // draw rings as a thicker side wall over each corner
	RingThickness float64 `toml:"ring_thickness"`
	RingRadius    float64 `toml:"ring_radius"`

	HasCaps      bool    `toml:"caps"`
	CapThickness float64 `toml:"cap_thickness"`
	CapRadius    float64 `toml:"cap_radius"`
	CapOffset    float64 `toml:"cap_offset"`

	RingsUVScale          float64 `toml:"rings_uv_scale"`
	SeparateRingsMaterial bool    `toml:"separate_rings_material"`
	WorldSpaceUV          bool    `toml:"world_space_uv"` // V in world units instead of 0..1

	PipesAmount int `toml:"pipes_amount"` // parallel pipes per AddPipe call
}

// Default returns the stock pipe shape.
func Default() Config {
	return Config{
		Radius:        1,
		EdgeCount:     10,
		SegmentCount:  10,
		Curvature:     0.5,
		RingThickness: 1,
		RingRadius:    1.3,
		CapThickness:  1,
		CapRadius:     1.3,
		RingsUVScale:  1,
		PipesAmount:   1,
	}
}

// EffectiveRingThickness is the ring thickness reserved on each corner.
// Extruded rings take no extra room along the path.
func (c Config) EffectiveRingThickness() float64 {
	if c.HasExtrusion {
		return 0
	}
	return c.RingThickness
}

// HasDecorations reports whether rings or caps produce geometry.
func (c Config) HasDecorations() bool {
	return c.HasRings || c.HasCaps
}

// Validate checks the ranges the meshing stages rely on.
func (c Config) Validate() error {
	switch {
	case c.Radius <= 0:
		return fmt.Errorf("shape: radius is %.4f, must be positive", c.Radius)
	case c.EdgeCount < 3:
		return fmt.Errorf("shape: edge count is %d, must be at least 3", c.EdgeCount)
	case c.SegmentCount < 1:
		return fmt.Errorf("shape: segment count is %d, must be at least 1", c.SegmentCount)
	case c.Curvature < 0:
		return fmt.Errorf("shape: curvature is %.4f, must not be negative", c.Curvature)
	case c.RingThickness < 0 || c.RingRadius < 0:
		return fmt.Errorf("shape: ring thickness and radius must not be negative")
	case c.CapThickness < 0 || c.CapRadius < 0 || c.CapOffset < 0:
		return fmt.Errorf("shape: cap thickness, radius and offset must not be negative")
	case c.PipesAmount < 1:
		return fmt.Errorf("shape: pipes amount is %d, must be at least 1", c.PipesAmount)
	}
	return nil
}
