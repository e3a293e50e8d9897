package shape

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative radius", func(c *Config) { c.Radius = -1 }},
		{"zero radius", func(c *Config) { c.Radius = 0 }},
		{"two edges", func(c *Config) { c.EdgeCount = 2 }},
		{"no segments", func(c *Config) { c.SegmentCount = 0 }},
		{"negative curvature", func(c *Config) { c.Curvature = -0.1 }},
		{"negative ring", func(c *Config) { c.RingThickness = -1 }},
		{"negative cap offset", func(c *Config) { c.CapOffset = -1 }},
		{"no pipes", func(c *Config) { c.PipesAmount = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestEffectiveRingThickness(t *testing.T) {
	c := Default()
	c.RingThickness = 2
	if got := c.EffectiveRingThickness(); got != 2 {
		t.Errorf("EffectiveRingThickness() = %f, want 2", got)
	}
	c.HasExtrusion = true
	if got := c.EffectiveRingThickness(); got != 0 {
		t.Errorf("EffectiveRingThickness() with extrusion = %f, want 0", got)
	}
}
