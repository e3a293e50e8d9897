package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/shape"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	c, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Route != route.DefaultConfig() || c.Shape != shape.Default() {
		t.Errorf("Parse(nil) = %+v, want defaults", c)
	}
	if c.Output.Resolution != DefaultResolution {
		t.Errorf("resolution = %d, want %d", c.Output.Resolution, DefaultResolution)
	}
}

func TestParseOverrides(t *testing.T) {
	src := `
seed = 7

[route]
grid_size = 2
chaos = 0.5
max_iterations = 5000

[shape]
radius = 0.5
rings = true
pipes_amount = 3

[output]
path = "plant.stl"
obstacles = true
`
	c, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed != 7 {
		t.Errorf("seed = %d, want 7", c.Seed)
	}
	if c.Route.GridSize != 2 || c.Route.Chaos != 0.5 || c.Route.MaxIterations != 5000 {
		t.Errorf("route = %+v", c.Route)
	}
	// Keys not in the file keep their defaults.
	if c.Route.Height != route.DefaultConfig().Height {
		t.Errorf("height = %f, want default", c.Route.Height)
	}
	if c.Shape.Radius != 0.5 || !c.Shape.HasRings || c.Shape.PipesAmount != 3 {
		t.Errorf("shape = %+v", c.Shape)
	}
	if c.Output.Path != "plant.stl" || !c.Output.Obstacles || c.Output.Resolution != DefaultResolution {
		t.Errorf("output = %+v", c.Output)
	}

	d := c.Defaults()
	if d.Seed != 7 || d.Route.GridSize != 2 || d.Shape.Radius != 0.5 {
		t.Errorf("Defaults() = %+v", d)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "[route\ngrid_size = 2", "line"},
		{"unknown key", "[route]\ngrid = 2", "grid"},
		{"unknown section", "[render]\nx = 1", "render"},
		{"wrong type", `[shape]
edge_count = "ten"`, "config"},
		{"invalid route", "[route]\ngrid_size = 0", "grid size"},
		{"invalid shape", "[shape]\nedge_count = 2", "edge"},
		{"invalid resolution", "[output]\nresolution = 0", "resolution"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("Parse() = nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conduit.toml")
	c := Default()
	c.Seed = 42
	c.Route.GridRotationY = 45
	c.Shape.HasCaps = true
	c.Output.Path = "out.stl"
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != c {
		t.Errorf("Load() = %+v, want %+v", got, c)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
