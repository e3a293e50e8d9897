// Package config loads the TOML settings file that supplies routing and
// shape defaults and output options.
//
// A minimal file:
//
//	seed = 7
//
//	[route]
//	grid_size = 2
//	max_iterations = 5000
//
//	[shape]
//	radius = 0.5
//	rings = true
//
//	[output]
//	path = "plant.stl"
//	obstacles = true
//
// Keys not present keep their defaults. Unknown keys are an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/chazu/conduit/pkg/route"
	"github.com/chazu/conduit/pkg/scene"
	"github.com/chazu/conduit/pkg/shape"
)

// DefaultResolution is the marching cubes resolution used for obstacle
// previews.
const DefaultResolution = 100

// Output controls what gets written and how finely obstacles are meshed.
type Output struct {
	Path       string `toml:"path"`       // STL file; empty means derive from the script name
	Obstacles  bool   `toml:"obstacles"`  // include obstacle previews
	Resolution int    `toml:"resolution"` // cells along the longest obstacle axis
}

// Config is the contents of a settings file.
type Config struct {
	Seed   uint64       `toml:"seed"`
	Route  route.Config `toml:"route"`
	Shape  shape.Config `toml:"shape"`
	Output Output       `toml:"output"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Route:  route.DefaultConfig(),
		Shape:  shape.Default(),
		Output: Output{Resolution: DefaultResolution},
	}
}

// Parse decodes TOML settings on top of the defaults.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			keys := make([]string, len(serr.Errors))
			for i, e := range serr.Errors {
				keys[i] = strings.Join(e.Key(), ".")
			}
			return Config{}, fmt.Errorf("config: unknown keys %s", strings.Join(keys, ", "))
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("config: line %d, column %d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a settings file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return c, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error
	// Chaos needs a random source, which the scene derives from the seed.
	rc := c.Route
	if rc.Chaos != 0 {
		rc.Rand = route.NewRand(c.Seed)
	}
	if err := rc.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Shape.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Output.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("output resolution is %d, must be positive", c.Output.Resolution))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Save writes the settings as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Defaults returns the scene defaults described by the settings.
func (c Config) Defaults() scene.Defaults {
	return scene.Defaults{Route: c.Route, Shape: c.Shape, Seed: c.Seed}
}
