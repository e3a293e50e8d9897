package route

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Config holds the per-call routing parameters.
type Config struct {
	GridSize      float64 `toml:"grid_size"`       // distance between grid nodes
	Height        float64 `toml:"height"`          // anchor stand-off along the surface normal
	Radius        float64 `toml:"radius"`          // probe radius for swept-volume checks
	GridRotationY float64 `toml:"grid_rotation_y"` // degrees about world +Y
	MaxIterations int     `toml:"max_iterations"`  // node expansions before giving up

	Chaos                 float64 `toml:"chaos"`                   // amplitude of random cost jitter
	StraightPathPriority  float64 `toml:"straight_path_priority"`  // penalty per change of direction
	NearObstaclesPriority float64 `toml:"near_obstacles_priority"` // weight on distance to the nearest obstacle

	// Rand drives the chaos jitter. It must be set when Chaos is non-zero.
	Rand *rand.Rand `toml:"-" json:"-"`
}

// DefaultConfig returns the stock routing parameters.
func DefaultConfig() Config {
	return Config{
		GridSize:             3,
		Height:               5,
		Radius:               1,
		MaxIterations:        1000,
		StraightPathPriority: 10,
	}
}

// NewRand returns a deterministic random source for the chaos jitter.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Validate reports configuration values the search cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.GridSize <= 0 {
		errs = append(errs, fmt.Errorf("grid size is %.4f, must be positive", c.GridSize))
	}
	if c.Height < 0 {
		errs = append(errs, fmt.Errorf("height is %.4f, must not be negative", c.Height))
	}
	if c.Radius < 0 {
		errs = append(errs, fmt.Errorf("radius is %.4f, must not be negative", c.Radius))
	}
	if c.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("max iterations is %d, must not be negative", c.MaxIterations))
	}
	if c.Chaos < 0 {
		errs = append(errs, fmt.Errorf("chaos is %.4f, must not be negative", c.Chaos))
	}
	if c.Chaos != 0 && c.Rand == nil {
		errs = append(errs, errors.New("chaos is set but no random source was provided"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("route: invalid config: %w", err)
	}
	return nil
}
