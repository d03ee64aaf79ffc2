// Package config loads optional solver settings from a TOML file and
// applies defaults field-wise. The CLI's flags override whatever the
// file provides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Solver contains tuning for the numerical fallback.
type Solver struct {
	InitialGuess  float64 `toml:"initial_guess"`
	Tolerance     float64 `toml:"tolerance"`
	MaxIterations int     `toml:"max_iterations"`
}

// Output controls result rendering.
type Output struct {
	Plain bool `toml:"plain"`
	JSON  bool `toml:"json"`
	LaTeX bool `toml:"latex"`
}

// Config is the root configuration document.
type Config struct {
	Solver Solver `toml:"solver"`
	Output Output `toml:"output"`
}

// Default returns the built-in configuration: guess 1.0, tolerance
// 1e-10, 200 iterations, table output.
func Default() Config {
	return Config{
		Solver: Solver{
			InitialGuess:  1.0,
			Tolerance:     1e-10,
			MaxIterations: 200,
		},
	}
}

// Load reads path and merges it over the defaults. An empty path means
// defaults only; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s does not exist", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	// Unmarshal over the defaults: absent keys keep their default value.
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the numeric solver cannot work with.
func (c Config) Validate() error {
	if math.IsNaN(c.Solver.InitialGuess) || math.IsInf(c.Solver.InitialGuess, 0) {
		return errors.New("solver.initial_guess must be finite")
	}
	if c.Solver.Tolerance <= 0 {
		return errors.New("solver.tolerance must be positive")
	}
	if c.Solver.MaxIterations <= 0 {
		return errors.New("solver.max_iterations must be positive")
	}
	return nil
}
