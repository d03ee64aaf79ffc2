package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muazify/solvex/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solvex.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Solver.InitialGuess)
	assert.Equal(t, 1e-10, cfg.Solver.Tolerance)
	assert.Equal(t, 200, cfg.Solver.MaxIterations)
	assert.False(t, cfg.Output.JSON)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[solver]
initial_guess = 2.5
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Solver.InitialGuess)
	assert.Equal(t, 1e-10, cfg.Solver.Tolerance)
	assert.Equal(t, 200, cfg.Solver.MaxIterations)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `
[solver]
initial_guess = -3.0
tolerance = 1e-8
max_iterations = 50

[output]
plain = true
latex = true
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, -3.0, cfg.Solver.InitialGuess)
	assert.Equal(t, 1e-8, cfg.Solver.Tolerance)
	assert.Equal(t, 50, cfg.Solver.MaxIterations)
	assert.True(t, cfg.Output.Plain)
	assert.True(t, cfg.Output.LaTeX)
	assert.False(t, cfg.Output.JSON)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, `[solver`)
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[solver]
tolerance = -1.0
`)
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Solver.MaxIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Solver.Tolerance = 0
	assert.Error(t, cfg.Validate())
}
