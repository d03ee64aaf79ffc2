package main

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleSolve_Exact(t *testing.T) {
	resp, status := handleSolve(solveRequest{Equation: "x**2 - 5*x + 6 = 0"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "exact", resp.Method)
	require.Len(t, resp.Solutions, 2)
	assert.Equal(t, "2", resp.Solutions[0].Value)
	assert.Equal(t, "3", resp.Solutions[1].Value)
}

func TestHandleSolve_NoRealSolutions(t *testing.T) {
	resp, status := handleSolve(solveRequest{Equation: "x**2 + 1 = 0"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "none", resp.Method)
	assert.Nil(t, resp.Numeric)
}

func TestHandleSolve_Approximate(t *testing.T) {
	resp, status := handleSolve(solveRequest{Equation: "sin(x) - x/2 = 0"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "approximate", resp.Method, "message: %s", resp.Message)
	require.NotNil(t, resp.Numeric)
	r := resp.Numeric.Root
	assert.Less(t, math.Abs(math.Sin(r)-r/2), 1e-8)
}

func TestHandleSolve_CustomGuess(t *testing.T) {
	guess := 0.5
	resp, status := handleSolve(solveRequest{Equation: "cos(x) - x = 0", Guess: &guess})
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Numeric)
	assert.InDelta(t, 0.7390851332151607, resp.Numeric.Root, 1e-6)
}

func TestHandleSolve_ParseError(t *testing.T) {
	resp, status := handleSolve(solveRequest{Equation: "x^^2 = 0"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleSolve_NonFiniteGuess(t *testing.T) {
	guess := math.Inf(1)
	_, status := handleSolve(solveRequest{Equation: "sin(x) - x/2 = 0", Guess: &guess})
	assert.Equal(t, http.StatusBadRequest, status)
}
