package numeric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muazify/solvex"
	"github.com/muazify/solvex/numeric"
)

func TestLambdify_Polynomial(t *testing.T) {
	x := solvex.S("x")
	expr := solvex.AddOf(solvex.PowOf(x, solvex.N(2)), solvex.N(-2))

	f, err := numeric.Lambdify(expr, "x")
	require.NoError(t, err)
	assert.InDelta(t, 7.0, f(3), 1e-12)
	assert.InDelta(t, -2.0, f(0), 1e-12)
}

func TestLambdify_Functions(t *testing.T) {
	f, err := numeric.Lambdify(solvex.SinOf(solvex.S("x")), "x")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, f(math.Pi/2), 1e-12)

	g, err := numeric.Lambdify(solvex.ExpOf(solvex.S("x")), "x")
	require.NoError(t, err)
	assert.InDelta(t, math.E, g(1), 1e-12)
}

func TestLambdify_ForeignSymbol(t *testing.T) {
	expr := solvex.AddOf(solvex.S("x"), solvex.S("y"))
	_, err := numeric.Lambdify(expr, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "free symbol")
}

func TestLambdify_DerivativePlaceholder(t *testing.T) {
	// abs has no closed-form derivative; its differentiated tree must
	// be rejected so the root finder switches to finite differences.
	expr := solvex.AbsOf(solvex.S("x"))
	_, err := numeric.Lambdify(solvex.Diff(expr, "x"), "x")
	require.Error(t, err)
}

func TestFindRoot_NewtonQuadratic(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	df := func(x float64) float64 { return 2 * x }

	res := numeric.FindRoot(f, df, 1.0, numeric.Options{})
	require.True(t, res.Converged, "message: %s", res.Message)
	assert.InDelta(t, math.Sqrt2, res.Root, 1e-9)
	assert.Less(t, math.Abs(res.Residual), 1e-9)
	assert.Greater(t, res.Iterations, 0)
}

func TestFindRoot_FiniteDifferences(t *testing.T) {
	f := func(x float64) float64 { return math.Cos(x) - x }

	res := numeric.FindRoot(f, nil, 1.0, numeric.Options{})
	require.True(t, res.Converged, "message: %s", res.Message)
	assert.InDelta(t, 0.7390851332151607, res.Root, 1e-6)
}

func TestFindRoot_NoRealRoot(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	df := func(x float64) float64 { return 2 * x }

	res := numeric.FindRoot(f, df, 1.0, numeric.Options{})
	assert.False(t, res.Converged)
	assert.NotEmpty(t, res.Message)
}

func TestFindRoot_BadGuess(t *testing.T) {
	f := func(x float64) float64 { return math.Log(x) }

	res := numeric.FindRoot(f, nil, -1.0, numeric.Options{})
	assert.False(t, res.Converged)
	assert.Contains(t, res.Message, "initial guess")
}

func TestSolve_Transcendental(t *testing.T) {
	// sin(x) = x/2 has the nonzero roots ±1.8954942670339809
	x := solvex.S("x")
	expr := solvex.AddOf(solvex.SinOf(x), solvex.MulOf(solvex.F(-1, 2), x))

	res, err := numeric.Solve(expr, "x", 1.0, numeric.Options{})
	require.NoError(t, err)
	require.True(t, res.Converged, "message: %s", res.Message)
	assert.InDelta(t, 1.8954942670339809, math.Abs(res.Root), 1e-6)
	assert.Less(t, math.Abs(math.Sin(res.Root)-res.Root/2), 1e-8)
}

func TestSolve_AbsUsesFiniteDifferences(t *testing.T) {
	// |x - 2| = 0: the symbolic derivative is unavailable, so the root
	// finder runs on finite differences alone.
	expr := solvex.AbsOf(solvex.AddOf(solvex.S("x"), solvex.N(-2)))

	res, err := numeric.Solve(expr, "x", 1.0, numeric.Options{})
	require.NoError(t, err)
	require.True(t, res.Converged, "message: %s", res.Message)
	assert.InDelta(t, 2.0, res.Root, 1e-8)
}

func TestSolve_RejectsForeignSymbols(t *testing.T) {
	expr := solvex.AddOf(solvex.S("x"), solvex.S("a"))
	_, err := numeric.Solve(expr, "x", 1.0, numeric.Options{})
	require.Error(t, err)
}

func TestOptions_CustomTolerance(t *testing.T) {
	f := func(x float64) float64 { return x*x - 2 }
	df := func(x float64) float64 { return 2 * x }

	res := numeric.FindRoot(f, df, 1.0, numeric.Options{Tolerance: 1e-4, MaxIterations: 50})
	require.True(t, res.Converged)
	assert.Less(t, math.Abs(res.Residual), 1e-4)
}
