// Package numeric is the approximate half of the solver pipeline: it
// compiles a solvex expression into a plain float64 function and runs
// an iterative root finder from an initial guess.
package numeric

import (
	"fmt"
	"math"

	"github.com/muazify/solvex"
)

// Options tunes FindRoot. Zero values select the defaults.
type Options struct {
	// Tolerance on |f(x)| for convergence. Default 1e-10.
	Tolerance float64
	// MaxIterations caps the refinement loop. Default 200.
	MaxIterations int
	// DerivStep is the relative step for finite-difference derivatives
	// when no analytic derivative is available. Default 1e-7.
	DerivStep float64
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-10
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = 200
	}
	if o.DerivStep <= 0 {
		o.DerivStep = 1e-7
	}
	return o
}

// Result reports a root-finding run in full: the last iterate is
// always returned, converged or not, and Message explains a failed
// run. Callers decide how much to trust a non-converged Root.
type Result struct {
	Root       float64 `json:"root"`
	Residual   float64 `json:"residual"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
	Message    string  `json:"message,omitempty"`
}

// Lambdify compiles expr into a float64 function of the named
// variable. It fails when other free symbols remain or when the tree
// applies a function the kernel cannot evaluate numerically.
func Lambdify(expr solvex.Expr, varName string) (func(float64) float64, error) {
	for name := range solvex.FreeSymbols(expr) {
		if name != varName {
			return nil, fmt.Errorf("lambdify: expression has free symbol %q besides %q", name, varName)
		}
	}
	return compile(expr, varName)
}

func compile(e solvex.Expr, varName string) (func(float64) float64, error) {
	switch v := e.(type) {
	case *solvex.Num:
		c := v.Float64()
		return func(float64) float64 { return c }, nil
	case *solvex.Sym:
		return func(x float64) float64 { return x }, nil
	case *solvex.Add:
		parts, err := compileAll(v.Terms(), varName)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 {
			acc := 0.0
			for _, p := range parts {
				acc += p(x)
			}
			return acc
		}, nil
	case *solvex.Mul:
		parts, err := compileAll(v.Factors(), varName)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 {
			acc := 1.0
			for _, p := range parts {
				acc *= p(x)
			}
			return acc
		}, nil
	case *solvex.Pow:
		base, err := compile(v.Base(), varName)
		if err != nil {
			return nil, err
		}
		exp, err := compile(v.Exponent(), varName)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return math.Pow(base(x), exp(x)) }, nil
	case *solvex.Func:
		name := v.FuncName()
		if !knownFunc(name) {
			return nil, fmt.Errorf("lambdify: no numeric form for %s", name)
		}
		arg, err := compile(v.Arg(), varName)
		if err != nil {
			return nil, err
		}
		return func(x float64) float64 { return applyFunc(name, arg(x)) }, nil
	}
	return nil, fmt.Errorf("lambdify: unsupported node %T", e)
}

func compileAll(exprs []solvex.Expr, varName string) ([]func(float64) float64, error) {
	out := make([]func(float64) float64, len(exprs))
	for i, e := range exprs {
		f, err := compile(e, varName)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func knownFunc(name string) bool {
	switch name {
	case "sin", "cos", "tan", "exp", "ln", "log", "abs",
		"asin", "acos", "atan", "sinh", "cosh", "tanh", "factorial":
		return true
	}
	return false
}

func applyFunc(name string, v float64) float64 {
	switch name {
	case "sin":
		return math.Sin(v)
	case "cos":
		return math.Cos(v)
	case "tan":
		return math.Tan(v)
	case "exp":
		return math.Exp(v)
	case "ln", "log":
		return math.Log(v)
	case "abs":
		return math.Abs(v)
	case "asin":
		return math.Asin(v)
	case "acos":
		return math.Acos(v)
	case "atan":
		return math.Atan(v)
	case "sinh":
		return math.Sinh(v)
	case "cosh":
		return math.Cosh(v)
	case "tanh":
		return math.Tanh(v)
	case "factorial":
		return math.Gamma(v + 1)
	}
	return math.NaN()
}

// FindRoot refines guess toward a zero of f with damped Newton steps,
// using df when provided and a central finite difference otherwise.
// When a Newton step stalls or the derivative vanishes it falls back
// to a secant step off the previous iterate.
func FindRoot(f func(float64) float64, df func(float64) float64, guess float64, opts Options) Result {
	opts = opts.withDefaults()

	x := guess
	fx := f(x)
	if math.IsNaN(fx) || math.IsInf(fx, 0) {
		return Result{Root: x, Residual: fx, Message: "function not evaluable at the initial guess"}
	}
	prevX, prevF := x, fx
	havePrev := false

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		if math.Abs(fx) <= opts.Tolerance {
			return Result{Root: x, Residual: fx, Iterations: iter - 1, Converged: true}
		}

		slope := math.NaN()
		if df != nil {
			slope = df(x)
		}
		if math.IsNaN(slope) || math.IsInf(slope, 0) || slope == 0 {
			if havePrev && fx != prevF {
				slope = (fx - prevF) / (x - prevX)
			} else {
				h := opts.DerivStep * (math.Abs(x) + 1)
				slope = (f(x+h) - f(x-h)) / (2 * h)
			}
		}
		if math.IsNaN(slope) || math.IsInf(slope, 0) || slope == 0 {
			return Result{
				Root: x, Residual: fx, Iterations: iter,
				Message: "derivative vanished; no further progress possible",
			}
		}

		step := fx / slope
		next := x - step
		fNext := f(next)
		// Damp the step until the residual stops growing, so wild
		// Newton jumps over poles do not run away.
		for damp := 0; damp < 8 && (math.IsNaN(fNext) || math.Abs(fNext) > 2*math.Abs(fx)); damp++ {
			step /= 2
			next = x - step
			fNext = f(next)
		}
		if math.IsNaN(fNext) || math.IsInf(fNext, 0) {
			return Result{
				Root: x, Residual: fx, Iterations: iter,
				Message: "iteration left the function's domain",
			}
		}

		prevX, prevF, havePrev = x, fx, true
		x, fx = next, fNext

		if math.Abs(x-prevX) <= opts.Tolerance*(math.Abs(x)+1) && math.Abs(fx) <= math.Sqrt(opts.Tolerance) {
			return Result{Root: x, Residual: fx, Iterations: iter, Converged: true}
		}
	}
	return Result{
		Root: x, Residual: fx, Iterations: opts.MaxIterations,
		Message: fmt.Sprintf("no convergence within %d iterations", opts.MaxIterations),
	}
}

// Solve lambdifies the residual and its symbolic derivative and runs
// FindRoot from the guess. Differentiation can leave a placeholder
// the compiler rejects (abs, factorial); the root finder then uses
// finite differences instead.
func Solve(expr solvex.Expr, varName string, guess float64, opts Options) (Result, error) {
	f, err := Lambdify(expr, varName)
	if err != nil {
		return Result{}, err
	}
	var df func(float64) float64
	if d, derr := Lambdify(solvex.Diff(expr, varName), varName); derr == nil {
		df = d
	}
	return FindRoot(f, df, guess, opts), nil
}
