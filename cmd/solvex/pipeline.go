package main

import (
	"log/slog"
	"math"

	"github.com/muazify/solvex"
	"github.com/muazify/solvex/numeric"
	"github.com/muazify/solvex/parser"

	"github.com/muazify/solvex/internal/config"
)

// The whole program solves for this one variable.
const variable = "x"

// Methods an outcome can report.
const (
	methodExact       = "exact"
	methodApproximate = "approximate"
	methodNone        = "none"
	methodIdentity    = "identity"
	methodFailed      = "failed"
)

// residualCloseTol bounds |f(root)| for a numeric result to count as
// an approximate solution rather than a caveated one.
const residualCloseTol = 1e-8

type exactSolution struct {
	Value  string  `json:"value"`
	Approx float64 `json:"approx"`
	LaTeX  string  `json:"latex,omitempty"`
}

// outcome is everything the renderer needs for one solved equation.
type outcome struct {
	Input    string          `json:"input"`
	Residual string          `json:"residual"`
	Method   string          `json:"method"`
	Exact    []exactSolution `json:"solutions,omitempty"`
	Numeric  *numeric.Result `json:"numeric,omitempty"`
	Message  string          `json:"message,omitempty"`

	parseErr error
}

// solveLine runs the single pass of the pipeline:
// parse -> exact solve -> classify -> numeric fallback.
func solveLine(line string, cfg config.Config, logger *slog.Logger) outcome {
	expr, err := parser.ParseEquation(line)
	if err != nil {
		return outcome{Input: line, parseErr: err}
	}
	logger.Debug("parsed equation", "residual", expr.String())

	set := solvex.SolveSet(expr, variable)
	logger.Debug("symbolic solve finished", "kind", set.Kind.String(), "set", set.String())

	out := outcome{Input: line, Residual: set.Residual.String()}
	switch set.Kind {
	case solvex.SetFinite:
		out.Method = methodExact
		for _, v := range set.Values {
			sol := exactSolution{Value: v.String(), LaTeX: solvex.LaTeX(v)}
			if n, ok := v.Eval(); ok {
				sol.Approx = n.Float64()
			}
			out.Exact = append(out.Exact, sol)
		}
		return out
	case solvex.SetEmpty:
		// Proven absence of real roots: the fallback is not attempted.
		out.Method = methodNone
		out.Message = "no real solutions"
		return out
	case solvex.SetAllReals:
		out.Method = methodIdentity
		out.Message = "identity: every real x satisfies the equation"
		return out
	}

	logger.Debug("falling back to numerical root finding",
		"reason", set.Reason, "guess", cfg.Solver.InitialGuess)
	res, err := numeric.Solve(set.Residual, variable, cfg.Solver.InitialGuess, numeric.Options{
		Tolerance:     cfg.Solver.Tolerance,
		MaxIterations: cfg.Solver.MaxIterations,
	})
	if err != nil {
		out.Method = methodFailed
		out.Message = "numerical solving failed: " + err.Error()
		return out
	}
	out.Numeric = &res
	logger.Debug("numeric solve finished",
		"root", res.Root, "residual", res.Residual,
		"iterations", res.Iterations, "converged", res.Converged)

	switch {
	case res.Converged && math.Abs(res.Residual) <= residualCloseTol:
		out.Method = methodApproximate
	case res.Converged:
		out.Method = methodApproximate
		out.Message = "solver converged, but the result does not precisely satisfy the equation"
	default:
		out.Method = methodFailed
		out.Message = "numerical solver did not converge: " + res.Message
	}
	return out
}
