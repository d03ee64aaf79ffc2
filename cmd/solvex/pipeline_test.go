package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muazify/solvex/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func solve(t *testing.T, line string) outcome {
	t.Helper()
	return solveLine(line, config.Default(), testLogger())
}

func TestSolveLine_ExactQuadratic(t *testing.T) {
	out := solve(t, "x**2 - 5*x + 6 = 0")
	require.Nil(t, out.parseErr)
	require.Equal(t, methodExact, out.Method)
	require.Len(t, out.Exact, 2)
	assert.Equal(t, "2", out.Exact[0].Value)
	assert.Equal(t, "3", out.Exact[1].Value)
	assert.InDelta(t, 2.0, out.Exact[0].Approx, 1e-12)
	assert.InDelta(t, 3.0, out.Exact[1].Approx, 1e-12)
	assert.Nil(t, out.Numeric)
}

func TestSolveLine_Linear(t *testing.T) {
	out := solve(t, "1 + x = 4")
	require.Equal(t, methodExact, out.Method)
	require.Len(t, out.Exact, 1)
	assert.Equal(t, "3", out.Exact[0].Value)
}

func TestSolveLine_IrrationalRoots(t *testing.T) {
	out := solve(t, "x**2 = 2")
	require.Equal(t, methodExact, out.Method)
	require.Len(t, out.Exact, 2)
	assert.Equal(t, "sqrt(2)", out.Exact[1].Value)
	assert.InDelta(t, math.Sqrt2, out.Exact[1].Approx, 1e-9)
}

func TestSolveLine_DoubleEqualsRewrite(t *testing.T) {
	out := solve(t, "x**2 == 4")
	require.Equal(t, methodExact, out.Method)
	require.Len(t, out.Exact, 2)
	assert.Equal(t, "-2", out.Exact[0].Value)
	assert.Equal(t, "2", out.Exact[1].Value)
}

func TestSolveLine_NoRealSolutions(t *testing.T) {
	out := solve(t, "x**2 + 1 = 0")
	assert.Equal(t, methodNone, out.Method)
	assert.Nil(t, out.Numeric, "a proven-empty set must not trigger the fallback")
}

func TestSolveLine_Identity(t *testing.T) {
	out := solve(t, "x = x")
	assert.Equal(t, methodIdentity, out.Method)
	assert.Nil(t, out.Numeric)
}

func TestSolveLine_Radical(t *testing.T) {
	out := solve(t, "sympy.sqrt(x) = 5")
	require.Equal(t, methodExact, out.Method)
	require.Len(t, out.Exact, 1)
	assert.Equal(t, "25", out.Exact[0].Value)
}

func TestSolveLine_NumericFallback(t *testing.T) {
	out := solve(t, "sin(x) - x/2 = 0")
	require.Equal(t, methodApproximate, out.Method, "message: %s", out.Message)
	require.NotNil(t, out.Numeric)
	r := out.Numeric.Root
	assert.InDelta(t, 1.8954942670339809, math.Abs(r), 1e-6)
	assert.Less(t, math.Abs(math.Sin(r)-r/2), 1e-8)
}

func TestSolveLine_CustomGuess(t *testing.T) {
	cfg := config.Default()
	cfg.Solver.InitialGuess = 0.7
	out := solveLine("cos(x) - x = 0", cfg, testLogger())
	require.Equal(t, methodApproximate, out.Method, "message: %s", out.Message)
	assert.InDelta(t, 0.7390851332151607, out.Numeric.Root, 1e-6)
}

func TestSolveLine_ParseError(t *testing.T) {
	out := solve(t, "x^^2 = 0")
	require.Error(t, out.parseErr)
	assert.Empty(t, out.Method)
}

func TestRenderOutcome_ParseErrorPropagates(t *testing.T) {
	out := solve(t, "x^^2 = 0")
	var buf bytes.Buffer
	err := renderOutcome(&buf, out, config.Output{})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestRenderOutcome_PlainExact(t *testing.T) {
	out := solve(t, "x**2 - 5*x + 6 = 0")
	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, config.Output{Plain: true}))

	text := buf.String()
	assert.Contains(t, text, "Exact solution(s):")
	assert.Contains(t, text, "x = 2")
	assert.Contains(t, text, "x = 3")
}

func TestRenderOutcome_PlainNoSolutions(t *testing.T) {
	out := solve(t, "x**2 + 1 = 0")
	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, config.Output{Plain: true}))
	assert.Contains(t, buf.String(), "No real solutions.")
}

func TestRenderOutcome_Approximate(t *testing.T) {
	out := solve(t, "sin(x) - x/2 = 0")
	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, config.Output{Plain: true}))
	assert.Contains(t, buf.String(), "Approximate solution: x ≈")
}

func TestRenderOutcome_JSON(t *testing.T) {
	out := solve(t, "1 + x = 4")
	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, config.Output{JSON: true}))

	var decoded struct {
		Input     string `json:"input"`
		Method    string `json:"method"`
		Solutions []struct {
			Value  string  `json:"value"`
			Approx float64 `json:"approx"`
		} `json:"solutions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "1 + x = 4", decoded.Input)
	assert.Equal(t, "exact", decoded.Method)
	require.Len(t, decoded.Solutions, 1)
	assert.Equal(t, "3", decoded.Solutions[0].Value)
}

func TestRenderOutcome_LaTeXColumn(t *testing.T) {
	out := solve(t, "x**2 = 2")
	var buf bytes.Buffer
	require.NoError(t, renderOutcome(&buf, out, config.Output{Plain: true, LaTeX: true}))
	assert.Contains(t, buf.String(), `\sqrt{2}`)
}

func TestRootCommand_SolvesArgument(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--plain", "1 + x = 4"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "x = 3")
}

func TestRootCommand_ParseErrorFails(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--plain", "x^^2 = 0"})

	require.Error(t, cmd.Execute())
}

func TestRootCommand_PromptsWithoutArgument(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader("1 + x = 4\n"))
	cmd.SetArgs([]string{"--plain"})

	require.NoError(t, cmd.Execute())
	text := buf.String()
	assert.Contains(t, text, "Equation Solver for 'x'")
	assert.Contains(t, text, "Enter equation:")
	assert.Contains(t, text, "x = 3")
}

func TestRootCommand_GuessFlag(t *testing.T) {
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--plain", "--guess", "0.5", "cos(x) - x = 0"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "x ≈ 0.73908513")
}
