package parser_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muazify/solvex"
	"github.com/muazify/solvex/parser"
)

func TestParseEquation_Residuals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quadratic", "x**2 - 5*x + 6 = 0", "x**2 + -5*x + 6"},
		{"linear", "1 + x = 4", "x + -3"},
		{"double equals", "1 + x == 4", "x + -3"},
		{"no equals sign", "x - 7", "x + -7"},
		{"caret power", "x^2 = 9", "x**2 + -9"},
		{"division", "x/2 = 3", "1/2*x + -3"},
		{"sqrt", "sqrt(x) = 5", "sqrt(x) + -5"},
		{"sympy prefix", "sympy.sqrt(x) = 5", "sqrt(x) + -5"},
		{"math prefix", "math.factorial(3) = x", "-1*x + 6"},
		{"unary minus", "-x**2 = 0", "-1*x**2"},
		{"unary plus", "+x = 2", "x + -2"},
		{"nested parens", "((x + 1)) = 2", "x + -1"},
		{"whitespace", "  x   +  1 =  2 ", "x + -1"},
		{"constant folds", "2**3**2 = x", "-1*x + 512"},
		{"decimal", "x = 2.5", "x + -5/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := parser.ParseEquation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestParseEquation_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"double caret", "x^^2 = 0"},
		{"empty", ""},
		{"blank", "   "},
		{"unknown name", "y + 1 = 0"},
		{"unknown function", "foo(x) = 0"},
		{"unknown namespace", "np.sqrt(x) = 0"},
		{"trailing operator", "2 + "},
		{"unclosed paren", "(x + 1 = 0"},
		{"malformed number", "1..2 = x"},
		{"two equals signs", "1 = 2 = 3"},
		{"stray character", "x ! 2"},
		{"comma argument", "max(x, 1) = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseEquation(tt.input)
			require.Error(t, err)
		})
	}
}

func TestParseEquation_ParseErrorDetails(t *testing.T) {
	_, err := parser.ParseEquation("x^^2")
	require.Error(t, err)

	var perr *parser.ParseError
	require.True(t, errors.As(err, &perr), "error should be a *ParseError, got %T", err)
	assert.GreaterOrEqual(t, perr.Pos, 0)
	assert.Contains(t, perr.Error(), "parse error at position")
}

func TestParseExpr_Precedence(t *testing.T) {
	expr, err := parser.New().ParseExpr("2*x**3")
	require.NoError(t, err)
	assert.Equal(t, "2*x**3", expr.String())
}

func TestParseExpr_PowerRightAssociative(t *testing.T) {
	expr, err := parser.New().ParseExpr("2**3**2")
	require.NoError(t, err)
	// 2**(3**2), not (2**3)**2
	assert.Equal(t, "512", expr.String())
}

func TestParseExpr_Constants(t *testing.T) {
	expr, err := parser.New().ParseExpr("pi")
	require.NoError(t, err)
	n, ok := expr.Eval()
	require.True(t, ok)
	assert.InDelta(t, math.Pi, n.Float64(), 1e-12)

	expr, err = parser.New().ParseExpr("e")
	require.NoError(t, err)
	n, ok = expr.Eval()
	require.True(t, ok)
	assert.InDelta(t, math.E, n.Float64(), 1e-12)
}

func TestParseExpr_FunctionWhitelist(t *testing.T) {
	for _, name := range solvex.FuncNames() {
		_, err := parser.New().ParseExpr(name + "(x)")
		assert.NoError(t, err, "function %s should parse", name)
	}
}

func TestParser_CustomVariable(t *testing.T) {
	p := &parser.Parser{Variable: "t"}

	expr, err := p.ParseEquation("t + 1 = 3")
	require.NoError(t, err)
	assert.Equal(t, "t + -2", expr.String())

	_, err = p.ParseEquation("x + 1 = 3")
	assert.Error(t, err, "x is not the configured variable")
}

func TestParseEquation_RoundTrip(t *testing.T) {
	inputs := []string{
		"x**2 - 5*x + 6 = 0",
		"sqrt(x) - 5",
		"sin(x) - x/2",
		"x**3 + 2*x - 1 = 0",
		"abs(x - 2) = 1",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := parser.ParseEquation(input)
			require.NoError(t, err)
			second, err := parser.New().ParseExpr(first.String())
			require.NoError(t, err)
			assert.True(t, first.Equal(second),
				"round trip changed %q into %q", first.String(), second.String())
		})
	}
}
