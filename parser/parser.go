// Package parser turns a free-text equation into a solvex residual
// expression, semantically "expression = 0".
//
// Accepted syntax: the variable x, integer and decimal literals, the
// constants pi and e, the operators + - * / and ** (or ^) for powers,
// parentheses, and whitelisted function calls either bare or under the
// sympy./math. namespace prefixes, e.g. sqrt(x), sympy.sin(x),
// math.factorial(3). A single = splits the line into lhs and rhs; ==
// is rewritten to a subtraction; without either the whole line is the
// residual.
package parser

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/muazify/solvex"
)

// ParseError reports malformed or unrecognized input. It carries the
// byte offset into the (sub)expression being parsed.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}

func errAt(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Parser parses equations in one fixed variable.
type Parser struct {
	// Variable is the only symbol accepted in input. Defaults to "x".
	Variable string
}

func New() *Parser { return &Parser{Variable: "x"} }

// ParseEquation is shorthand for New().ParseEquation.
func ParseEquation(input string) (solvex.Expr, error) {
	return New().ParseEquation(input)
}

// ParseEquation converts one input line into the residual expression.
func (p *Parser) ParseEquation(input string) (solvex.Expr, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, errAt(0, "empty input")
	}
	if strings.Contains(input, "==") {
		// Logical equality typed by the user: a == b solves a - b = 0.
		return p.ParseExpr(strings.ReplaceAll(input, "==", "-"))
	}
	if idx := strings.Index(input, "="); idx >= 0 {
		lhs, err := p.ParseExpr(input[:idx])
		if err != nil {
			return nil, err
		}
		rhs, err := p.ParseExpr(input[idx+1:])
		if err != nil {
			return nil, err
		}
		return solvex.Eq(lhs, rhs).Residual(), nil
	}
	return p.ParseExpr(input)
}

// ParseExpr parses a single expression with no equals sign.
func (p *Parser) ParseExpr(input string) (solvex.Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	variable := p.Variable
	if variable == "" {
		variable = "x"
	}
	pr := &exprParser{toks: toks, variable: variable}
	expr, err := pr.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if t := pr.peek(); t.kind != tokEOF {
		return nil, errAt(t.pos, "unexpected %q", t.text)
	}
	return expr.Simplify(), nil
}

// ============================================================
// Lexer
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp     // + - * / ^ **
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			seenDot := false
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				if input[i] == '.' {
					if seenDot {
						return nil, errAt(i, "malformed number")
					}
					seenDot = true
				}
				i++
			}
			text := input[start:i]
			if text == "." {
				return nil, errAt(start, "malformed number")
			}
			toks = append(toks, token{tokNumber, text, start})
		case isIdentStart(c):
			start := i
			for i < len(input) && (isIdentStart(input[i]) || input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			toks = append(toks, token{tokIdent, input[start:i], start})
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '*':
			if i+1 < len(input) && input[i+1] == '*' {
				toks = append(toks, token{tokOp, "**", i})
				i += 2
			} else {
				toks = append(toks, token{tokOp, "*", i})
				i++
			}
		case c == '+' || c == '-' || c == '/' || c == '^':
			toks = append(toks, token{tokOp, string(c), i})
			i++
		case c == ',':
			return nil, errAt(i, "multi-argument calls are not supported")
		default:
			return nil, errAt(i, "unexpected character %q", string(c))
		}
	}
	toks = append(toks, token{tokEOF, "", len(input)})
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// ============================================================
// Pratt parser
// ============================================================

type exprParser struct {
	toks     []token
	idx      int
	variable string
}

func (p *exprParser) peek() token { return p.toks[p.idx] }

func (p *exprParser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}
	return t
}

func bindingPower(op string) int {
	switch op {
	case "+", "-":
		return 10
	case "*", "/":
		return 20
	case "**", "^":
		return 40
	}
	return 0
}

func (p *exprParser) parseBinary(minBP int) (solvex.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			break
		}
		bp := bindingPower(t.text)
		if bp == 0 || bp < minBP {
			break
		}
		p.next()
		// Exponentiation is right associative.
		nextBP := bp + 1
		if t.text == "**" || t.text == "^" {
			nextBP = bp
		}
		rhs, err := p.parseBinary(nextBP)
		if err != nil {
			return nil, err
		}
		switch t.text {
		case "+":
			lhs = solvex.AddOf(lhs, rhs)
		case "-":
			lhs = solvex.SubOf(lhs, rhs)
		case "*":
			lhs = solvex.MulOf(lhs, rhs)
		case "/":
			lhs = solvex.DivOf(lhs, rhs)
		case "**", "^":
			lhs = solvex.PowOf(lhs, rhs)
		}
	}
	return lhs, nil
}

func (p *exprParser) parseUnary() (solvex.Expr, error) {
	t := p.peek()
	if t.kind == tokOp {
		switch t.text {
		case "-":
			p.next()
			// Tighter than * so -x**2 keeps meaning -(x**2).
			inner, err := p.parseBinary(30)
			if err != nil {
				return nil, err
			}
			return solvex.MulOf(solvex.N(-1), inner), nil
		case "+":
			p.next()
			return p.parseUnary()
		}
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (solvex.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, errAt(t.pos, "malformed number %q", t.text)
		}
		return solvex.NRat(r), nil
	case tokIdent:
		return p.parseIdent(t)
	case tokLParen:
		inner, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, errAt(closing.pos, "expected ')'")
		}
		return inner, nil
	case tokEOF:
		return nil, errAt(t.pos, "unexpected end of input")
	}
	return nil, errAt(t.pos, "unexpected %q", t.text)
}

func (p *exprParser) parseIdent(t token) (solvex.Expr, error) {
	name := t.text
	// sympy.sqrt and math.sqrt address the same whitelist as bare sqrt.
	for _, prefix := range []string{"sympy.", "math."} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	if strings.Contains(name, ".") {
		return nil, errAt(t.pos, "unknown namespace in %q", t.text)
	}

	if p.peek().kind == tokLParen {
		ctor, ok := functions[name]
		if !ok {
			return nil, errAt(t.pos, "unknown function %q", t.text)
		}
		p.next()
		arg, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, errAt(closing.pos, "expected ')' after %s argument", name)
		}
		return ctor(arg), nil
	}

	switch name {
	case p.variable:
		return solvex.S(p.variable), nil
	case "pi":
		return solvex.NFloat(math.Pi), nil
	case "e":
		return solvex.NFloat(math.E), nil
	}
	return nil, errAt(t.pos, "unknown name %q", t.text)
}

var functions = map[string]func(solvex.Expr) solvex.Expr{
	"sqrt":      solvex.SqrtOf,
	"sin":       solvex.SinOf,
	"cos":       solvex.CosOf,
	"tan":       solvex.TanOf,
	"exp":       solvex.ExpOf,
	"ln":        solvex.LnOf,
	"log":       solvex.LnOf,
	"abs":       solvex.AbsOf,
	"asin":      solvex.AsinOf,
	"acos":      solvex.AcosOf,
	"atan":      solvex.AtanOf,
	"sinh":      solvex.SinhOf,
	"cosh":      solvex.CoshOf,
	"tanh":      solvex.TanhOf,
	"factorial": solvex.FactorialOf,
}
