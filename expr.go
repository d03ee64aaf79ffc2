// Package solvex is a small symbolic math kernel backing the solvex
// equation solver.
//
// Expressions are immutable trees over exact rational numbers
// (math/big.Rat). Simplification is deterministic and rule-based: terms
// and factors are flattened, sorted, and numerically folded, so two
// algebraically equal inputs built the same way print the same way.
// The kernel carries exactly what the solver pipeline needs: arithmetic
// nodes, a fixed set of named functions, differentiation (for the
// numeric fallback's derivative), and polynomial utilities used by the
// exact solver in solveset.go.
package solvex

import (
	"fmt"
	"math/big"
)

// Expr is an immutable symbolic expression.
type Expr interface {
	// Simplify returns a canonical, flattened form of the expression.
	Simplify() Expr
	// String renders the expression with ** for powers, e.g. "x**2 + -5*x + 6".
	String() string
	// LaTeX renders the expression for display.
	LaTeX() string
	// Sub substitutes value for every occurrence of the named variable.
	Sub(varName string, value Expr) Expr
	// Diff differentiates with respect to the named variable.
	Diff(varName string) Expr
	// Eval reduces the expression to a single number when it contains no
	// free variables and no unevaluable function applications.
	Eval() (*Num, bool)
	// Equal reports structural equality.
	Equal(other Expr) bool
}

// ============================================================
// Num — exact rational number
// ============================================================

// Num is an exact rational constant.
type Num struct{ val *big.Rat }

// N builds an integer constant.
func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F builds the fraction p/q.
func F(p, q int64) *Num {
	if q == 0 {
		panic("solvex: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat builds the exact rational equal to the given float64.
func NFloat(f float64) *Num {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		panic(fmt.Sprintf("solvex: non-finite float %v", f))
	}
	return &Num{val: r}
}

func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("solvex: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// intSqrt returns s with s*s == v and ok when v is a perfect square.
func intSqrt(v *big.Int) (*big.Int, bool) {
	if v.Sign() < 0 {
		return nil, false
	}
	s := new(big.Int).Sqrt(v)
	if new(big.Int).Mul(s, s).Cmp(v) == 0 {
		return s, true
	}
	return nil, false
}

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym          { return &Sym{name: name} }
func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) String() string     { return s.name }
func (s *Sym) LaTeX() string      { return s.name }
func (s *Sym) Eval() (*Num, bool) { return nil, false }
func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && s.name == o.name
}
func (s *Sym) Name() string { return s.name }

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}
