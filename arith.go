package solvex

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf builds lhs - rhs.
func SubOf(lhs, rhs Expr) Expr { return AddOf(lhs, MulOf(N(-1), rhs)) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	symCoeffs := map[string]*Num{}
	symOrder := []string{}
	others := []Expr{}
	for _, t := range flat {
		switch v := t.(type) {
		case *Num:
			numAccum = numAdd(numAccum, v)
		case *Sym:
			if _, seen := symCoeffs[v.name]; !seen {
				symOrder = append(symOrder, v.name)
				symCoeffs[v.name] = N(0)
			}
			symCoeffs[v.name] = numAdd(symCoeffs[v.name], N(1))
		default:
			others = append(others, t)
		}
	}
	result := []Expr{}
	sort.Strings(symOrder)
	for _, name := range symOrder {
		coeff := symCoeffs[name]
		if coeff.IsZero() {
			continue
		}
		if coeff.IsOne() {
			result = append(result, S(name))
		} else {
			result = append(result, MulOf(coeff, S(name)))
		}
	}
	result = append(result, others...)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf builds num/denom as num * denom**-1.
func DivOf(num, denom Expr) Expr { return MulOf(num, PowOf(denom, N(-1))) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Stable factor order; keys precomputed so the comparator does not
	// re-render on every comparison.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		others[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base ** exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf lowers the square root to base**(1/2).
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}

	if bn, ok := base.(*Num); ok {
		// 0**0 and 0**negative stay symbolic; 0**positive collapses.
		if bn.IsZero() {
			if en, ok2 := exp.(*Num); ok2 && (en.IsZero() || en.IsNegative()) {
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		}
		if bn.IsOne() {
			return N(1)
		}
		if en, ok2 := exp.(*Num); ok2 {
			if folded, ok3 := foldNumPow(bn, en); ok3 {
				return folded
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		if merged, ok2 := mergeNestedPow(inner, exp); ok2 {
			return merged
		}
	}
	return &Pow{base: base, exp: exp}
}

// mergeNestedPow composes (a**b)**c into a**(b*c) only when that holds
// over the reals: an integer outer exponent, or an odd integer inner
// exponent. An even inner exponent erases the base's sign, so the merge
// goes through abs instead: (x**2)**(1/2) becomes abs(x).
func mergeNestedPow(inner *Pow, exp Expr) (Expr, bool) {
	if en, ok := exp.(*Num); ok && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp).Simplify()), true
	}
	bn, ok := inner.exp.(*Num)
	if !ok || !bn.IsInteger() {
		return nil, false
	}
	if bn.val.Num().Bit(0) == 1 {
		return PowOf(inner.base, MulOf(inner.exp, exp).Simplify()), true
	}
	merged := MulOf(inner.exp, exp).Simplify()
	if mn, ok2 := merged.(*Num); ok2 && mn.IsInteger() && mn.val.Num().Bit(0) == 0 {
		return PowOf(inner.base, merged), true
	}
	return PowOf(AbsOf(inner.base), merged), true
}

// foldNumPow folds numeric powers: small integer exponents exactly, and
// square roots of rationals by extracting perfect-square factors, so
// sqrt(8) becomes 2*sqrt(2) and sqrt(1/4) becomes 1/2.
func foldNumPow(base, exp *Num) (Expr, bool) {
	if exp.IsInteger() {
		e := exp.val.Num().Int64()
		if e >= -20 && e <= 20 {
			pos := e
			if pos < 0 {
				pos = -pos
			}
			result := N(1)
			for i := int64(0); i < pos; i++ {
				result = numMul(result, base)
			}
			if e < 0 {
				result = numRecip(result)
			}
			return result, true
		}
		return nil, false
	}
	if exp.val.Cmp(big.NewRat(1, 2)) != 0 || base.IsNegative() {
		return nil, false
	}
	num, numOk := intSqrt(base.val.Num())
	den, denOk := intSqrt(base.val.Denom())
	if numOk && denOk {
		return NRat(new(big.Rat).SetFrac(num, den)), true
	}
	if base.IsInteger() {
		if sq, rest := extractSquare(base.val.Num()); sq.Cmp(big.NewInt(1)) > 0 {
			return MulOf(NRat(new(big.Rat).SetInt(sq)), &Pow{
				base: NRat(new(big.Rat).SetInt(rest)),
				exp:  F(1, 2),
			}), true
		}
	}
	return nil, false
}

// extractSquare splits n into sq*sq * rest with sq maximal, for modest n.
func extractSquare(n *big.Int) (sq, rest *big.Int) {
	sq = big.NewInt(1)
	rest = new(big.Int).Set(n)
	if !rest.IsInt64() {
		return sq, rest
	}
	v := rest.Int64()
	out := int64(1)
	for d := int64(2); d*d <= v; d++ {
		for v%(d*d) == 0 {
			v /= d * d
			out *= d
		}
	}
	return big.NewInt(out), big.NewInt(v)
}

func (p *Pow) isSqrt() bool {
	en, ok := p.exp.(*Num)
	return ok && en.val.Cmp(big.NewRat(1, 2)) == 0
}

func (p *Pow) String() string {
	if p.isSqrt() {
		return "sqrt(" + p.base.String() + ")"
	}
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	}
	if _, ok := p.exp.(*Num); !ok {
		expStr = "(" + expStr + ")"
	} else if strings.Contains(expStr, "/") || strings.HasPrefix(expStr, "-") {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "**" + expStr
}

func (p *Pow) LaTeX() string {
	if p.isSqrt() {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if _, baseIsNum := p.base.(*Num); baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if folded, ok := foldNumPow(b, e); ok {
		if n, isNum := folded.(*Num); isNum {
			return n, true
		}
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }
