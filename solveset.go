package solvex

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// SetKind classifies the real solution set of a residual expression.
type SetKind int

const (
	// SetFinite is a finite, non-empty set of closed-form values.
	SetFinite SetKind = iota
	// SetEmpty means the absence of real roots is proven.
	SetEmpty
	// SetAllReals means the residual is identically zero.
	SetAllReals
	// SetCondition means the set could not be finitely resolved; the
	// caller should fall back to numerical root finding.
	SetCondition
)

func (k SetKind) String() string {
	switch k {
	case SetFinite:
		return "finite"
	case SetEmpty:
		return "empty"
	case SetAllReals:
		return "reals"
	default:
		return "condition"
	}
}

// Set is the outcome of SolveSet. Values is populated only for
// SetFinite; Residual carries the simplified expression for the
// numeric fallback; Reason explains a SetCondition outcome.
type Set struct {
	Kind     SetKind
	Values   []Expr
	Residual Expr
	Reason   string
}

func (s Set) IsFinite() bool { return s.Kind == SetFinite }
func (s Set) IsEmpty() bool  { return s.Kind == SetEmpty }

func (s Set) String() string {
	switch s.Kind {
	case SetFinite:
		parts := make([]string, len(s.Values))
		for i, v := range s.Values {
			parts[i] = v.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case SetEmpty:
		return "{}"
	case SetAllReals:
		return "Reals"
	default:
		return "ConditionSet(" + s.Residual.String() + " = 0)"
	}
}

func finiteSet(residual Expr, values ...Expr) Set {
	sort.SliceStable(values, func(i, j int) bool {
		vi, iok := values[i].Eval()
		vj, jok := values[j].Eval()
		if iok && jok {
			return numCmp(vi, vj) < 0
		}
		return values[i].String() < values[j].String()
	})
	deduped := values[:0]
	for _, v := range values {
		if len(deduped) == 0 || !deduped[len(deduped)-1].Equal(v) {
			deduped = append(deduped, v)
		}
	}
	if len(deduped) == 0 {
		return Set{Kind: SetEmpty, Residual: residual}
	}
	return Set{Kind: SetFinite, Values: deduped, Residual: residual}
}

func conditionSet(residual Expr, reason string) Set {
	return Set{Kind: SetCondition, Residual: residual, Reason: reason}
}

// SolveSet computes the set of real values of varName satisfying
// expr = 0. Linear, quadratic, and rationally factorable polynomial
// residuals resolve exactly; a single isolated square root or absolute
// value is removed by squaring with candidate verification; everything
// else is reported as an unresolved ConditionSet for the numeric
// fallback.
func SolveSet(expr Expr, varName string) Set {
	residual := DeepSimplify(expr)

	if !ContainsVar(residual, varName) {
		if n, ok := residual.Eval(); ok {
			if n.IsZero() {
				return Set{Kind: SetAllReals, Residual: residual}
			}
			return Set{Kind: SetEmpty, Residual: residual}
		}
		return conditionSet(residual, "constant residual did not evaluate")
	}

	if IsPolynomial(residual, varName) {
		return solvePolySet(residual, varName)
	}
	if set, ok := solveRadical(residual, varName); ok {
		return set
	}
	if set, ok := solveAbs(residual, varName); ok {
		return set
	}
	return conditionSet(residual, "no finite closed form found")
}

// ============================================================
// Polynomial residuals
// ============================================================

func solvePolySet(residual Expr, varName string) Set {
	coeffs, ok := numericCoeffs(residual, varName)
	if !ok {
		return conditionSet(residual, "coefficients are not numeric")
	}
	deg := len(coeffs) - 1
	switch {
	case deg <= 0:
		// The variable cancelled during expansion.
		if coeffs[0].Sign() == 0 {
			return Set{Kind: SetAllReals, Residual: residual}
		}
		return Set{Kind: SetEmpty, Residual: residual}
	case deg == 1:
		root := new(big.Rat).Quo(new(big.Rat).Neg(coeffs[0]), coeffs[1])
		return finiteSet(residual, NRat(root))
	case deg == 2:
		return solveQuadraticSet(residual, coeffs)
	default:
		return solveHigherPolySet(residual, coeffs)
	}
}

// numericCoeffs returns dense coefficients c[0..deg] with c[deg] != 0,
// or ok=false when any coefficient carries another symbol.
func numericCoeffs(residual Expr, varName string) ([]*big.Rat, bool) {
	byDeg := PolyCoeffs(residual, varName)
	maxDeg := 0
	for d := range byDeg {
		if d > maxDeg {
			maxDeg = d
		}
	}
	out := make([]*big.Rat, maxDeg+1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for d, c := range byDeg {
		n, ok := c.Eval()
		if !ok {
			return nil, false
		}
		out[d] = n.Rat()
	}
	for len(out) > 1 && out[len(out)-1].Sign() == 0 {
		out = out[:len(out)-1]
	}
	return out, true
}

func solveQuadraticSet(residual Expr, c []*big.Rat) Set {
	a, b, c0 := c[2], c[1], c[0]
	if a.Sign() == 0 {
		return solvePolyTail(residual, c[:2])
	}
	// disc = b^2 - 4*a*c
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(new(big.Rat).SetInt64(4), new(big.Rat).Mul(a, c0)))
	twoA := new(big.Rat).Add(a, a)

	switch disc.Sign() {
	case -1:
		return Set{Kind: SetEmpty, Residual: residual}
	case 0:
		root := new(big.Rat).Quo(new(big.Rat).Neg(b), twoA)
		return finiteSet(residual, NRat(root))
	}

	negB := new(big.Rat).Neg(b)
	if sn, sd, perfect := ratSqrt(disc); perfect {
		sq := new(big.Rat).SetFrac(sn, sd)
		r1 := new(big.Rat).Quo(new(big.Rat).Add(negB, sq), twoA)
		r2 := new(big.Rat).Quo(new(big.Rat).Sub(negB, sq), twoA)
		return finiteSet(residual, NRat(r1), NRat(r2))
	}

	// Irrational roots stay symbolic: (-b ± sqrt(disc)) / (2a).
	sqrtDisc := SqrtOf(NRat(disc))
	r1 := DivOf(AddOf(NRat(negB), sqrtDisc), NRat(twoA)).Simplify()
	r2 := DivOf(AddOf(NRat(negB), MulOf(N(-1), sqrtDisc)), NRat(twoA)).Simplify()
	return finiteSet(residual, r1, r2)
}

func ratSqrt(r *big.Rat) (num, den *big.Int, ok bool) {
	num, nok := intSqrt(r.Num())
	den, dok := intSqrt(r.Denom())
	return num, den, nok && dok
}

// solveHigherPolySet peels rational roots off a degree >= 3 polynomial
// by the rational root theorem and synthetic division, finishing with
// the quadratic formula once the quotient is small enough.
func solveHigherPolySet(residual Expr, coeffs []*big.Rat) Set {
	ints, ok := integerCoeffs(coeffs)
	if !ok {
		if allEvenPositive(coeffs) {
			return Set{Kind: SetEmpty, Residual: residual}
		}
		return conditionSet(residual, "coefficients too large for exact factoring")
	}

	var roots []Expr
	work := ints
	for len(work)-1 > 2 {
		root, found := findRationalRoot(work)
		if !found {
			if len(roots) == 0 && allEvenPositiveInt(work) {
				return Set{Kind: SetEmpty, Residual: residual}
			}
			return conditionSet(residual, "polynomial has no further rational roots")
		}
		roots = append(roots, NRat(root))
		work = deflate(work, root)
	}

	tail := make([]*big.Rat, len(work))
	for i, c := range work {
		tail[i] = new(big.Rat).SetInt(c)
	}
	tailSet := solveQuadraticSet(residual, tail)
	switch tailSet.Kind {
	case SetFinite:
		roots = append(roots, tailSet.Values...)
	case SetEmpty, SetAllReals:
		// Quadratic remainder contributed nothing real.
	default:
		return tailSet
	}
	return finiteSet(residual, roots...)
}

func solvePolyTail(residual Expr, coeffs []*big.Rat) Set {
	if len(coeffs) >= 2 && coeffs[1].Sign() != 0 {
		root := new(big.Rat).Quo(new(big.Rat).Neg(coeffs[0]), coeffs[1])
		return finiteSet(residual, NRat(root))
	}
	if len(coeffs) >= 1 && coeffs[0].Sign() == 0 {
		return Set{Kind: SetAllReals, Residual: residual}
	}
	return Set{Kind: SetEmpty, Residual: residual}
}

// integerCoeffs scales rational coefficients to a primitive integer
// vector. Factoring is abandoned when any scaled value leaves int64
// range; the numeric fallback handles those.
func integerCoeffs(coeffs []*big.Rat) ([]*big.Int, bool) {
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Div(d, g))
	}
	out := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		v := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		out[i] = v.Num()
		if !out[i].IsInt64() {
			return nil, false
		}
	}
	return out, true
}

// findRationalRoot tries candidates p/q with p | constant and
// q | leading coefficient.
func findRationalRoot(coeffs []*big.Int) (*big.Rat, bool) {
	lead := coeffs[len(coeffs)-1]
	cons := coeffs[0]
	if cons.Sign() == 0 {
		return new(big.Rat), true
	}
	ps := divisors(cons.Int64())
	qs := divisors(lead.Int64())
	for _, p := range ps {
		for _, q := range qs {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*p, q)
				if polyEvalRat(coeffs, cand).Sign() == 0 {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

func divisors(n int64) []int64 {
	if n < 0 {
		n = -n
	}
	var out []int64
	for d := int64(1); d*d <= n && d <= 100000; d++ {
		if n%d == 0 {
			out = append(out, d)
			if other := n / d; other != d {
				out = append(out, other)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func polyEvalRat(coeffs []*big.Int, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, new(big.Rat).SetInt(coeffs[i]))
	}
	return acc
}

// deflate divides the polynomial by (x - root), dropping the remainder
// (zero by construction) and rescaling back to integers.
func deflate(coeffs []*big.Int, root *big.Rat) []*big.Int {
	n := len(coeffs) - 1
	quot := make([]*big.Rat, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		carry = new(big.Rat).Add(new(big.Rat).SetInt(coeffs[i]), new(big.Rat).Mul(carry, root))
		quot[i-1] = carry
	}
	rats := make([]*big.Rat, n)
	copy(rats, quot)
	ints, ok := integerCoeffs(rats)
	if !ok {
		// Fall back to truncated division; findRationalRoot re-verifies
		// every candidate so a bad scale only costs completeness.
		ints = make([]*big.Int, n)
		for i, r := range rats {
			ints[i] = new(big.Int).Div(r.Num(), r.Denom())
		}
	}
	return ints
}

func allEvenPositive(coeffs []*big.Rat) bool {
	if coeffs[0].Sign() <= 0 {
		return false
	}
	for d, c := range coeffs {
		if c.Sign() == 0 {
			continue
		}
		if d%2 != 0 || c.Sign() < 0 {
			return false
		}
	}
	return true
}

func allEvenPositiveInt(coeffs []*big.Int) bool {
	rats := make([]*big.Rat, len(coeffs))
	for i, c := range coeffs {
		rats[i] = new(big.Rat).SetInt(c)
	}
	return allEvenPositive(rats)
}

// ============================================================
// Single-radical and absolute-value residuals
// ============================================================

// solveRadical handles residuals of shape P(x) + Q(x)*sqrt(U(x)):
// isolate the radical, square both sides, solve the polynomial result,
// and keep only candidates that verify in the original residual.
// Squaring never loses real solutions, so when the squared equation is
// finitely resolved and no candidate verifies, emptiness is proven.
func solveRadical(residual Expr, varName string) (Set, bool) {
	radical, ok := findSingleSqrt(residual, varName)
	if !ok {
		return Set{}, false
	}
	p, q, ok := splitOnSubtree(residual, radical)
	if !ok {
		return Set{}, false
	}
	u := radical.base
	if !IsPolynomial(p, varName) || !IsPolynomial(q, varName) || !IsPolynomial(u, varName) {
		return Set{}, false
	}

	// Q*sqrt(U) = -P  =>  U*Q^2 - P^2 = 0
	squared := Expand(SubOf(MulOf(u, q, q), MulOf(p, p))).Simplify()
	return verifyCandidates(residual, varName, SolveSet(squared, varName))
}

// solveAbs handles residuals of shape P(x) + Q(x)*abs(U(x)). Since
// abs(U)^2 = U^2, the same square-and-verify reduction applies.
func solveAbs(residual Expr, varName string) (Set, bool) {
	target, ok := findSingleAbs(residual, varName)
	if !ok {
		return Set{}, false
	}
	p, q, ok := splitOnSubtree(residual, target)
	if !ok {
		return Set{}, false
	}
	u := target.arg
	if !IsPolynomial(p, varName) || !IsPolynomial(q, varName) || !IsPolynomial(u, varName) {
		return Set{}, false
	}

	// Q*abs(U) = -P  =>  U^2*Q^2 - P^2 = 0
	squared := Expand(SubOf(MulOf(u, u, q, q), MulOf(p, p))).Simplify()
	return verifyCandidates(residual, varName, SolveSet(squared, varName))
}

// verifyCandidates filters the solutions of the squared equation
// through the original residual.
func verifyCandidates(residual Expr, varName string, inner Set) (Set, bool) {
	switch inner.Kind {
	case SetFinite:
		var verified []Expr
		for _, cand := range inner.Values {
			if verifiesRoot(residual, varName, cand) {
				verified = append(verified, cand)
			}
		}
		if len(verified) == 0 {
			return Set{Kind: SetEmpty, Residual: residual}, true
		}
		return finiteSet(residual, verified...), true
	case SetEmpty:
		return Set{Kind: SetEmpty, Residual: residual}, true
	default:
		return conditionSet(residual, "squared form was not finitely solvable"), true
	}
}

// findSingleSqrt locates the unique sqrt subtree whose radicand
// contains the variable. Multiple distinct radicals are out of scope
// for the exact path.
func findSingleSqrt(e Expr, varName string) (*Pow, bool) {
	var found *Pow
	uniq := true
	var walk func(Expr)
	walk = func(cur Expr) {
		switch v := cur.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			if v.isSqrt() && ContainsVar(v.base, varName) {
				if found == nil {
					found = v
				} else if !found.Equal(v) {
					uniq = false
				}
				return
			}
			walk(v.base)
			walk(v.exp)
		case *Func:
			walk(v.arg)
		}
	}
	walk(e)
	return found, found != nil && uniq
}

// findSingleAbs locates the unique abs subtree whose argument contains
// the variable.
func findSingleAbs(e Expr, varName string) (*Func, bool) {
	var found *Func
	uniq := true
	var walk func(Expr)
	walk = func(cur Expr) {
		switch v := cur.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			walk(v.base)
			walk(v.exp)
		case *Func:
			if v.name == "abs" && ContainsVar(v.arg, varName) {
				if found == nil {
					found = v
				} else if !found.Equal(v) {
					uniq = false
				}
				return
			}
			walk(v.arg)
		}
	}
	walk(e)
	return found, found != nil && uniq
}

// splitOnSubtree decomposes e into p + q*sub. Fails when sub appears
// nested or with a power other than one.
func splitOnSubtree(e Expr, sub Expr) (p, q Expr, ok bool) {
	terms := []Expr{e}
	if add, isAdd := e.(*Add); isAdd {
		terms = add.terms
	}
	pTerms := []Expr{}
	qTerms := []Expr{}
	for _, t := range terms {
		switch {
		case t.Equal(sub):
			qTerms = append(qTerms, N(1))
		case containsSubtree(t, sub):
			m, isMul := t.(*Mul)
			if !isMul {
				return nil, nil, false
			}
			rest := make([]Expr, 0, len(m.factors))
			seen := 0
			for _, f := range m.factors {
				if f.Equal(sub) {
					seen++
					continue
				}
				if containsSubtree(f, sub) {
					return nil, nil, false
				}
				rest = append(rest, f)
			}
			if seen != 1 {
				return nil, nil, false
			}
			if len(rest) == 0 {
				qTerms = append(qTerms, N(1))
			} else {
				qTerms = append(qTerms, MulOf(rest...))
			}
		default:
			pTerms = append(pTerms, t)
		}
	}
	if len(qTerms) == 0 {
		return nil, nil, false
	}
	p = N(0)
	if len(pTerms) > 0 {
		p = AddOf(pTerms...)
	}
	return p, AddOf(qTerms...), true
}

func containsSubtree(e Expr, sub Expr) bool {
	if e.Equal(sub) {
		return true
	}
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if containsSubtree(t, sub) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if containsSubtree(f, sub) {
				return true
			}
		}
	case *Pow:
		return containsSubtree(v.base, sub) || containsSubtree(v.exp, sub)
	case *Func:
		return containsSubtree(v.arg, sub)
	}
	return false
}

// verifiesRoot substitutes a candidate into the residual and accepts it
// when the result vanishes, exactly or within float tolerance.
func verifiesRoot(residual Expr, varName string, cand Expr) bool {
	sub := residual.Sub(varName, cand).Simplify()
	if n, ok := sub.Eval(); ok {
		if n.IsZero() {
			return true
		}
		return math.Abs(n.Float64()) < 1e-9
	}
	return false
}
