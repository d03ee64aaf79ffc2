package solvex

import (
	"math"
	"math/big"
)

// Func is a named single-argument function application.
type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr       { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr       { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr       { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr       { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr        { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr       { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr      { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr      { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr      { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr      { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr      { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr      { return funcOf("tanh", arg).Simplify() }
func FactorialOf(arg Expr) Expr { return funcOf("factorial", arg).Simplify() }

// FuncNames lists the function names the kernel understands, which is
// also the parser's call whitelist.
func FuncNames() []string {
	return []string{
		"sqrt", "sin", "cos", "tan", "exp", "ln", "log", "abs",
		"asin", "acos", "atan", "sinh", "cosh", "tanh", "factorial",
	}
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		if out, ok2 := applyExact(f.name, n); ok2 {
			return out
		}
	}
	switch f.name {
	case "sin":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln":
		if n, ok := arg.(*Num); ok && n.IsOne() {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if n, ok := arg.(*Num); ok && !n.IsNegative() {
			return n
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				inner := append([]Expr{numNeg(coeff)}, m.factors[1:]...)
				return AbsOf(MulOf(inner...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

// applyExact folds a function of a numeric argument. Factorial of a
// non-negative integer folds exactly; the transcendental functions fold
// to float-backed rationals.
func applyExact(name string, n *Num) (Expr, bool) {
	if name == "factorial" {
		if n.IsInteger() && !n.IsNegative() {
			k := n.val.Num()
			if k.IsInt64() && k.Int64() <= 1000 {
				// MulRange(1, 0) is the empty product, so 0! folds to 1.
				prod := new(big.Int).MulRange(1, k.Int64())
				return NRat(new(big.Rat).SetInt(prod)), true
			}
		}
		return nil, false
	}
	v := n.Float64()
	out, ok := applyFloat(name, v)
	if !ok || math.IsNaN(out) || math.IsInf(out, 0) {
		return nil, false
	}
	return NFloat(out), true
}

func applyFloat(name string, v float64) (float64, bool) {
	switch name {
	case "sin":
		return math.Sin(v), true
	case "cos":
		return math.Cos(v), true
	case "tan":
		return math.Tan(v), true
	case "exp":
		return math.Exp(v), true
	case "ln":
		if v <= 0 {
			return 0, false
		}
		return math.Log(v), true
	case "abs":
		return math.Abs(v), true
	case "asin":
		return math.Asin(v), true
	case "acos":
		return math.Acos(v), true
	case "atan":
		return math.Atan(v), true
	case "sinh":
		return math.Sinh(v), true
	case "cosh":
		return math.Cosh(v), true
	case "tanh":
		return math.Tanh(v), true
	case "factorial":
		return math.Gamma(v + 1), true
	}
	return 0, false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "factorial":
		return "\\left(" + f.arg.LaTeX() + "\\right)!"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	default:
		// abs, factorial: no closed-form derivative here. The numeric
		// solver detects the placeholder and switches to finite differences.
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	if out, ok2 := applyExact(f.name, n); ok2 {
		if v, isNum := out.(*Num); isNum {
			return v, true
		}
	}
	return nil, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}
