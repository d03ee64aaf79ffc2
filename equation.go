package solvex

// Equation is lhs = rhs. The solver pipeline works on the residual
// lhs - rhs, solved against zero.
type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }

func (e *Equation) String() string { return e.LHS.String() + " = " + e.RHS.String() }
func (e *Equation) LaTeX() string  { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

func (e *Equation) Residual() Expr {
	return SubOf(e.LHS, e.RHS).Simplify()
}
