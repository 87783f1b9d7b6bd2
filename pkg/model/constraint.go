package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/l7mp/refinery/pkg/relation"
)

// Comparator classifies the relation a constraint enforces.
type Comparator int

const (
	Equal Comparator = iota
	LessEqual
	GreaterEqual
	Range
)

func (c Comparator) String() string {
	return [...]string{"==", "<=", ">=", "range"}[c]
}

// Constraint is the relation Lower <= Body <= Upper. Equalities have Lower == Upper, one-sided
// inequalities an infinite bound on the open side.
type Constraint struct {
	Name  string
	Index relation.Tuple
	Body  *Expr
	Lower float64
	Upper float64
}

// NewEquality creates the constraint lhs == rhs.
func NewEquality(name string, idx relation.Tuple, lhs, rhs *Expr) *Constraint {
	return &Constraint{
		Name:  name,
		Index: idx,
		Body:  NewExpr().AddExpr(1, lhs).AddExpr(-1, rhs).Normalize(),
	}
}

// NewLessEqual creates the constraint lhs <= rhs.
func NewLessEqual(name string, idx relation.Tuple, lhs, rhs *Expr) *Constraint {
	return &Constraint{
		Name:  name,
		Index: idx,
		Body:  NewExpr().AddExpr(1, lhs).AddExpr(-1, rhs).Normalize(),
		Lower: math.Inf(-1),
	}
}

// NewRange creates the constraint lower <= body <= upper. Either bound may be infinite.
func NewRange(name string, idx relation.Tuple, lower float64, body *Expr, upper float64) *Constraint {
	return &Constraint{
		Name:  name,
		Index: idx,
		Body:  NewExpr().AddExpr(1, body).Normalize(),
		Lower: lower,
		Upper: upper,
	}
}

// Comparator returns the kind of the relation.
func (c *Constraint) Comparator() Comparator {
	lo, hi := !math.IsInf(c.Lower, -1), !math.IsInf(c.Upper, 1)
	switch {
	case lo && hi && c.Lower == c.Upper:
		return Equal
	case lo && hi:
		return Range
	case hi:
		return LessEqual
	default:
		return GreaterEqual
	}
}

// Key identifies the constraint inside its model.
func (c *Constraint) Key() string { return c.Name + c.Index.String() }

// Violation returns how far the constraint is from being satisfied at x; zero if satisfied.
func (c *Constraint) Violation(x []float64) float64 {
	v := c.Body.Eval(x)
	switch {
	case v < c.Lower:
		return c.Lower - v
	case v > c.Upper:
		return v - c.Upper
	}
	return 0
}

// Format renders the constraint with the given variable namer.
func (c *Constraint) Format(name func(VarID) string) string {
	body := c.Body.Format(name)
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	switch c.Comparator() {
	case Equal:
		return fmt.Sprintf("%s: %s == %s", c.Key(), body, f(c.Upper))
	case LessEqual:
		return fmt.Sprintf("%s: %s <= %s", c.Key(), body, f(c.Upper))
	case GreaterEqual:
		return fmt.Sprintf("%s: %s >= %s", c.Key(), body, f(c.Lower))
	default:
		return fmt.Sprintf("%s: %s <= %s <= %s", c.Key(), f(c.Lower), body, f(c.Upper))
	}
}

// Sense is the optimization direction.
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "minimize"
	}
	return "maximize"
}

// Objective is the scalar objective of a model.
type Objective struct {
	Name  string
	Sense Sense
	Expr  *Expr
}
