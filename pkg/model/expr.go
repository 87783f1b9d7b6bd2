package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is a linear term coef·x.
type Term struct {
	Coef float64
	Var  VarID
}

// Product is a bilinear term coef·x·y.
type Product struct {
	Coef float64
	A, B VarID
}

// Expr is a quadratic (at most bilinear) expression: constant + Σ terms + Σ products. The zero
// value is the empty expression. Methods return the receiver for chaining.
type Expr struct {
	Constant float64
	Terms    []Term
	Products []Product
}

// NewExpr returns an empty expression.
func NewExpr() *Expr { return &Expr{} }

// Add adds coef·v.
func (e *Expr) Add(coef float64, v VarID) *Expr {
	e.Terms = append(e.Terms, Term{Coef: coef, Var: v})
	return e
}

// Sum adds coef·Σvs.
func (e *Expr) Sum(coef float64, vs ...VarID) *Expr {
	for _, v := range vs {
		e.Add(coef, v)
	}
	return e
}

// AddProduct adds coef·a·b.
func (e *Expr) AddProduct(coef float64, a, b VarID) *Expr {
	if b < a {
		a, b = b, a
	}
	e.Products = append(e.Products, Product{Coef: coef, A: a, B: b})
	return e
}

// AddConstant adds a constant.
func (e *Expr) AddConstant(c float64) *Expr {
	e.Constant += c
	return e
}

// AddExpr adds coef·o.
func (e *Expr) AddExpr(coef float64, o *Expr) *Expr {
	if o == nil {
		return e
	}
	e.Constant += coef * o.Constant
	for _, t := range o.Terms {
		e.Add(coef*t.Coef, t.Var)
	}
	for _, p := range o.Products {
		e.AddProduct(coef*p.Coef, p.A, p.B)
	}
	return e
}

// Normalize merges duplicate terms and drops zero coefficients, keeping first-appearance order.
func (e *Expr) Normalize() *Expr {
	terms := make([]Term, 0, len(e.Terms))
	pos := map[VarID]int{}
	for _, t := range e.Terms {
		if i, ok := pos[t.Var]; ok {
			terms[i].Coef += t.Coef
			continue
		}
		pos[t.Var] = len(terms)
		terms = append(terms, t)
	}
	e.Terms = e.Terms[:0]
	for _, t := range terms {
		if t.Coef != 0 {
			e.Terms = append(e.Terms, t)
		}
	}

	prods := make([]Product, 0, len(e.Products))
	ppos := map[[2]VarID]int{}
	for _, p := range e.Products {
		k := [2]VarID{p.A, p.B}
		if i, ok := ppos[k]; ok {
			prods[i].Coef += p.Coef
			continue
		}
		ppos[k] = len(prods)
		prods = append(prods, p)
	}
	e.Products = e.Products[:0]
	for _, p := range prods {
		if p.Coef != 0 {
			e.Products = append(e.Products, p)
		}
	}
	return e
}

// IsLinear is true if the expression has no bilinear terms.
func (e *Expr) IsLinear() bool { return len(e.Products) == 0 }

// IsZero is true if the expression has no variable terms.
func (e *Expr) IsZero() bool { return len(e.Terms) == 0 && len(e.Products) == 0 }

// Eval evaluates the expression at the given point.
func (e *Expr) Eval(x []float64) float64 {
	ret := e.Constant
	for _, t := range e.Terms {
		ret += t.Coef * x[t.Var]
	}
	for _, p := range e.Products {
		ret += p.Coef * x[p.A] * x[p.B]
	}
	return ret
}

// Format renders the expression with the given variable namer.
func (e *Expr) Format(name func(VarID) string) string {
	var b strings.Builder
	first := true
	write := func(coef float64, body string) {
		switch {
		case first && coef < 0:
			b.WriteString("-")
		case !first && coef < 0:
			b.WriteString(" - ")
		case !first:
			b.WriteString(" + ")
		}
		first = false
		if c := abs(coef); c != 1 || body == "" {
			b.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
			if body != "" {
				b.WriteString("*")
			}
		}
		b.WriteString(body)
	}
	for _, t := range e.Terms {
		write(t.Coef, name(t.Var))
	}
	for _, p := range e.Products {
		write(p.Coef, fmt.Sprintf("%s*%s", name(p.A), name(p.B)))
	}
	if e.Constant != 0 || first {
		write(e.Constant, "")
	}
	return b.String()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
