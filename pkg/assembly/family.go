package assembly

import (
	"math"

	"github.com/go-logr/logr"

	"github.com/l7mp/refinery/pkg/index"
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/relation"
	"github.com/l7mp/refinery/pkg/topology"
)

// Family is a constraint family: a pure function of the store, the index and the variable
// handles that emits zero or more constraint instances.
type Family interface {
	Name() string
	Generate(c *Context) error
}

// Context is the per-family generation state. Each family gets its own context, the shared
// inputs are read-only.
type Context struct {
	Store *topology.Store
	Index *index.Index
	Model *model.Model
	Log   logr.Logger

	constraints []*model.Constraint
	skipped     map[string]int
	err         error
}

func newContext(ix *index.Index, m *model.Model, log logr.Logger) *Context {
	return &Context{
		Store:   ix.Store(),
		Index:   ix,
		Model:   m,
		Log:     log,
		skipped: map[string]int{},
	}
}

// Var returns the handle of a declared variable. A missing variable is recorded as an error
// returned by Err.
func (c *Context) Var(family string, idx ...string) model.VarID {
	id, ok := c.Model.Var(family, idx...)
	if !ok && c.err == nil {
		c.err = NewMissingVariableError(family, relation.Tuple(idx))
	}
	return id
}

// Emit appends a constraint.
func (c *Context) Emit(cons *model.Constraint) { c.constraints = append(c.constraints, cons) }

// Skip counts a degenerate constraint instance that was omitted.
func (c *Context) Skip(name string) { c.skipped[name]++ }

// Err returns the first error recorded during generation.
func (c *Context) Err() error { return c.err }

// Constraints returns the emitted constraints.
func (c *Context) Constraints() []*model.Constraint { return c.constraints }

// batchFlows returns Σ coef·v over the batch variables v(u,m,s,t) of the given streams.
func (c *Context) batchFlows(e *model.Expr, coef float64, v, u, m string, streams []string, t string) *model.Expr {
	for _, s := range streams {
		e.Add(coef, c.Var(v, u, m, s, t))
	}
	return e
}

// batchVars returns the handles FVM(u,m,s,t) of the given batches.
func (c *Context) batchVars(u string, batches []string, s, t string) []model.VarID {
	ret := make([]model.VarID, 0, len(batches))
	for _, m := range batches {
		ret = append(ret, c.Var(VarFVM, u, m, s, t))
	}
	return ret
}

// streamFlows returns Σ coef·v over the stream variables v(s,t) of the given streams.
func (c *Context) streamFlows(e *model.Expr, coef float64, v string, streams []string, t string) *model.Expr {
	for _, s := range streams {
		e.Add(coef, c.Var(v, s, t))
	}
	return e
}

func tuple(elems ...string) relation.Tuple { return relation.Tuple(elems) }

func single(coef float64, v model.VarID) *model.Expr { return model.NewExpr().Add(coef, v) }

func constant(v float64) *model.Expr { return model.NewExpr().AddConstant(v) }

// boundRange turns a (min, max) parameter pair into constraint bounds. A side at the unbounded
// sentinel, or a lower side not above floor, is open. ok is false if both sides are open.
func boundRange(lo, hi, floor float64) (float64, float64, bool) {
	l, h := math.Inf(-1), math.Inf(1)
	if topology.Bounded(lo) && lo > floor {
		l = lo
	}
	if topology.Bounded(hi) {
		h = hi
	}
	return l, h, !math.IsInf(l, -1) || !math.IsInf(h, 1)
}

func filterByProperty(st *topology.Store, streams []string, q string) []string {
	ret := make([]string, 0, len(streams))
	for _, s := range streams {
		if st.Has(topology.SetSQ, s, q) {
			ret = append(ret, s)
		}
	}
	return ret
}
