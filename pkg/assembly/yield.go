package assembly

import (
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// CDUFormulation is the yield law of a crude distillation unit. Output returns the constraint that
// determines the flow of output stream s of batch (u,m) in period t, or nil to emit nothing.
type CDUFormulation interface {
	Name() string
	Output(c *Context, u, m, s, t string, inputs []string) *model.Constraint
}

// ProportionalCut is the fixed-cut CDU model: every output batch flow is a linear combination of
// the input batch flows weighted by the yield y(u,m,s_in,s_out). Cut points do not move.
type ProportionalCut struct{}

func (ProportionalCut) Name() string { return "proportional-cut" }

func (ProportionalCut) Output(c *Context, u, m, s, t string, inputs []string) *model.Constraint {
	rhs := model.NewExpr()
	for _, in := range inputs {
		rhs.Add(c.Store.Value(topology.ParamYield, u, m, in, s), c.Var(VarFVM, u, m, in, t))
	}
	return model.NewEquality("cdu_yield", tuple(u, m, s, t), single(1, c.Var(VarFVM, u, m, s, t)), rhs)
}

// CDUYield applies a CDU formulation to every output of every CDU batch.
type CDUYield struct {
	Formulation CDUFormulation
}

func (CDUYield) Name() string { return "cdu-yield" }

func (f CDUYield) Generate(c *Context) error {
	form := f.Formulation
	if form == nil {
		form = ProportionalCut{}
	}
	for _, u := range c.Store.Units(topology.UnitCDU) {
		for _, m := range c.Index.Batches(u) {
			ins := c.Index.BatchInputs(u, m)
			if len(ins) == 0 {
				continue
			}
			for _, s := range c.Index.BatchOutputs(u, m) {
				for _, t := range c.Store.Periods() {
					if cons := form.Output(c, u, m, s, t, ins); cons != nil {
						c.Emit(cons)
					}
				}
			}
		}
	}
	return c.Err()
}

// FixedYield allocates the feed of a fixed-yield batch to its output streams in proportion to the
// base coefficients gamma(u,m,s): FVM(s)·Σγ = γ(s)·Σ inputs, the sum running over every stream of
// the batch. Batches whose coefficients sum to zero are skipped.
type FixedYield struct{}

func (FixedYield) Name() string { return "fixed-yield" }

func (FixedYield) Generate(c *Context) error {
	for _, u := range c.Store.Units(topology.UnitFixedYield) {
		for _, m := range c.Index.Batches(u) {
			ins := c.Index.BatchInputs(u, m)
			if len(ins) == 0 {
				continue
			}
			sum := 0.0
			for _, s := range c.Index.BatchStreamsOf(u, m) {
				sum += c.Store.Value(topology.ParamGamma, u, m, s)
			}
			for _, s := range c.Index.BatchOutputs(u, m) {
				for _, t := range c.Store.Periods() {
					if sum == 0 {
						c.Skip("fixed_yield")
						continue
					}
					gamma := c.Store.Value(topology.ParamGamma, u, m, s)
					c.Emit(model.NewEquality("fixed_yield", tuple(u, m, s, t),
						single(sum, c.Var(VarFVM, u, m, s, t)),
						c.batchFlows(model.NewExpr(), gamma, VarFVM, u, m, ins, t)))
				}
			}
		}
	}
	return c.Err()
}

// DeltaBaseYield computes the effective coefficient of every delta-base stream from the feed
// property deviations and allocates the feed to the outputs with the same law as FixedYield,
// bilinear in the effective coefficients.
type DeltaBaseYield struct{}

func (DeltaBaseYield) Name() string { return "delta-base-yield" }

func (DeltaBaseYield) Generate(c *Context) error {
	for _, u := range c.Store.Units(topology.UnitDeltaBase) {
		for _, m := range c.Index.Batches(u) {
			ins := c.Index.BatchInputs(u, m)
			streams := c.Index.BatchStreamsOf(u, m)
			links := c.Index.SensitivityLinks(u, m)
			outs := map[string]bool{}
			for _, s := range c.Index.BatchOutputs(u, m) {
				outs[s] = true
			}

			for _, s := range streams {
				for _, t := range c.Store.Periods() {
					// Gamma = gamma + Σ (FQ(s',q) - B)·delta/Del
					rhs := constant(c.Store.Value(topology.ParamGamma, u, m, s))
					for _, link := range links {
						sp, q := link[0], link[1]
						if !c.Store.Has(topology.SetSQ, sp, q) {
							continue
						}
						norm := c.Store.Value(topology.ParamNorm, u, m, sp, q)
						if norm == 0 {
							c.Skip("delta_base_gamma")
							continue
						}
						k := c.Store.Value(topology.ParamDelta, u, m, s, sp, q) / norm
						rhs.Add(k, c.Var(VarFQ, sp, q, t))
						rhs.AddConstant(-k * c.Store.Value(topology.ParamBase, u, m, sp, q))
					}
					c.Emit(model.NewEquality("delta_base_gamma", tuple(u, m, s, t),
						single(1, c.Var(VarGamma, u, m, s, t)), rhs))

					if len(ins) == 0 || !outs[s] {
						continue
					}
					flow, gamma := c.Var(VarFVM, u, m, s, t), c.Var(VarGamma, u, m, s, t)
					share, feed := model.NewExpr(), model.NewExpr()
					for _, sp := range streams {
						share.AddProduct(1, flow, c.Var(VarGamma, u, m, sp, t))
					}
					for _, in := range ins {
						feed.AddProduct(1, gamma, c.Var(VarFVM, u, m, in, t))
					}
					c.Emit(model.NewEquality("delta_base_yield", tuple(u, m, s, t), share, feed))
				}
			}
		}
	}
	return c.Err()
}
