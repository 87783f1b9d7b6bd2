package assembly

import (
	"math"

	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// PropertyTransfer propagates a property along every QT edge: FQ(s',q) = alpha·FQ(s,q). Edges with
// a pinned end, or an end not carrying the property, are skipped.
type PropertyTransfer struct{}

func (PropertyTransfer) Name() string { return "property-transfer" }

func (PropertyTransfer) Generate(c *Context) error {
	for _, e := range c.Index.TransferEdges() {
		s, sout, q := e[0], e[1], e[2]
		if c.Store.Has(topology.SetFIX, s, q) || c.Store.Has(topology.SetFIX, sout, q) {
			continue
		}
		if !c.Store.Has(topology.SetSQ, s, q) || !c.Store.Has(topology.SetSQ, sout, q) {
			continue
		}
		alpha := c.Store.Value(topology.ParamAlpha, s, sout, q)
		for _, t := range c.Store.Periods() {
			c.Emit(model.NewEquality("property_transfer", tuple(s, sout, q, t),
				single(1, c.Var(VarFQ, sout, q, t)), single(alpha, c.Var(VarFQ, s, q, t))))
		}
	}
	return c.Err()
}

// MixerQuality relates the volume and mass flows of mixer batches through the density-like
// property and mixes volume-weighted and mass-weighted properties into the mixer outputs.
type MixerQuality struct{}

func (MixerQuality) Name() string { return "mixer-quality" }

func (MixerQuality) Generate(c *Context) error {
	st := c.Store
	for _, u := range st.Units(topology.UnitMixer) {
		for _, m := range c.Index.Batches(u) {
			ins, outs := c.Index.BatchInputs(u, m), c.Index.BatchOutputs(u, m)

			for _, t := range st.Periods() {
				// VM·SPG = FVM
				for _, s := range c.Index.BatchStreamsOf(u, m) {
					q, ok := c.Index.DensityProperty(s)
					if !ok {
						continue
					}
					lhs := model.NewExpr().AddProduct(1, c.Var(VarVM, u, m, s, t), c.Var(VarFQ, s, q, t))
					c.Emit(model.NewEquality("mixer_volume_mass", tuple(u, m, s, t), lhs,
						single(1, c.Var(VarFVM, u, m, s, t))))
				}

				for _, s := range outs {
					if len(ins) > 0 {
						c.Emit(model.NewEquality("mixer_volume_balance", tuple(u, m, s, t),
							single(1, c.Var(VarVM, u, m, s, t)),
							c.batchFlows(model.NewExpr(), 1, VarVM, u, m, ins, t)))
					}

					for _, q := range c.Index.Properties(s) {
						if st.Has(topology.SetFIX, s, q) {
							continue
						}
						c.mixProperty(u, m, s, q, t, ins)

						lo, hi, ok := boundRange(st.Value(topology.ParamMixMin, u, m, q),
							st.Value(topology.ParamMixMax, u, m, q), math.Inf(-1))
						if ok {
							c.Emit(model.NewRange("mixer_quality_bounds", tuple(u, m, s, q, t), lo,
								single(1, c.Var(VarFQ, s, q, t)), hi))
						}
					}
				}
			}
		}
	}
	return c.Err()
}

// mixProperty emits the weighted-average law of property q for mixer output s: volume flows weigh
// Qv properties, mass flows weigh Qw properties.
func (c *Context) mixProperty(u, m, s, q, t string, ins []string) {
	ins = filterByProperty(c.Store, ins, q)
	if len(ins) == 0 {
		return
	}
	weigh := func(name, flow string) {
		lhs := model.NewExpr().AddProduct(1, c.Var(flow, u, m, s, t), c.Var(VarFQ, s, q, t))
		rhs := model.NewExpr()
		for _, in := range ins {
			rhs.AddProduct(1, c.Var(flow, u, m, in, t), c.Var(VarFQ, in, q, t))
		}
		c.Emit(model.NewEquality(name, tuple(u, m, s, q, t), lhs, rhs))
	}
	if c.Store.Has(topology.SetQv, q) {
		weigh("mixer_volume_property", VarVM)
	}
	if c.Store.Has(topology.SetQw, q) {
		weigh("mixer_mass_property", VarFVM)
	}
}

// BlenderQuality converts blender input volumes to mass through the density-like property and
// keeps the blended density, volume-weighted and mass-weighted properties within the blender
// specification [FQBMin, FQBMax]. Each side is emitted only if it is tighter than the sentinel.
type BlenderQuality struct{}

func (BlenderQuality) Name() string { return "blender-quality" }

func (BlenderQuality) Generate(c *Context) error {
	st := c.Store
	for _, u := range st.Units(topology.UnitBlender) {
		ins := c.Index.UnitInputs(u)
		for _, t := range st.Periods() {
			// V·SPG = FVI
			for _, s := range ins {
				q, ok := c.Index.DensityProperty(s)
				if !ok {
					continue
				}
				lhs := model.NewExpr().AddProduct(1, c.Var(VarV, s, t), c.Var(VarFQ, s, q, t))
				c.Emit(model.NewEquality("blender_volume_mass", tuple(u, s, t), lhs,
					single(1, c.Var(VarFVI, s, t))))
			}

			for _, q := range st.Set(topology.SetQ).Elems() {
				streams := filterByProperty(st, ins, q)
				if len(streams) == 0 {
					continue
				}
				lo, hi := st.Value(topology.ParamBlendMin, u, q), st.Value(topology.ParamBlendMax, u, q)

				volume := c.streamFlows(model.NewExpr(), 1, VarV, streams, t)
				mass := c.streamFlows(model.NewExpr(), 1, VarFVI, streams, t)
				weighted := func(flow string) *model.Expr {
					e := model.NewExpr()
					for _, s := range streams {
						e.AddProduct(1, c.Var(flow, s, t), c.Var(VarFQ, s, q, t))
					}
					return e
				}

				if st.Has(topology.SetSPG, q) {
					c.blendBounds("blender_spg", u, q, t, lo, hi, mass, volume)
				}
				if st.Has(topology.SetQv, q) {
					c.blendBounds("blender_volume_property", u, q, t, lo, hi, weighted(VarV), volume)
				}
				if st.Has(topology.SetQw, q) {
					c.blendBounds("blender_mass_property", u, q, t, lo, hi, weighted(VarFVI), mass)
				}
			}
		}
	}
	return c.Err()
}

// blendBounds emits lo·basis <= quantity <= hi·basis as two one-sided constraints.
func (c *Context) blendBounds(name, u, q, t string, lo, hi float64, quantity, basis *model.Expr) {
	if topology.Bounded(lo) {
		c.Emit(model.NewLessEqual(name, tuple(u, q, t, "min"),
			model.NewExpr().AddExpr(lo, basis), quantity))
	}
	if topology.Bounded(hi) {
		c.Emit(model.NewLessEqual(name, tuple(u, q, t, "max"),
			quantity, model.NewExpr().AddExpr(hi, basis)))
	}
}

// SplitterProperty makes every splitter output inherit the property values of its input, for every
// property both streams carry.
type SplitterProperty struct{}

func (SplitterProperty) Name() string { return "splitter-property" }

func (SplitterProperty) Generate(c *Context) error {
	for _, p := range c.Index.SplitterPairs() {
		u, in, out := p[0], p[1], p[2]
		for _, q := range c.Index.Properties(out) {
			if !c.Store.Has(topology.SetSQ, in, q) {
				continue
			}
			for _, t := range c.Store.Periods() {
				c.Emit(model.NewEquality("splitter_property", tuple(u, in, out, q, t),
					single(1, c.Var(VarFQ, out, q, t)), single(1, c.Var(VarFQ, in, q, t))))
			}
		}
	}
	return c.Err()
}
