package assembly

import (
	"math"

	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// Bounds bounds capacity-group flows, material purchases, product sales and property values.
// Flow bounds open on a side at the sentinel or, for lower bounds, at zero; properties in FIX are
// pinned to FQ0 instead of being range-bounded.
type Bounds struct{}

func (Bounds) Name() string { return "bounds" }

func (Bounds) Generate(c *Context) error {
	st := c.Store
	for _, t := range st.Periods() {
		capacity := func(name, groups, flow string) {
			for _, g := range st.Set(groups).Elems() {
				streams := c.Index.CapacityStreams(g)
				if len(streams) == 0 {
					continue
				}
				lo, hi, ok := boundRange(st.Value(topology.ParamCapMin, g, t),
					st.Value(topology.ParamCapMax, g, t), 0)
				if !ok {
					continue
				}
				c.Emit(model.NewRange(name, tuple(g, t), lo,
					c.streamFlows(model.NewExpr(), 1, flow, streams, t), hi))
			}
		}
		capacity("capacity_input", topology.SetCAPIN, VarFVI)
		capacity("capacity_output", topology.SetCAPOUT, VarFVO)

		for _, sq := range st.Set(topology.SetSQ).Tuples() {
			s, q := sq[0], sq[1]
			fq := single(1, c.Var(VarFQ, s, q, t))
			if st.Has(topology.SetFIX, s, q) {
				v, _ := st.Lookup(topology.ParamFixedValue, s, q)
				c.Emit(model.NewEquality("property_bounds", tuple(s, q, t), fq, constant(v)))
				continue
			}
			lo, hi, ok := boundRange(st.Value(topology.ParamPropMin, s, q),
				st.Value(topology.ParamPropMax, s, q), math.Inf(-1))
			if ok {
				c.Emit(model.NewRange("property_bounds", tuple(s, q, t), lo, fq, hi))
			}
		}

		flow := func(name, streams, v string) {
			for _, s := range st.Set(streams).Elems() {
				lo, hi, ok := boundRange(st.Value(topology.ParamFlowMin, s, t),
					st.Value(topology.ParamFlowMax, s, t), 0)
				if ok {
					c.Emit(model.NewRange(name, tuple(s, t), lo, single(1, c.Var(v, s, t)), hi))
				}
			}
		}
		flow("material_flow_bounds", topology.SetSM, VarFVO)
		flow("product_flow_bounds", topology.SetSP, VarFVI)
	}
	return c.Err()
}
