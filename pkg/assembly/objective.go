package assembly

import (
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// ObjectiveName is the name of the profit objective.
const ObjectiveName = "profit"

// Objective assembles the profit: product revenue minus material cost over all periods, plus the
// inventory value adjustment when storage is enabled.
func Objective(c *Context) *model.Objective {
	st := c.Store
	e := model.NewExpr()
	products, materials := st.Set(topology.SetSP).Elems(), st.Set(topology.SetSM).Elems()

	for _, t := range st.Periods() {
		for _, s := range products {
			e.Add(st.Value(topology.ParamPrice, s), c.Var(VarFVI, s, t))
		}
		for _, s := range materials {
			e.Add(-st.Value(topology.ParamCost, s), c.Var(VarFVO, s, t))
		}
	}

	if st.StorageEnabled() {
		for _, t := range st.Periods() {
			for _, s := range products {
				e.Add(st.Value(topology.ParamInvPrice, s), c.Var(VarFVLI, s, t))
				e.Add(-st.Value(topology.ParamInvCost, s), c.Var(VarFVLO, s, t))
			}
			for _, s := range materials {
				e.Add(-st.Value(topology.ParamInvCost, s), c.Var(VarFVLO, s, t))
				e.Add(st.Value(topology.ParamInvPrice, s), c.Var(VarFVLI, s, t))
			}
		}
	}

	return &model.Objective{Name: ObjectiveName, Sense: model.Maximize, Expr: e.Normalize()}
}
