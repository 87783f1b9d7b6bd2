package assembly

import (
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// Inventory is the storage subsystem: a per-stream balance between net flows and storage moves, the
// level recursion over the ordered periods, level bounds, and big-M constraints that make inbound
// and outbound moves mutually exclusive. It emits nothing if storage is not enabled.
type Inventory struct{}

func (Inventory) Name() string { return "inventory" }

func (Inventory) Generate(c *Context) error {
	st := c.Store
	if !st.StorageEnabled() {
		return nil
	}
	flags := c.Model.HasFamily(VarX)

	for _, s := range st.Set(topology.SetS).Elems() {
		for _, t := range st.Periods() {
			in, out := c.Var(VarFVLI, s, t), c.Var(VarFVLO, s, t)

			// FVO + FVLO = FVI + FVLI
			c.Emit(model.NewEquality("inventory_balance", tuple(s, t),
				single(1, c.Var(VarFVO, s, t)).Add(1, out),
				single(1, c.Var(VarFVI, s, t)).Add(1, in)))

			// L(t) = L(t-1) + FVLI - FVLO, L(t-1) = L0 at the first period
			rhs := model.NewExpr().Add(1, in).Add(-1, out)
			if prev, ok := st.Prev(t); ok {
				rhs.Add(1, c.Var(VarL, s, prev))
			} else {
				rhs.AddConstant(st.Value(topology.ParamInitialLevel, s))
			}
			c.Emit(model.NewEquality("inventory_level", tuple(s, t), single(1, c.Var(VarL, s, t)), rhs))

			lmin, lmax := st.Value(topology.ParamLevelMin, s, t), st.Value(topology.ParamLevelMax, s, t)
			c.Emit(model.NewRange("inventory_bounds", tuple(s, t), lmin, single(1, c.Var(VarL, s, t)), lmax))

			if flags {
				x := c.Var(VarX, s, t)
				// FVLO <= X·LMax, FVLI <= (1-X)·LMax
				c.Emit(model.NewLessEqual("inventory_out_flag", tuple(s, t), single(1, out), single(lmax, x)))
				c.Emit(model.NewLessEqual("inventory_in_flag", tuple(s, t), single(1, in),
					constant(lmax).Add(-lmax, x)))
			}
		}
	}
	return c.Err()
}
