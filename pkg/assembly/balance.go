package assembly

import (
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// BatchAggregation ties the net input/output flow of every (unit,stream) incidence to the sum of
// the batch flows sharing it. An incidence no batch maps to is forced to zero.
type BatchAggregation struct{}

func (BatchAggregation) Name() string { return "batch-aggregation" }

func (BatchAggregation) Generate(c *Context) error {
	for _, t := range c.Store.Periods() {
		for _, us := range c.Store.Set(topology.SetIU).Tuples() {
			u, s := us[0], us[1]
			c.Emit(model.NewEquality("batch_input", tuple(u, s, t), single(1, c.Var(VarFVI, s, t)),
				model.NewExpr().Sum(1, c.batchVars(u, c.Index.InputBatches(u, s), s, t)...)))
		}
		for _, us := range c.Store.Set(topology.SetOU).Tuples() {
			u, s := us[0], us[1]
			c.Emit(model.NewEquality("batch_output", tuple(u, s, t), single(1, c.Var(VarFVO, s, t)),
				model.NewExpr().Sum(1, c.batchVars(u, c.Index.OutputBatches(u, s), s, t)...)))
		}
	}
	return c.Err()
}

// MixerBalance conserves mass across every mixer batch.
type MixerBalance struct{}

func (MixerBalance) Name() string { return "mixer-balance" }

func (MixerBalance) Generate(c *Context) error {
	for _, u := range c.Store.Units(topology.UnitMixer) {
		for _, m := range c.Index.Batches(u) {
			ins, outs := c.Index.BatchInputs(u, m), c.Index.BatchOutputs(u, m)
			if len(ins) == 0 || len(outs) == 0 {
				continue
			}
			for _, t := range c.Store.Periods() {
				c.Emit(model.NewEquality("mixer_balance", tuple(u, m, t),
					c.batchFlows(model.NewExpr(), 1, VarFVM, u, m, ins, t),
					c.batchFlows(model.NewExpr(), 1, VarFVM, u, m, outs, t)))
			}
		}
	}
	return c.Err()
}

// UnitBalance conserves the net flow of splitters and blenders over their unbatched incidences.
type UnitBalance struct{}

func (UnitBalance) Name() string { return "unit-balance" }

func (UnitBalance) Generate(c *Context) error {
	units := append(append([]string{}, c.Store.Units(topology.UnitSplitter)...),
		c.Store.Units(topology.UnitBlender)...)
	for _, u := range units {
		ins, outs := c.Index.UnitInputs(u), c.Index.UnitOutputs(u)
		if len(ins) == 0 || len(outs) == 0 {
			continue
		}
		for _, t := range c.Store.Periods() {
			c.Emit(model.NewEquality("unit_balance", tuple(u, t),
				c.streamFlows(model.NewExpr(), 1, VarFVI, ins, t),
				c.streamFlows(model.NewExpr(), 1, VarFVO, outs, t)))
		}
	}
	return c.Err()
}

// StreamContinuity links production and consumption of every stream when there is no storage to
// buffer the difference: FVO(s,t) = FVI(s,t). With storage enabled the inventory balance takes
// its place.
type StreamContinuity struct{}

func (StreamContinuity) Name() string { return "stream-continuity" }

func (StreamContinuity) Generate(c *Context) error {
	if c.Store.StorageEnabled() {
		return nil
	}
	for _, s := range c.Store.Set(topology.SetS).Elems() {
		for _, t := range c.Store.Periods() {
			c.Emit(model.NewEquality("stream_continuity", tuple(s, t),
				single(1, c.Var(VarFVO, s, t)), single(1, c.Var(VarFVI, s, t))))
		}
	}
	return c.Err()
}
