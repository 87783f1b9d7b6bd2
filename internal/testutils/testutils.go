// Package testutils holds canned refinery cases shared by the package tests.
package testutils

import (
	"github.com/l7mp/refinery/pkg/topology"
)

// base returns an input with every required set present and empty.
func base(periods ...string) *topology.Input {
	in := topology.NewInput()
	for _, name := range []string{topology.SetT, topology.SetS, topology.SetU, topology.SetM,
		topology.SetQ, topology.SetC} {
		in.Sets[name] = nil
	}
	in.AddElems(topology.SetT, periods...)
	return in
}

// BlenderCase is one purchasable material (cost 10, unlimited) blended directly into one product
// (price 15, at most 100 per period). The optimal profit is 500.
func BlenderCase() *topology.Input {
	in := base("1")
	in.AddElems(topology.SetS, "crude", "gasoline")
	in.AddElems(topology.SetU, "blend")
	in.AddElems(topology.SetM, "m1")
	in.AddElems(topology.SetSM, "crude")
	in.AddElems(topology.SetSP, "gasoline")
	in.AddElems(topology.SetUBLD, "blend")
	in.AddTuple(topology.SetIU, "blend", "crude")
	in.AddTuple(topology.SetOU, "blend", "gasoline")
	in.AddTuple(topology.SetIM, "blend", "m1", "crude")
	in.AddTuple(topology.SetOM, "blend", "m1", "gasoline")
	in.SetParam(topology.ParamCost, 10, "crude")
	in.SetParam(topology.ParamPrice, 15, "gasoline")
	in.SetParam(topology.ParamFlowMax, 100, "gasoline", "1")
	return in
}

// MixerCase is a two-period mixer blending two components into one product under density,
// octane (volume-weighted) and sulfur (mass-weighted) mixing. Stream "idle" is incident to the
// mixer but no batch carries it.
func MixerCase() *topology.Input {
	in := base("1", "2")
	in.AddElems(topology.SetS, "reformate", "naphtha", "gasoline", "idle")
	in.AddElems(topology.SetU, "mix")
	in.AddElems(topology.SetM, "m1")
	in.AddElems(topology.SetQ, "spg", "ron", "sulfur")
	in.AddElems(topology.SetSPG, "spg")
	in.AddElems(topology.SetQv, "ron")
	in.AddElems(topology.SetQw, "sulfur")
	in.AddElems(topology.SetSM, "reformate", "naphtha")
	in.AddElems(topology.SetSP, "gasoline")
	in.AddElems(topology.SetUMIX, "mix")
	for _, s := range []string{"reformate", "naphtha", "idle"} {
		in.AddTuple(topology.SetIU, "mix", s)
	}
	in.AddTuple(topology.SetOU, "mix", "gasoline")
	in.AddTuple(topology.SetIM, "mix", "m1", "reformate")
	in.AddTuple(topology.SetIM, "mix", "m1", "naphtha")
	in.AddTuple(topology.SetOM, "mix", "m1", "gasoline")
	for _, s := range []string{"reformate", "naphtha", "gasoline"} {
		for _, q := range []string{"spg", "ron", "sulfur"} {
			in.AddTuple(topology.SetSQ, s, q)
		}
	}
	in.AddTuple(topology.SetFIX, "reformate", "ron")
	in.SetParam(topology.ParamFixedValue, 98, "reformate", "ron")
	in.SetParam(topology.ParamMixMin, 92, "mix", "m1", "ron")
	in.SetParam(topology.ParamCost, 30, "reformate")
	in.SetParam(topology.ParamCost, 20, "naphtha")
	in.SetParam(topology.ParamPrice, 40, "gasoline")
	return in
}

// SplitterCase splits one stream into two; the first output carries every property of the
// input, the second only the density.
func SplitterCase() *topology.Input {
	in := base("1", "2")
	in.AddElems(topology.SetS, "feed", "left", "right")
	in.AddElems(topology.SetU, "split")
	in.AddElems(topology.SetQ, "spg", "sulfur")
	in.AddElems(topology.SetSPG, "spg")
	in.AddElems(topology.SetQw, "sulfur")
	in.AddElems(topology.SetUSPL, "split")
	in.AddTuple(topology.SetIU, "split", "feed")
	in.AddTuple(topology.SetOU, "split", "left")
	in.AddTuple(topology.SetOU, "split", "right")
	in.AddTuple(topology.SetSQ, "feed", "spg")
	in.AddTuple(topology.SetSQ, "feed", "sulfur")
	in.AddTuple(topology.SetSQ, "left", "spg")
	in.AddTuple(topology.SetSQ, "left", "sulfur")
	in.AddTuple(topology.SetSQ, "right", "spg")
	return in
}

// FixedYieldCase is a fixed-yield reactor with two batches. The yields of batch "m1" sum to zero,
// those of "m2" to one.
func FixedYieldCase() *topology.Input {
	in := base("1")
	in.AddElems(topology.SetS, "feed", "light", "heavy")
	in.AddElems(topology.SetU, "reactor")
	in.AddElems(topology.SetM, "m1", "m2")
	in.AddElems(topology.SetUPF, "reactor")
	in.AddElems(topology.SetSM, "feed")
	in.AddElems(topology.SetSP, "light", "heavy")
	in.AddTuple(topology.SetIU, "reactor", "feed")
	in.AddTuple(topology.SetOU, "reactor", "light")
	in.AddTuple(topology.SetOU, "reactor", "heavy")
	for _, m := range []string{"m1", "m2"} {
		in.AddTuple(topology.SetIM, "reactor", m, "feed")
		in.AddTuple(topology.SetOM, "reactor", m, "light")
		in.AddTuple(topology.SetOM, "reactor", m, "heavy")
	}
	in.SetParam(topology.ParamGamma, 0.6, "reactor", "m2", "light")
	in.SetParam(topology.ParamGamma, 0.4, "reactor", "m2", "heavy")
	return in
}

// StorageCase is the blender case over three periods with a tank on the product stream.
func StorageCase() *topology.Input {
	in := BlenderCase()
	in.Sets[topology.SetT] = nil
	in.AddElems(topology.SetT, "1", "2", "3")
	for _, t := range []string{"1", "2", "3"} {
		in.SetParam(topology.ParamFlowMax, 100, "gasoline", t)
		in.SetParam(topology.ParamLevelMax, 50, "gasoline", t)
	}
	in.SetParam(topology.ParamInitialLevel, 10, "gasoline")
	in.SetParam(topology.ParamInvPrice, 2, "gasoline")
	in.SetParam(topology.ParamInvCost, 1, "crude")
	return in
}

// RefineryCase is a small refinery with every unit variant: a CDU, a fixed-yield and a delta-base
// conversion unit, a splitter, a mixer and a blender, with property transfer, pinned properties
// and capacity groups.
func RefineryCase() *topology.Input {
	in := base("1", "2")
	in.AddElems(topology.SetS, "crude", "naphtha", "gasoil", "resid", "cracked", "coke",
		"fcc_gas", "naphtha_a", "naphtha_b", "pool", "gasoline", "diesel")
	in.AddElems(topology.SetU, "cdu", "hdt", "fcc", "split", "mix", "blend")
	in.AddElems(topology.SetM, "m1", "m2")
	in.AddElems(topology.SetQ, "spg", "sulfur", "ron")
	in.AddElems(topology.SetC, "cdu_cap", "sales")
	in.AddElems(topology.SetSPG, "spg")
	in.AddElems(topology.SetQw, "sulfur")
	in.AddElems(topology.SetQv, "ron")
	in.AddElems(topology.SetSM, "crude")
	in.AddElems(topology.SetSP, "gasoline", "diesel", "coke", "fcc_gas")
	in.AddElems(topology.SetUCDU, "cdu")
	in.AddElems(topology.SetUPF, "hdt")
	in.AddElems(topology.SetUPD, "fcc")
	in.AddElems(topology.SetUSPL, "split")
	in.AddElems(topology.SetUMIX, "mix")
	in.AddElems(topology.SetUBLD, "blend")
	in.AddElems(topology.SetCAPIN, "cdu_cap")
	in.AddElems(topology.SetCAPOUT, "sales")

	// cdu: crude -> naphtha, gasoil, resid in two cut modes
	in.AddTuple(topology.SetIU, "cdu", "crude")
	for _, s := range []string{"naphtha", "gasoil", "resid"} {
		in.AddTuple(topology.SetOU, "cdu", s)
	}
	for _, m := range []string{"m1", "m2"} {
		in.AddTuple(topology.SetIM, "cdu", m, "crude")
		for _, s := range []string{"naphtha", "gasoil", "resid"} {
			in.AddTuple(topology.SetOM, "cdu", m, s)
		}
	}
	for s, y := range map[string][2]float64{"naphtha": {0.3, 0.2}, "gasoil": {0.4, 0.5}, "resid": {0.3, 0.3}} {
		in.SetParam(topology.ParamYield, y[0], "cdu", "m1", "crude", s)
		in.SetParam(topology.ParamYield, y[1], "cdu", "m2", "crude", s)
	}

	// hdt: gasoil -> diesel
	in.AddTuple(topology.SetIU, "hdt", "gasoil")
	in.AddTuple(topology.SetOU, "hdt", "diesel")
	in.AddTuple(topology.SetIM, "hdt", "m1", "gasoil")
	in.AddTuple(topology.SetOM, "hdt", "m1", "diesel")
	in.SetParam(topology.ParamGamma, 1, "hdt", "m1", "diesel")

	// fcc: resid -> cracked, coke, fcc_gas, yields sensitive to feed sulfur
	in.AddTuple(topology.SetIU, "fcc", "resid")
	in.AddTuple(topology.SetIM, "fcc", "m1", "resid")
	for i, s := range []string{"cracked", "coke", "fcc_gas"} {
		in.AddTuple(topology.SetOU, "fcc", s)
		in.AddTuple(topology.SetOM, "fcc", "m1", s)
		in.SetParam(topology.ParamGamma, []float64{0.6, 0.1, 0.3}[i], "fcc", "m1", s)
	}
	in.AddTuple(topology.SetDBSQ, "fcc", "m1", "resid", "sulfur")
	in.SetParam(topology.ParamBase, 2.0, "fcc", "m1", "resid", "sulfur")
	in.SetParam(topology.ParamNorm, 0.5, "fcc", "m1", "resid", "sulfur")
	in.SetParam(topology.ParamDelta, -0.02, "fcc", "m1", "cracked", "resid", "sulfur")
	in.SetParam(topology.ParamDelta, 0.02, "fcc", "m1", "coke", "resid", "sulfur")

	// split: naphtha -> naphtha_a, naphtha_b
	in.AddTuple(topology.SetIU, "split", "naphtha")
	in.AddTuple(topology.SetOU, "split", "naphtha_a")
	in.AddTuple(topology.SetOU, "split", "naphtha_b")

	// mix: naphtha_a + cracked -> pool
	in.AddTuple(topology.SetIU, "mix", "naphtha_a")
	in.AddTuple(topology.SetIU, "mix", "cracked")
	in.AddTuple(topology.SetOU, "mix", "pool")
	in.AddTuple(topology.SetIM, "mix", "m1", "naphtha_a")
	in.AddTuple(topology.SetIM, "mix", "m1", "cracked")
	in.AddTuple(topology.SetOM, "mix", "m1", "pool")

	// blend: pool + naphtha_b -> gasoline
	in.AddTuple(topology.SetIU, "blend", "pool")
	in.AddTuple(topology.SetIU, "blend", "naphtha_b")
	in.AddTuple(topology.SetOU, "blend", "gasoline")
	in.AddTuple(topology.SetIM, "blend", "m1", "pool")
	in.AddTuple(topology.SetIM, "blend", "m1", "naphtha_b")
	in.AddTuple(topology.SetOM, "blend", "m1", "gasoline")
	in.SetParam(topology.ParamBlendMin, 0.72, "blend", "spg")
	in.SetParam(topology.ParamBlendMax, 0.77, "blend", "spg")
	in.SetParam(topology.ParamBlendMin, 91, "blend", "ron")
	in.SetParam(topology.ParamBlendMax, 0.001, "blend", "sulfur")

	// properties
	props := map[string][]string{
		"crude":     {"spg", "sulfur"},
		"naphtha":   {"spg", "sulfur", "ron"},
		"naphtha_a": {"spg", "sulfur", "ron"},
		"naphtha_b": {"spg", "sulfur", "ron"},
		"resid":     {"spg", "sulfur"},
		"cracked":   {"spg", "sulfur", "ron"},
		"pool":      {"spg", "sulfur", "ron"},
		"gasoline":  {"spg", "sulfur", "ron"},
		"diesel":    {"sulfur"},
		"gasoil":    {"sulfur"},
	}
	for _, s := range []string{"crude", "naphtha", "naphtha_a", "naphtha_b", "resid", "cracked",
		"pool", "gasoline", "diesel", "gasoil"} {
		for _, q := range props[s] {
			in.AddTuple(topology.SetSQ, s, q)
		}
	}
	in.AddTuple(topology.SetFIX, "crude", "spg")
	in.AddTuple(topology.SetFIX, "crude", "sulfur")
	in.SetParam(topology.ParamFixedValue, 0.86, "crude", "spg")
	in.SetParam(topology.ParamFixedValue, 2.5, "crude", "sulfur")
	in.AddTuple(topology.SetQT, "crude", "resid", "sulfur")
	in.AddTuple(topology.SetQT, "gasoil", "diesel", "sulfur")
	in.SetParam(topology.ParamAlpha, 1.4, "crude", "resid", "sulfur")
	in.SetParam(topology.ParamAlpha, 0.01, "gasoil", "diesel", "sulfur")
	in.SetParam(topology.ParamPropMax, 0.0015, "diesel", "sulfur")

	// capacity
	in.AddTuple(topology.SetCAPS, "cdu_cap", "crude")
	in.AddTuple(topology.SetCAPS, "sales", "gasoline")
	in.AddTuple(topology.SetCAPS, "sales", "diesel")
	for _, t := range []string{"1", "2"} {
		in.SetParam(topology.ParamCapMax, 1000, "cdu_cap", t)
		in.SetParam(topology.ParamCapMin, 200, "cdu_cap", t)
		in.SetParam(topology.ParamCapMax, 900, "sales", t)
	}

	// economics
	in.SetParam(topology.ParamCost, 60, "crude")
	for s, p := range map[string]float64{"gasoline": 90, "diesel": 85, "coke": 10, "fcc_gas": 30} {
		in.SetParam(topology.ParamPrice, p, s)
	}
	return in
}
