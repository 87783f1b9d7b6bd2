package assembly

import (
	"github.com/go-logr/logr"

	"github.com/l7mp/refinery/pkg/index"
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// Variable family names.
const (
	VarFVI   = "FVI"   // net stream input flow (s,t)
	VarFVO   = "FVO"   // net stream output flow (s,t)
	VarFVM   = "FVM"   // batch mass flow (u,m,s,t)
	VarVM    = "VM"    // batch volume flow (u,m,s,t)
	VarFQ    = "FQ"    // property value (s,q,t)
	VarV     = "V"     // blender input volume flow (s,t)
	VarGamma = "Gamma" // effective delta-base yield coefficient (u,m,s,t)
	VarL     = "L"     // inventory level (s,t)
	VarFVLI  = "FVLI"  // inventory inbound flow (s,t)
	VarFVLO  = "FVLO"  // inventory outbound flow (s,t)
	VarX     = "X"     // inventory direction flag (s,t)
)

// Allocate declares every variable of the case. Index sets grow only where the topology demands:
// batch variables exist only for IM ∪ OM, property values only for SQ, blender volumes only for
// blender inputs, and the inventory block only when the store enables storage. Direction flags
// additionally need some positive LMax: without capacity the big-M constraints are vacuous.
func Allocate(m *model.Model, ix *index.Index, log logr.Logger) {
	st := ix.Store()
	periods := st.Periods()

	for _, s := range st.Set(topology.SetS).Elems() {
		for _, t := range periods {
			m.AddVariable(VarFVI, model.NonNegativeReals, s, t)
			m.AddVariable(VarFVO, model.NonNegativeReals, s, t)
		}
	}

	for _, ums := range ix.BatchStreams() {
		for _, t := range periods {
			m.AddVariable(VarFVM, model.NonNegativeReals, ums[0], ums[1], ums[2], t)
			m.AddVariable(VarVM, model.NonNegativeReals, ums[0], ums[1], ums[2], t)
		}
	}

	for _, sq := range st.Set(topology.SetSQ).Tuples() {
		for _, t := range periods {
			m.AddVariable(VarFQ, model.Reals, sq[0], sq[1], t)
		}
	}

	for _, us := range ix.BlenderInputs() {
		for _, t := range periods {
			m.AddVariable(VarV, model.NonNegativeReals, us[1], t)
		}
	}

	for _, ums := range ix.DeltaBaseStreams() {
		for _, t := range periods {
			m.AddVariable(VarGamma, model.Reals, ums[0], ums[1], ums[2], t)
		}
	}

	if st.StorageEnabled() {
		flags := st.HasStorageCapacity()
		for _, s := range st.Set(topology.SetS).Elems() {
			for _, t := range periods {
				m.AddVariable(VarL, model.NonNegativeReals, s, t)
				m.AddVariable(VarFVLI, model.NonNegativeReals, s, t)
				m.AddVariable(VarFVLO, model.NonNegativeReals, s, t)
				if flags {
					m.AddVariable(VarX, model.Binary, s, t)
				}
			}
		}
	}

	log.V(1).Info("variables allocated", "total", len(m.Variables), "families", m.Families(),
		"storage", st.StorageEnabled())
}
