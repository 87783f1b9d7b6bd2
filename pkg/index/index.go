// Package index derives the secondary sparse index sets and the prefix-keyed inverted indices the
// constraint families look up, from the relation sets of a topology store.
package index

import (
	"github.com/l7mp/refinery/pkg/relation"
	"github.com/l7mp/refinery/pkg/topology"
	"github.com/l7mp/refinery/pkg/util"
)

// Index holds the derived index sets of a case. It is immutable after Expand returns.
type Index struct {
	store *topology.Store

	batchStreams *relation.Set // IM ∪ OM
	deltaBase    *relation.Set // IM ∪ OM restricted to delta-base units
	blendInputs  *relation.Set // (u,s) ∈ IU with u a blender
	splitPairs   *relation.Set // (u,s,s') with u a splitter, (u,s) ∈ IU and (u,s') ∈ OU

	imByUnitBatch, omByUnitBatch   *relation.Index
	imByUnitStream, omByUnitStream *relation.Index
	allByUnitBatch                 *relation.Index
	iuByUnit, ouByUnit             *relation.Index
	sqByStream                     *relation.Index
	dbsqByUnitBatch                *relation.Index
	capsByGroup                    *relation.Index
	batchesByUnit                  *relation.Index

	spg map[string]string
}

// Expand checks the referential integrity of the store and derives every index. A relation that
// references an entity missing from its parent set yields a *topology.IntegrityError.
func Expand(st *topology.Store) (*Index, error) {
	if err := CheckReferences(st); err != nil {
		return nil, err
	}

	im, om := st.Set(topology.SetIM), st.Set(topology.SetOM)
	all, err := im.Union("IMOM", om)
	if err != nil {
		return nil, err
	}

	splitPairs, err := relation.NewJoin([]int{0}, []int{0}).Process(
		relation.Select(st.Set(topology.SetIU), func(t relation.Tuple) bool {
			return st.Kind(t[0]) == topology.UnitSplitter
		}), st.Set(topology.SetOU))
	if err != nil {
		return nil, err
	}

	ix := &Index{
		store:        st,
		batchStreams: all,
		deltaBase: relation.Select(all, func(t relation.Tuple) bool {
			return st.Kind(t[0]) == topology.UnitDeltaBase
		}),
		blendInputs: relation.Select(st.Set(topology.SetIU), func(t relation.Tuple) bool {
			return st.Kind(t[0]) == topology.UnitBlender
		}),
		splitPairs:      splitPairs,
		imByUnitBatch:   im.IndexBy(0, 1),
		omByUnitBatch:   om.IndexBy(0, 1),
		imByUnitStream:  im.IndexBy(0, 2),
		omByUnitStream:  om.IndexBy(0, 2),
		allByUnitBatch:  all.IndexBy(0, 1),
		iuByUnit:        st.Set(topology.SetIU).IndexBy(0),
		ouByUnit:        st.Set(topology.SetOU).IndexBy(0),
		sqByStream:      st.Set(topology.SetSQ).IndexBy(0),
		dbsqByUnitBatch: st.Set(topology.SetDBSQ).IndexBy(0, 1),
		capsByGroup:     st.Set(topology.SetCAPS).IndexBy(0),
		batchesByUnit:   relation.Project(all, 0, 1).IndexBy(0),
		spg:             map[string]string{},
	}

	// The first density-like property of a stream in SPG order converts volume to mass.
	for _, q := range st.Set(topology.SetSPG).Elems() {
		for _, s := range st.Set(topology.SetS).Elems() {
			if _, ok := ix.spg[s]; !ok && st.Has(topology.SetSQ, s, q) {
				ix.spg[s] = q
			}
		}
	}

	return ix, nil
}

// CheckReferences verifies that every column of every partition and relation set, and every index
// column of every parameter entry, references a member of its parent entity set.
func CheckReferences(st *topology.Store) error {
	ierr := topology.NewIntegrityError()
	specs := append(append([]topology.RelationSpec{}, topology.PartitionSets...), topology.RelationSets...)
	for _, spec := range specs {
		for _, t := range st.Set(spec.Name).Tuples() {
			for col, parent := range spec.Parents {
				if !st.Has(parent, t[col]) {
					ierr.Addf("%s%s references %q not in %s", spec.Name, t, t[col], parent)
				}
			}
		}
	}
	for _, name := range st.ParamNames() {
		spec, ok := topology.ParamSpec(name)
		if !ok {
			continue
		}
		for _, k := range util.SortedKeys(st.Table(name)) {
			idx := relation.SplitKey(k)
			for col, parent := range spec.Parents {
				if !st.Has(parent, idx[col]) {
					ierr.Addf("parameter %s%s references %q not in %s", name, idx, idx[col], parent)
				}
			}
		}
	}
	return ierr.Err()
}

// Store returns the underlying topology store.
func (ix *Index) Store() *topology.Store { return ix.store }

// BatchStreams returns the (u,m,s) triples of IM ∪ OM in a stable order.
func (ix *Index) BatchStreams() []relation.Tuple { return ix.batchStreams.Tuples() }

// DeltaBaseStreams returns the (u,m,s) triples of IM ∪ OM whose unit is a delta-base process.
func (ix *Index) DeltaBaseStreams() []relation.Tuple { return ix.deltaBase.Tuples() }

// BlenderInputs returns the (u,s) pairs of IU whose unit is a blender.
func (ix *Index) BlenderInputs() []relation.Tuple { return ix.blendInputs.Tuples() }

// SplitterPairs returns the (u,s,s') triples linking each splitter input s to each output s'.
func (ix *Index) SplitterPairs() []relation.Tuple { return ix.splitPairs.Tuples() }

// BatchInputs returns the input streams of a unit batch.
func (ix *Index) BatchInputs(u, m string) []string { return ix.imByUnitBatch.Column(2, u, m) }

// BatchOutputs returns the output streams of a unit batch.
func (ix *Index) BatchOutputs(u, m string) []string { return ix.omByUnitBatch.Column(2, u, m) }

// BatchStreamsOf returns every stream of a unit batch, inputs and outputs.
func (ix *Index) BatchStreamsOf(u, m string) []string { return ix.allByUnitBatch.Column(2, u, m) }

// InputBatches returns the batches feeding stream s into unit u.
func (ix *Index) InputBatches(u, s string) []string { return ix.imByUnitStream.Column(1, u, s) }

// OutputBatches returns the batches producing stream s at unit u.
func (ix *Index) OutputBatches(u, s string) []string { return ix.omByUnitStream.Column(1, u, s) }

// Batches returns the batches of a unit.
func (ix *Index) Batches(u string) []string { return ix.batchesByUnit.Column(1, u) }

// UnitInputs returns the unbatched input streams of a unit.
func (ix *Index) UnitInputs(u string) []string { return ix.iuByUnit.Column(1, u) }

// UnitOutputs returns the unbatched output streams of a unit.
func (ix *Index) UnitOutputs(u string) []string { return ix.ouByUnit.Column(1, u) }

// Properties returns the properties a stream carries.
func (ix *Index) Properties(s string) []string { return ix.sqByStream.Column(1, s) }

// DensityProperty returns the property converting volume to mass flow for a stream.
func (ix *Index) DensityProperty(s string) (string, bool) {
	q, ok := ix.spg[s]
	return q, ok
}

// SensitivityLinks returns the (s',q) pairs of DBSQ linked to a unit batch.
func (ix *Index) SensitivityLinks(u, m string) []relation.Tuple {
	ts := ix.dbsqByUnitBatch.Lookup(u, m)
	ret := make([]relation.Tuple, 0, len(ts))
	for _, t := range ts {
		ret = append(ret, t.Pick(2, 3))
	}
	return ret
}

// CapacityStreams returns the streams of a capacity group.
func (ix *Index) CapacityStreams(c string) []string { return ix.capsByGroup.Column(1, c) }

// TransferEdges returns the (s,s',q) property-transfer edges in QT order.
func (ix *Index) TransferEdges() []relation.Tuple { return ix.store.Set(topology.SetQT).Tuples() }

// Cardinalities returns the size of every topology set and derived index set.
func (ix *Index) Cardinalities() map[string]int {
	ret := map[string]int{}
	for _, name := range topology.SetNames() {
		ret[name] = ix.store.Set(name).Len()
	}
	ret["IMOM"] = ix.batchStreams.Len()
	ret["DB"] = ix.deltaBase.Len()
	return ret
}
