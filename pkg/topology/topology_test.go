package topology_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/refinery/internal/testutils"
	"github.com/l7mp/refinery/pkg/topology"
)

func TestTopology(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Topology Suite")
}

var _ = Describe("Store", func() {
	It("should load a valid case", func() {
		st, err := topology.New(testutils.RefineryCase(), topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Periods()).To(Equal([]string{"1", "2"}))
		p, ok := st.Prev("2")
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal("1"))
		_, ok = st.Prev("1")
		Expect(ok).To(BeFalse())

		Expect(st.Kind("cdu")).To(Equal(topology.UnitCDU))
		Expect(st.Kind("fcc")).To(Equal(topology.UnitDeltaBase))
		Expect(st.Units(topology.UnitBlender)).To(Equal([]string{"blend"}))
		Expect(st.Has(topology.SetIU, "cdu", "crude")).To(BeTrue())
		Expect(st.StorageEnabled()).To(BeFalse())
	})

	It("should fall back to parameter defaults", func() {
		st, err := topology.New(testutils.BlenderCase(), topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Value(topology.ParamFlowMax, "gasoline", "1")).To(Equal(100.0))
		Expect(st.Value(topology.ParamFlowMax, "crude", "1")).To(Equal(topology.Unbounded))
		Expect(st.Value(topology.ParamPropMin, "crude", "spg")).To(Equal(-topology.Unbounded))
		Expect(st.Value(topology.ParamNorm, "u", "m", "s", "q")).To(Equal(1.0))
		Expect(topology.Bounded(st.Value(topology.ParamCapMax, "c", "1"))).To(BeFalse())
		_, ok := st.Lookup(topology.ParamFixedValue, "crude", "spg")
		Expect(ok).To(BeFalse())
		spec, ok := topology.ParamSpec(topology.ParamDelta)
		Expect(ok).To(BeTrue())
		Expect(spec.Parents).To(Equal([]string{"U", "M", "S", "S", "Q"}))
		Expect(st.ParamNames()).To(Equal([]string{"FVMax", "c_M", "c_P"}))
	})

	It("should treat units in no variant set as generic", func() {
		in := testutils.BlenderCase()
		in.Sets[topology.SetUBLD] = nil
		st, err := topology.New(in, topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Kind("blend")).To(Equal(topology.UnitGeneric))
	})

	It("should reject a missing required set", func() {
		in := testutils.BlenderCase()
		delete(in.Sets, topology.SetQ)
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, topology.ErrIntegrity)).To(BeTrue())
	})

	It("should reject an empty horizon", func() {
		in := testutils.BlenderCase()
		in.Sets[topology.SetT] = nil
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
	})

	It("should reject a unit in two variant sets", func() {
		in := testutils.BlenderCase()
		in.AddElems(topology.SetUMIX, "blend")
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
		var ierr *topology.IntegrityError
		Expect(errors.As(err, &ierr)).To(BeTrue())
		Expect(ierr.Problems).To(HaveLen(1))
		Expect(ierr.Problems[0]).To(ContainSubstring("blend"))
	})

	It("should reject relations of the wrong arity", func() {
		in := testutils.BlenderCase()
		in.AddTuple(topology.SetIU, "blend", "crude", "extra")
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
	})

	It("should reject unknown set and parameter names", func() {
		in := testutils.BlenderCase()
		in.AddElems("UBLND", "blend")
		in.SetParam("c_p", 15, "gasoline")
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
		var ierr *topology.IntegrityError
		Expect(errors.As(err, &ierr)).To(BeTrue())
		Expect(ierr.Problems).To(ConsistOf(
			ContainSubstring("unknown set UBLND"),
			ContainSubstring("unknown parameter c_p"),
		))
	})

	It("should reject parameter entries of the wrong arity", func() {
		in := testutils.BlenderCase()
		in.SetParam(topology.ParamFlowMax, 100, "gasoline")
		in.SetParam(topology.ParamPrice, 15, "gasoline", "1")
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
		var ierr *topology.IntegrityError
		Expect(errors.As(err, &ierr)).To(BeTrue())
		Expect(ierr.Problems).To(ConsistOf(
			ContainSubstring("parameter FVMax(gasoline) has 1 indices, expected 2"),
			ContainSubstring("parameter c_P(gasoline,1) has 2 indices, expected 1"),
		))
	})

	It("should reject FIX pairs that cannot be pinned", func() {
		in := testutils.MixerCase()
		in.AddTuple(topology.SetFIX, "naphtha", "ron")
		delete(in.Params, topology.ParamFixedValue)
		_, err := topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
		var ierr *topology.IntegrityError
		Expect(errors.As(err, &ierr)).To(BeTrue())
		// both FIX pairs lack FQ0
		Expect(ierr.Problems).To(HaveLen(2))

		in = testutils.MixerCase()
		in.AddTuple(topology.SetFIX, "idle", "ron")
		in.SetParam(topology.ParamFixedValue, 90, "idle", "ron")
		_, err = topology.New(in, topology.Options{})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("not in SQ"))
	})

	DescribeTable("storage activation",
		func(mode topology.StorageMode, levels bool, expected bool) {
			in := testutils.BlenderCase()
			if levels {
				in.SetParam(topology.ParamLevelMax, 20, "gasoline", "1")
			}
			st, err := topology.New(in, topology.Options{Storage: mode})
			Expect(err).NotTo(HaveOccurred())
			Expect(st.StorageEnabled()).To(Equal(expected))
			Expect(st.HasStorageCapacity()).To(Equal(levels))
		},
		Entry("auto without tanks", topology.StorageAuto, false, false),
		Entry("auto with tanks", topology.StorageAuto, true, true),
		Entry("default with tanks", topology.StorageMode(""), true, true),
		Entry("forced on", topology.StorageOn, false, true),
		Entry("forced off", topology.StorageOff, true, false),
	)

	It("should reject an unknown storage mode", func() {
		_, err := topology.New(testutils.BlenderCase(), topology.Options{Storage: "sometimes"})
		Expect(err).To(HaveOccurred())
	})
})
