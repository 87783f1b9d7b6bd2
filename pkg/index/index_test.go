package index

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/refinery/internal/testutils"
	"github.com/l7mp/refinery/pkg/relation"
	"github.com/l7mp/refinery/pkg/topology"
)

func TestIndex(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Index Suite")
}

var _ = Describe("Index", func() {
	var ix *Index

	BeforeEach(func() {
		st, err := topology.New(testutils.RefineryCase(), topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		ix, err = Expand(st)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should derive the batch stream union", func() {
		// cdu: 2 batches x 4 streams, hdt 2, fcc 4, mix 3, blend 3
		Expect(ix.BatchStreams()).To(HaveLen(8 + 2 + 4 + 3 + 3))
		Expect(ix.BatchStreamsOf("cdu", "m2")).To(Equal([]string{"crude", "naphtha", "gasoil", "resid"}))
		Expect(ix.BatchInputs("mix", "m1")).To(Equal([]string{"naphtha_a", "cracked"}))
		Expect(ix.BatchOutputs("fcc", "m1")).To(Equal([]string{"cracked", "coke", "fcc_gas"}))
		Expect(ix.InputBatches("cdu", "crude")).To(Equal([]string{"m1", "m2"}))
		Expect(ix.OutputBatches("hdt", "diesel")).To(Equal([]string{"m1"}))
		Expect(ix.Batches("cdu")).To(Equal([]string{"m1", "m2"}))
		Expect(ix.Batches("split")).To(BeEmpty())
	})

	It("should select the delta-base and blender input sets", func() {
		Expect(ix.DeltaBaseStreams()).To(HaveLen(4))
		for _, t := range ix.DeltaBaseStreams() {
			Expect(t[0]).To(Equal("fcc"))
		}
		Expect(ix.BlenderInputs()).To(Equal([]relation.Tuple{{"blend", "pool"}, {"blend", "naphtha_b"}}))
	})

	It("should index incidence and properties", func() {
		Expect(ix.UnitInputs("mix")).To(Equal([]string{"naphtha_a", "cracked"}))
		Expect(ix.UnitOutputs("split")).To(Equal([]string{"naphtha_a", "naphtha_b"}))
		Expect(ix.SplitterPairs()).To(Equal([]relation.Tuple{
			{"split", "naphtha", "naphtha_a"}, {"split", "naphtha", "naphtha_b"}}))
		Expect(ix.Properties("naphtha")).To(Equal([]string{"spg", "sulfur", "ron"}))
		q, ok := ix.DensityProperty("pool")
		Expect(ok).To(BeTrue())
		Expect(q).To(Equal("spg"))
		_, ok = ix.DensityProperty("diesel")
		Expect(ok).To(BeFalse())
		Expect(ix.SensitivityLinks("fcc", "m1")).To(Equal([]relation.Tuple{{"resid", "sulfur"}}))
		Expect(ix.CapacityStreams("sales")).To(Equal([]string{"gasoline", "diesel"}))
		Expect(ix.TransferEdges()).To(HaveLen(2))
	})

	It("should report cardinalities", func() {
		card := ix.Cardinalities()
		Expect(card).To(HaveKeyWithValue("U", 6))
		Expect(card).To(HaveKeyWithValue("IMOM", 20))
		Expect(card).To(HaveKeyWithValue("DB", 4))
		Expect(card).To(HaveKeyWithValue("QT", 2))
	})

	It("should reject dangling references", func() {
		in := testutils.BlenderCase()
		in.AddTuple(topology.SetIU, "blend", "ghost")
		in.AddTuple(topology.SetOM, "nowhere", "m1", "gasoline")
		st, err := topology.New(in, topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		_, err = Expand(st)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, topology.ErrIntegrity)).To(BeTrue())
		var ierr *topology.IntegrityError
		Expect(errors.As(err, &ierr)).To(BeTrue())
		Expect(ierr.Problems).To(HaveLen(2))
	})

	It("should reject parameters indexed by unknown entities", func() {
		in := testutils.BlenderCase()
		in.SetParam(topology.ParamPrice, 15, "diesel")
		in.SetParam(topology.ParamFlowMax, 100, "gasoline", "7")
		st, err := topology.New(in, topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		err = CheckReferences(st)
		Expect(err).To(HaveOccurred())
		var ierr *topology.IntegrityError
		Expect(errors.As(err, &ierr)).To(BeTrue())
		Expect(ierr.Problems).To(ConsistOf(
			ContainSubstring(`parameter FVMax(gasoline,7) references "7" not in T`),
			ContainSubstring(`parameter c_P(diesel) references "diesel" not in S`),
		))
	})
})
