package relation

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRelation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Relation Suite")
}

var _ = Describe("Set", func() {
	var im *Set

	BeforeEach(func() {
		var err error
		im, err = FromTuples("IM", 3,
			Tuple{"mix", "m1", "a"},
			Tuple{"mix", "m1", "b"},
			Tuple{"mix", "m2", "a"},
			Tuple{"cdu", "m1", "crude"},
			Tuple{"mix", "m1", "a"}, // duplicate
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should keep set semantics and insertion order", func() {
		Expect(im.Len()).To(Equal(4))
		Expect(im.Tuples()[0]).To(Equal(Tuple{"mix", "m1", "a"}))
		Expect(im.Tuples()[3]).To(Equal(Tuple{"cdu", "m1", "crude"}))
		Expect(im.Contains("mix", "m2", "a")).To(BeTrue())
		Expect(im.Contains("mix", "m2", "b")).To(BeFalse())
	})

	It("should reject tuples of the wrong arity", func() {
		_, err := FromTuples("IU", 2, Tuple{"a", "b", "c"})
		Expect(err).To(HaveOccurred())
		var rerr *RelationError
		Expect(err).To(BeAssignableToTypeOf(rerr))
	})

	It("should reject identifiers containing the key separator", func() {
		s := NewSet("S", 1)
		Expect(s.Insert(Tuple{"a\x1fb"})).To(HaveOccurred())
		Expect(s.Len()).To(Equal(0))
		Expect(CheckIdent("a\x1fb")).To(HaveOccurred())
		Expect(CheckIdent("crude")).To(Succeed())

		_, err := FromTuples("IU", 2, Tuple{"blend", "gas\x1foline"})
		Expect(err).To(HaveOccurred())
	})

	It("should build prefix indices", func() {
		ix := im.IndexBy(0, 1)
		Expect(ix.Len()).To(Equal(3))
		Expect(ix.Column(2, "mix", "m1")).To(Equal([]string{"a", "b"}))
		Expect(ix.Lookup("mix", "m3")).To(BeEmpty())
		Expect(ix.Keys()).To(Equal([]Tuple{{"mix", "m1"}, {"mix", "m2"}, {"cdu", "m1"}}))
	})

	It("should union relations of equal arity", func() {
		om, err := FromTuples("OM", 3, Tuple{"mix", "m1", "out"}, Tuple{"mix", "m1", "a"})
		Expect(err).NotTo(HaveOccurred())
		all, err := im.Union("IMOM", om)
		Expect(err).NotTo(HaveOccurred())
		Expect(all.Len()).To(Equal(5))
		Expect(all.Tuples()[4]).To(Equal(Tuple{"mix", "m1", "out"}))

		_, err = im.Union("bad", FromElems("U", "mix"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Operators", func() {
	It("should select", func() {
		s, _ := FromTuples("IU", 2, Tuple{"u1", "a"}, Tuple{"u2", "b"}, Tuple{"u1", "c"})
		ret := Select(s, func(t Tuple) bool { return t[0] == "u1" })
		Expect(ret.Tuples()).To(Equal([]Tuple{{"u1", "a"}, {"u1", "c"}}))
	})

	It("should project and collapse duplicates", func() {
		s, _ := FromTuples("IM", 3, Tuple{"u1", "m1", "a"}, Tuple{"u1", "m1", "b"}, Tuple{"u1", "m2", "a"})
		ret := Project(s, 0, 1)
		Expect(ret.Arity()).To(Equal(2))
		Expect(ret.Tuples()).To(Equal([]Tuple{{"u1", "m1"}, {"u1", "m2"}}))

		_, err := NewProjection(5).Process(s)
		Expect(err).To(HaveOccurred())
	})

	It("should equi-join", func() {
		iu, _ := FromTuples("IU", 2, Tuple{"u1", "a"}, Tuple{"u2", "b"})
		sq, _ := FromTuples("SQ", 2, Tuple{"a", "spg"}, Tuple{"a", "sulfur"}, Tuple{"c", "spg"})
		ret, err := NewJoin([]int{1}, []int{0}).Process(iu, sq)
		Expect(err).NotTo(HaveOccurred())
		Expect(ret.Arity()).To(Equal(3))
		Expect(ret.Tuples()).To(Equal([]Tuple{{"u1", "a", "spg"}, {"u1", "a", "sulfur"}}))
	})

	It("should validate the number of inputs", func() {
		_, err := NewJoin([]int{0}, []int{0}).Process(FromElems("U", "a"))
		Expect(err).To(HaveOccurred())
	})
})
