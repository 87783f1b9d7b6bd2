package visualize

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/refinery/internal/testutils"
	"github.com/l7mp/refinery/pkg/topology"
)

func TestVisualize(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Visualize Suite")
}

var _ = Describe("Visualize", func() {
	var g *Graph

	BeforeEach(func() {
		st, err := topology.New(testutils.RefineryCase(), topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		g = BuildGraph("refinery", st)
	})

	It("should build the network graph", func() {
		Expect(g.Units).To(HaveLen(6))
		Expect(g.Units[0]).To(Equal(UnitNode{Name: "cdu", Kind: topology.UnitCDU, Batches: []string{"m1", "m2"}}))
		Expect(g.Units[3].Batches).To(BeEmpty())
		Expect(g.Streams).To(HaveLen(12))
		Expect(g.Streams[0].Role).To(Equal(RoleMaterial))
		Expect(g.Streams[0].Properties).To(Equal([]string{"spg", "sulfur"}))
		Expect(g.Flows).To(HaveLen(8 + 11))
		Expect(g.Transfers).To(ContainElement(Transfer{From: "gasoil", To: "diesel", Property: "sulfur"}))
		Expect(g.Orphans()).To(BeEmpty())
	})

	It("should render DOT", func() {
		gen, err := NewGenerator("dot")
		Expect(err).NotTo(HaveOccurred())
		out := gen.Generate(g)
		Expect(out).To(HavePrefix("digraph"))
		Expect(out).To(ContainSubstring(`label="crude\n[spg, sulfur]"`))
		Expect(out).To(ContainSubstring(`label="cdu\n`))
		Expect(out).To(ContainSubstring("dashed"))
		Expect(strings.Count(out, "->")).To(Equal(8 + 11 + 2))
	})

	It("should render Mermaid", func() {
		gen, err := NewGenerator("mermaid")
		Expect(err).NotTo(HaveOccurred())
		out := gen.Generate(g)
		Expect(out).To(HavePrefix("```mermaid\n"))
		Expect(out).To(ContainSubstring("flowchart LR;"))
		Expect(out).To(ContainSubstring(`[["blend`))
		Expect(out).To(ContainSubstring(`(["crude`))
		Expect(out).To(ContainSubstring("fill:#98FB98"))
		Expect(out).To(ContainSubstring(`|"sulfur"|`))
		Expect(out).NotTo(ContainSubstring("dashed"))
		Expect(out).To(HaveSuffix("```\n"))
	})

	It("should reject unknown formats", func() {
		_, err := NewGenerator("svg")
		Expect(err).To(HaveOccurred())
	})

	It("should find the parts of the network no material reaches", func() {
		g := &Graph{
			Units: []UnitNode{{Name: "blend"}, {Name: "dead"}},
			Streams: []StreamNode{
				{Name: "crude", Role: RoleMaterial},
				{Name: "gasoline", Role: RoleProduct},
				{Name: "slop", Role: RoleIntermediate},
				{Name: "waste", Role: RoleIntermediate},
			},
			Flows: []Connection{
				{Unit: "blend", Stream: "crude", Input: true},
				{Unit: "blend", Stream: "gasoline"},
				{Unit: "dead", Stream: "slop", Input: true},
				{Unit: "dead", Stream: "waste"},
			},
		}
		Expect(g.Unreachable()).To(Equal([]string{"u_dead", "s_slop", "s_waste"}))
		Expect(g.Network().Roots()).To(Equal([]string{"s_crude", "s_slop"}))
		Expect(g.Orphans()).To(BeEmpty())
	})
})
