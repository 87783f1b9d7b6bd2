package dag

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDAG(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DAG")
}

var _ = Describe("Graph", func() {
	var g *Graph

	BeforeEach(func() {
		g = New()
		g.AddEdge("crude", "cdu")
		g.AddEdge("cdu", "naphtha")
		g.AddEdge("cdu", "resid")
		g.AddEdge("naphtha", "blend")
		g.AddNode("idle")
	})

	It("should keep node order", func() {
		Expect(g.Nodes).To(Equal([]string{"crude", "cdu", "naphtha", "resid", "blend", "idle"}))
		Expect(g.AddNode("cdu")).To(BeFalse())
		Expect(g.Edges("cdu")).To(Equal([]string{"naphtha", "resid"}))
		Expect(g.HasEdge("cdu", "crude")).To(BeFalse())
	})

	It("should find the roots", func() {
		Expect(g.Roots()).To(Equal([]string{"crude", "idle"}))
	})

	It("should compute reachability", func() {
		r := g.Reachable("crude")
		Expect(r).To(HaveLen(5))
		Expect(r).NotTo(HaveKey("idle"))
		Expect(g.Reachable("bogus")).To(BeEmpty())
		Expect(g.Reachable("naphtha")).To(Equal(map[string]bool{"naphtha": true, "blend": true}))
	})
})
