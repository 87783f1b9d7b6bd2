package report

import (
	"bytes"
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"sigs.k8s.io/yaml"

	"github.com/l7mp/refinery/internal/testutils"
	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

func buildCase(in *topology.Input, mode topology.StorageMode) *assembly.Output {
	st, err := topology.New(in, topology.Options{Storage: mode})
	Expect(err).NotTo(HaveOccurred())
	out, err := assembly.NewBuilder(st, assembly.Options{Name: "case"}).Build(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return out
}

var _ = Describe("Report", func() {
	var (
		out *assembly.Output
		res *solver.Result
	)

	BeforeEach(func() {
		out = buildCase(testutils.BlenderCase(), topology.StorageAuto)
		var err error
		res, err = solver.NewSimplex(GinkgoLogr).Solve(context.Background(), out.Model)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(solver.StatusOptimal))
	})

	It("should summarize a build", func() {
		s := NewSummary(out)
		Expect(s.Name).To(Equal("case"))
		Expect(s.Variables).To(Equal(9))
		Expect(s.Continuous).To(Equal(9))
		Expect(s.Binary).To(Equal(0))
		Expect(s.Constraints).To(Equal(6))
		Expect(s.Sets).To(HaveKeyWithValue(topology.SetS, 2))
		Expect(s.Units).To(HaveKeyWithValue("blender", 1))
		Expect(s.Units).To(HaveKeyWithValue("mixer", 0))

		var buf bytes.Buffer
		Expect(s.WriteText(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Variables: 9\n"))
		Expect(buf.String()).To(ContainSubstring("  blender (UBLD): 1\n"))
		Expect(buf.String()).To(ContainSubstring("  streams (S): 2\n"))

		y, err := s.YAML()
		Expect(err).NotTo(HaveOccurred())
		back := Summary{}
		Expect(yaml.Unmarshal(y, &back)).To(Succeed())
		Expect(back.Families).To(Equal(s.Families))
	})

	It("should report skipped constraints", func() {
		s := NewSummary(buildCase(testutils.FixedYieldCase(), topology.StorageAuto))
		var buf bytes.Buffer
		Expect(s.WriteText(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("  fixed_yield: 2\n"))
	})

	It("should highlight material and product flows", func() {
		h := NewHighlights(out.Model, out.Index.Store(), res, DefaultThreshold, DefaultLimit)
		Expect(h.Products).To(HaveLen(1))
		Expect(h.Products[0].Stream).To(Equal("gasoline"))
		Expect(h.Products[0].Value).To(BeNumerically("~", 100, 1e-6))
		Expect(h.Materials).To(HaveLen(1))
		Expect(h.Materials[0].Variable).To(Equal(assembly.VarFVO))

		var buf bytes.Buffer
		Expect(WriteSolution(&buf, "blend", res, h)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Status: optimal\n"))
		Expect(buf.String()).To(ContainSubstring("Objective (profit): 500.00\n"))
		Expect(buf.String()).To(ContainSubstring("  FVI[gasoline,1] = 100.0000\n"))
	})

	It("should limit and threshold the highlights", func() {
		o := buildCase(testutils.StorageCase(), topology.StorageOff)
		values := make([]float64, len(o.Model.Variables))
		for i := range values {
			values[i] = 1
		}
		fake := &solver.Result{Status: solver.StatusFeasible, Values: values}

		h := NewHighlights(o.Model, o.Index.Store(), fake, DefaultThreshold, 2)
		Expect(h.Products).To(HaveLen(2))
		Expect(h.Products[1].Period).To(Equal("2"))
		Expect(NewHighlights(o.Model, o.Index.Store(), fake, 0, 0).Products).To(HaveLen(3))
		Expect(NewHighlights(o.Model, o.Index.Store(), fake, 1, 0).Products).To(BeEmpty())
	})

	It("should report a failed solve", func() {
		failed := &solver.Result{Solver: "simplex", Status: solver.StatusInfeasible}
		h := NewHighlights(out.Model, out.Index.Store(), failed, DefaultThreshold, DefaultLimit)
		Expect(h.Products).To(BeEmpty())
		var buf bytes.Buffer
		Expect(WriteSolution(&buf, "blend", failed, h)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("No feasible solution found"))
	})

	It("should select from the report document", func() {
		h := NewHighlights(out.Model, out.Index.Store(), res, DefaultThreshold, DefaultLimit)
		doc, err := NewDocument(NewSummary(out), res, h)
		Expect(err).NotTo(HaveOccurred())

		v, err := doc.Select("$.summary.variables")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal([]any{int64(9)}))

		v, err = doc.Select("$.highlights.products[*].stream")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal([]any{"gasoline"}))

		v, err = doc.Select("$.result.status")
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal([]any{"optimal"}))
	})
})
