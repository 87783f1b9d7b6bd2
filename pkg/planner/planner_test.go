package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/l7mp/refinery/internal/testutils"
	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
)

var (
	loglevel = -10
	logger   = zap.New(zap.UseFlagOptions(&zap.Options{
		Development:     true,
		DestWriter:      GinkgoWriter,
		StacktraceLevel: zapcore.Level(3),
		TimeEncoder:     zapcore.RFC3339NanoTimeEncoder,
		Level:           zapcore.Level(loglevel),
	}))
)

func TestPlanner(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Planner Suite")
}

var _ = Describe("Planner", func() {
	var p *Planner

	BeforeEach(func() {
		st, err := topology.New(testutils.BlenderCase(), topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		p = New("blend", st, assembly.Options{Logger: logger})
	})

	It("should refuse to report or solve before the build", func() {
		_, err := p.Summary()
		Expect(errors.Is(err, ErrModelNotBuilt)).To(BeTrue())
		_, err = p.Solve(context.Background(), solver.NewSimplex(logger))
		Expect(errors.Is(err, ErrModelNotBuilt)).To(BeTrue())
		_, err = p.Highlights(&solver.Result{}, 0, 0)
		Expect(errors.Is(err, ErrModelNotBuilt)).To(BeTrue())
	})

	It("should build, summarize and solve", func() {
		m, err := p.Build(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("blend"))

		s, err := p.Summary()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Variables).To(Equal(len(m.Variables)))

		before := testutil.ToFloat64(refinerySolveTotal.WithLabelValues("simplex", "optimal"))
		res, err := p.Solve(context.Background(), solver.NewSimplex(logger))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(solver.StatusOptimal))
		Expect(res.Objective).To(BeNumerically("~", 500, 1e-6))
		Expect(testutil.ToFloat64(refinerySolveTotal.WithLabelValues("simplex", "optimal"))).To(Equal(before + 1))
		Expect(testutil.ToFloat64(refineryModelConstraints.WithLabelValues("stream_continuity"))).To(Equal(2.0))

		h, err := p.Highlights(res, 0.01, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Products).To(HaveLen(1))
	})

	It("should surface adapter errors", func() {
		st, err := topology.New(testutils.StorageCase(), topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		p := New("tank", st, assembly.Options{})
		_, err = p.Build(context.Background())
		Expect(err).NotTo(HaveOccurred())
		_, err = p.Solve(context.Background(), solver.NewSimplex(logger))
		Expect(errors.Is(err, solver.ErrUnsupported)).To(BeTrue())
	})

	It("should wrap build errors", func() {
		in := testutils.BlenderCase()
		in.AddTuple(topology.SetIU, "ghost", "crude")
		st, err := topology.New(in, topology.Options{})
		Expect(err).NotTo(HaveOccurred())
		_, err = New("bad", st, assembly.Options{}).Build(context.Background())
		Expect(errors.Is(err, topology.ErrIntegrity)).To(BeTrue())
	})

	It("should export metrics to a text file", func() {
		_, err := p.Build(context.Background())
		Expect(err).NotTo(HaveOccurred())
		dir, err := os.MkdirTemp("", "refinery-metrics-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		file := filepath.Join(dir, "refinery.prom")
		Expect(WriteMetrics(file)).To(Succeed())
		b, err := os.ReadFile(file)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(ContainSubstring("refinery_build_total{outcome=\"success\"}"))
		Expect(string(b)).To(ContainSubstring("refinery_model_variables 9"))
	})
})
