/*
Copyright 2022 The l7mp/stunner team.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package integration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/casefile"
	"github.com/l7mp/refinery/pkg/config"
	"github.com/l7mp/refinery/pkg/planner"
	"github.com/l7mp/refinery/pkg/report"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
	"github.com/l7mp/refinery/pkg/visualize"
)

const (
	timeout  = time.Second * 10
	loglevel = -10
	//loglevel = -1
)

var (
	ctx              context.Context
	cancel           context.CancelFunc
	logger, setupLog logr.Logger
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Refinery Integration Suite")
}

var _ = BeforeSuite(func() {
	opts := zap.Options{
		Development:     true,
		DestWriter:      GinkgoWriter,
		StacktraceLevel: zapcore.Level(3),
		TimeEncoder:     zapcore.RFC3339NanoTimeEncoder,
		Level:           zapcore.Level(loglevel),
	}
	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	logger = ctrl.Log
	setupLog = logger.WithName("setup")

	ctx, cancel = context.WithTimeout(context.Background(), timeout)
})

var _ = AfterSuite(func() {
	By("tearing down the test environment")
	cancel()
})

// loadCase reads an example case into a planner.
func loadCase(path string, cfg *config.Config) *planner.Planner {
	c, err := casefile.Load(path)
	Expect(err).NotTo(HaveOccurred())
	in, err := c.Input()
	Expect(err).NotTo(HaveOccurred())
	st, err := topology.New(in, topology.Options{Storage: cfg.Build.Storage})
	Expect(err).NotTo(HaveOccurred())
	return planner.New(c.Name, st, assembly.Options{Sequential: !cfg.Build.Parallel, Logger: logger})
}

var _ = Describe("Blend case", Ordered, func() {
	var p *planner.Planner

	BeforeAll(func() {
		setupLog.Info("loading the blend case")
		p = loadCase("../examples/blend/case.yaml", config.Default())
	})

	It("should build the model", func() {
		m, err := p.Build(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Name).To(Equal("blend"))
		Expect(m.Variables).To(HaveLen(9))
		Expect(m.Constraints).To(HaveLen(6))
	})

	It("should solve to the known optimum and report the flows", func() {
		s, err := solver.New(solver.SimplexName, solver.ExternalOptions{Logger: logger})
		Expect(err).NotTo(HaveOccurred())
		res, err := p.Solve(ctx, s)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(solver.StatusOptimal))
		Expect(res.Objective).To(BeNumerically("~", 500, 1e-6))

		h, err := p.Highlights(res, report.DefaultThreshold, report.DefaultLimit)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Products).To(HaveLen(1))
		Expect(h.Products[0].Stream).To(Equal("gasoline"))
		Expect(h.Products[0].Value).To(BeNumerically("~", 100, 1e-6))

		var b bytes.Buffer
		Expect(report.WriteSolution(&b, p.Name(), res, h)).To(Succeed())
		Expect(b.String()).To(ContainSubstring("Objective (profit): 500.00"))

		sum, err := p.Summary()
		Expect(err).NotTo(HaveOccurred())
		doc, err := report.NewDocument(sum, res, h)
		Expect(err).NotTo(HaveOccurred())
		vs, err := doc.Select("$.highlights.products[*].stream")
		Expect(err).NotTo(HaveOccurred())
		Expect(vs).To(Equal([]any{"gasoline"}))
	})
})

var _ = Describe("Refinery case", Ordered, func() {
	var (
		cfg *config.Config
		p   *planner.Planner
	)

	BeforeAll(func() {
		var err error
		cfg, err = config.Load("../examples/refinery/config.yaml")
		Expect(err).NotTo(HaveOccurred())
		p = loadCase("../examples/refinery/case.yaml", cfg)
	})

	It("should load the run configuration", func() {
		Expect(cfg.Solver.Name).To(Equal("scip"))
		Expect(cfg.TimeLimit()).To(Equal(time.Hour))
		Expect(cfg.Build.Storage).To(Equal(topology.StorageAuto))
	})

	It("should assemble the full network", func() {
		_, err := p.Build(ctx)
		Expect(err).NotTo(HaveOccurred())

		s, err := p.Summary()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("refinery"))
		Expect(s.Storage).To(BeFalse())
		Expect(s.Bilinear).To(BeNumerically(">", 0))
		Expect(s.Families).To(HaveKeyWithValue("cdu_yield", 12))
		Expect(s.Families).To(HaveKeyWithValue("fixed_yield", 2))
		Expect(s.Units).To(HaveKeyWithValue("blender", 1))
	})

	It("should refuse to solve the nonlinear model with the linear solver", func() {
		_, err := p.Solve(ctx, solver.NewSimplex(logger))
		Expect(err).To(MatchError(solver.ErrUnsupported))
	})

	It("should render a connected network", func() {
		g := visualize.BuildGraph(p.Name(), p.Store())
		Expect(g.Orphans()).To(BeEmpty())
		Expect(g.Unreachable()).To(BeEmpty())

		gen, err := visualize.NewGenerator("mermaid")
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.Generate(g)).To(ContainSubstring("flowchart LR;"))
	})
})
