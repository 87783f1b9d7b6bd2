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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/yaml"

	"github.com/l7mp/refinery/internal/buildinfo"
	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/casefile"
	"github.com/l7mp/refinery/pkg/config"
	"github.com/l7mp/refinery/pkg/planner"
	"github.com/l7mp/refinery/pkg/report"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
	"github.com/l7mp/refinery/pkg/visualize"
)

var (
	version    = "dev"
	commitHash = "n/a"
	buildDate  = "<unknown>"
)

var errUsage = errors.New("usage")

type command struct {
	name, help string
	run        func(ctx context.Context, r *runner) error
}

var commands = []command{
	{"build", "assemble the model and log its size", runBuild},
	{"summary", "assemble the model and print its summary", runSummary},
	{"solve", "assemble the model, solve it and print the solution report", runSolve},
	{"visualize", "render the process network as a diagram", runVisualize},
	{"version", "print the version", runVersion},
}

// runner holds the state shared by the commands.
type runner struct {
	caseFile, configFile, solverName, output, metricsFile, format, diagram, query string
	timeLimit                                                                     time.Duration
	sequential                                                                    bool

	config *config.Config
	log    logr.Logger
	info   buildinfo.BuildInfo
}

func main() {
	r := &runner{}
	flag.StringVar(&r.caseFile, "case", "", "The planning case file.")
	flag.StringVar(&r.configFile, "config", "", "The run configuration file. Default: built-in defaults.")
	flag.StringVar(&r.solverName, "solver", "", "Override the solver: \"simplex\" or an external solver binary.")
	flag.DurationVar(&r.timeLimit, "time-limit", 0, "Override the solver time limit.")
	flag.StringVar(&r.output, "output", "", "Write the report or diagram to this file instead of stdout.")
	flag.StringVar(&r.metricsFile, "metrics-file", "", "Dump the Prometheus metrics to this file on exit.")
	flag.StringVar(&r.format, "format", "text", "Report format: text or yaml.")
	flag.StringVar(&r.diagram, "diagram", "dot", "Diagram format: dot or mermaid.")
	flag.StringVar(&r.query, "query", "", "Print the report fields selected by a JSONPath query.")
	flag.BoolVar(&r.sequential, "sequential", false, "Generate the constraint families sequentially.")
	flag.Usage = usage

	opts := zap.Options{
		Development:     true,
		DestWriter:      os.Stderr,
		StacktraceLevel: zapcore.Level(3),
		TimeEncoder:     zapcore.RFC3339NanoTimeEncoder,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	logger := zap.New(zap.UseFlagOptions(&opts))
	ctrl.SetLogger(logger.WithName("refinery"))
	r.log = logger.WithName("refinery")
	setupLog := logger.WithName("setup")

	r.info = buildinfo.BuildInfo{Version: version, CommitHash: commitHash, BuildDate: buildDate}
	setupLog.V(1).Info("starting refinery", r.info.KeyValues()...)

	name := "solve"
	if flag.NArg() > 0 {
		name = flag.Arg(0)
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		usage()
		os.Exit(2)
	}

	ctx := ctrl.SetupSignalHandler()
	err := cmd.run(ctx, r)
	if r.metricsFile != "" {
		if merr := planner.WriteMetrics(r.metricsFile); merr != nil {
			setupLog.Error(merr, "cannot write metrics", "file", r.metricsFile)
		}
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		setupLog.Error(err, "command failed", "command", name)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <command>\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, c := range commands {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-10s %s\n", c.name, c.help)
	}
	fmt.Fprintln(flag.CommandLine.Output(), "\nFlags:")
	flag.PrintDefaults()
}

// loadConfig reads the configuration and applies the command line overrides.
func (r *runner) loadConfig() error {
	c, err := config.Load(r.configFile)
	if err != nil {
		return err
	}
	if r.solverName != "" {
		c.Solver.Name = r.solverName
	}
	if r.timeLimit > 0 {
		c.Solver.TimeLimit.Duration = r.timeLimit
	}
	if r.sequential {
		c.Build.Parallel = false
	}
	r.config = c
	return nil
}

// loadStore reads the case file into a validated store.
func (r *runner) loadStore() (string, *topology.Store, error) {
	if r.caseFile == "" {
		return "", nil, fmt.Errorf("%w: no case file given", errUsage)
	}
	if err := r.loadConfig(); err != nil {
		return "", nil, err
	}

	c, err := casefile.Load(r.caseFile)
	if err != nil {
		return "", nil, err
	}
	name := c.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(r.caseFile), filepath.Ext(r.caseFile))
	}

	in, err := c.Input()
	if err != nil {
		return "", nil, err
	}
	st, err := topology.New(in, topology.Options{Storage: r.config.Build.Storage})
	if err != nil {
		return "", nil, err
	}
	r.log.V(2).Info("case loaded", "case", name, "storage", st.StorageEnabled())
	return name, st, nil
}

// build loads the case and assembles its model.
func (r *runner) build(ctx context.Context) (*planner.Planner, error) {
	name, st, err := r.loadStore()
	if err != nil {
		return nil, err
	}
	p := planner.New(name, st, assembly.Options{
		Sequential: !r.config.Build.Parallel,
		Logger:     r.log,
	})
	if _, err := p.Build(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// withOutput runs fn on the output file or stdout.
func (r *runner) withOutput(fn func(w io.Writer) error) error {
	if r.output == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(r.output)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}

func runBuild(ctx context.Context, r *runner) error {
	p, err := r.build(ctx)
	if err != nil {
		return err
	}
	s, err := p.Summary()
	if err != nil {
		return err
	}
	r.log.Info("model built", "case", s.Name, "variables", s.Variables, "constraints", s.Constraints,
		"bilinear", s.Bilinear, "skipped", len(s.Skipped))
	return nil
}

func runSummary(ctx context.Context, r *runner) error {
	p, err := r.build(ctx)
	if err != nil {
		return err
	}
	s, err := p.Summary()
	if err != nil {
		return err
	}
	if r.query != "" {
		return r.printQuery(s, nil, nil)
	}
	return r.withOutput(func(w io.Writer) error {
		switch r.format {
		case "yaml":
			b, err := s.YAML()
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		case "text", "":
			return s.WriteText(w)
		default:
			return fmt.Errorf("%w: unknown report format %q", errUsage, r.format)
		}
	})
}

func runSolve(ctx context.Context, r *runner) error {
	p, err := r.build(ctx)
	if err != nil {
		return err
	}

	opts := r.config.ExternalOptions()
	opts.Logger = r.log
	s, err := solver.New(r.config.Solver.Name, opts)
	if err != nil {
		return err
	}

	res, err := p.Solve(ctx, s)
	if err != nil {
		return err
	}
	h, err := p.Highlights(res, r.config.Report.Threshold, r.config.Report.Limit)
	if err != nil {
		return err
	}

	if r.query != "" {
		sum, err := p.Summary()
		if err != nil {
			return err
		}
		return r.printQuery(sum, res, h)
	}

	return r.withOutput(func(w io.Writer) error {
		switch r.format {
		case "yaml":
			sum, err := p.Summary()
			if err != nil {
				return err
			}
			doc, err := report.NewDocument(sum, res, h)
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}
			_, err = w.Write(b)
			return err
		case "text", "":
			return report.WriteSolution(w, p.Name(), res, h)
		default:
			return fmt.Errorf("%w: unknown report format %q", errUsage, r.format)
		}
	})
}

// printQuery prints the report fields matching the query, one YAML document per match.
func (r *runner) printQuery(s *report.Summary, res *solver.Result, h *report.Highlights) error {
	doc, err := report.NewDocument(s, res, h)
	if err != nil {
		return err
	}
	vs, err := doc.Select(r.query)
	if err != nil {
		return err
	}
	return r.withOutput(func(w io.Writer) error {
		for i, v := range vs {
			if i > 0 {
				fmt.Fprintln(w, "---")
			}
			b, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			if _, err := w.Write(b); err != nil {
				return err
			}
		}
		return nil
	})
}

func runVisualize(_ context.Context, r *runner) error {
	name, st, err := r.loadStore()
	if err != nil {
		return err
	}
	gen, err := visualize.NewGenerator(r.diagram)
	if err != nil {
		return err
	}
	g := visualize.BuildGraph(name, st)
	if orphans := g.Orphans(); len(orphans) > 0 {
		r.log.Info("streams not connected to any unit", "streams", orphans)
	}
	if dead := g.Unreachable(); len(dead) > 0 {
		r.log.Info("network nodes no material stream reaches", "nodes", dead)
	}
	return r.withOutput(func(w io.Writer) error {
		_, err := io.WriteString(w, gen.Generate(g))
		return err
	})
}

func runVersion(_ context.Context, r *runner) error {
	fmt.Println(r.info.String())
	if v := r.info.SemVer(); v != nil && v.Prerelease() != "" {
		fmt.Printf("pre-release build: %s\n", v.Prerelease())
	}
	return nil
}
