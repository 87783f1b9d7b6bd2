// Package planner drives a refinery planning case through its lifecycle: it assembles the model
// from a validated store, reports its size and hands it to a solver. Summaries and solves require
// a built model.
package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/report"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
)

// Planner is a planning case. It is safe for concurrent use; a rebuild replaces the model.
type Planner struct {
	name   string
	store  *topology.Store
	opts   assembly.Options
	output *assembly.Output
	mu     sync.RWMutex
	log    logr.Logger
}

// New creates a planner for a store.
func New(name string, st *topology.Store, opts assembly.Options) *Planner {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	opts.Name = name
	opts.Logger = log
	return &Planner{name: name, store: st, opts: opts, log: log.WithName("planner").WithValues("case", name)}
}

// Name returns the case name.
func (p *Planner) Name() string { return p.name }

// Store returns the topology store of the case.
func (p *Planner) Store() *topology.Store { return p.store }

// Build assembles the model.
func (p *Planner) Build(ctx context.Context) (*model.Model, error) {
	p.log.V(1).Info("building model")
	out, err := assembly.NewBuilder(p.store, p.opts).Build(ctx)
	if err != nil {
		refineryBuildTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("cannot build case %s: %w", p.name, err)
	}

	refineryBuildTotal.WithLabelValues("success").Inc()
	refineryBuildDuration.Observe(out.Duration.Seconds())
	refineryModelVariables.Set(float64(len(out.Model.Variables)))
	refineryModelConstraints.Reset()
	for name, n := range out.Model.Stats().ConstraintsByName {
		refineryModelConstraints.WithLabelValues(name).Set(float64(n))
	}

	p.mu.Lock()
	p.output = out
	p.mu.Unlock()

	p.log.Info("model built", "id", out.Model.ID.String(), "variables", len(out.Model.Variables),
		"constraints", len(out.Model.Constraints), "duration", out.Duration)
	return out.Model, nil
}

// Output returns the last build.
func (p *Planner) Output() (*assembly.Output, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.output == nil {
		return nil, ErrModelNotBuilt
	}
	return p.output, nil
}

// Model returns the last assembled model.
func (p *Planner) Model() (*model.Model, error) {
	out, err := p.Output()
	if err != nil {
		return nil, err
	}
	return out.Model, nil
}

// Summary reports the size of the assembled model.
func (p *Planner) Summary() (*report.Summary, error) {
	out, err := p.Output()
	if err != nil {
		return nil, err
	}
	return report.NewSummary(out), nil
}

// Solve hands the assembled model to a solver.
func (p *Planner) Solve(ctx context.Context, s solver.Solver) (*solver.Result, error) {
	m, err := p.Model()
	if err != nil {
		return nil, err
	}

	log := p.log.WithValues("solver", s.Name())
	log.V(1).Info("solving", "model", m.ID.String())
	res, err := s.Solve(ctx, m)
	if err != nil {
		refinerySolveTotal.WithLabelValues(s.Name(), string(solver.StatusError)).Inc()
		return nil, fmt.Errorf("solver %s: %w", s.Name(), err)
	}

	refinerySolveTotal.WithLabelValues(res.Solver, string(res.Status)).Inc()
	refinerySolveDuration.WithLabelValues(res.Solver).Observe(res.Elapsed.Seconds())
	log.Info("solve finished", "status", res.Status, "objective", res.Objective, "elapsed", res.Elapsed)
	return res, nil
}

// Highlights selects the reportable flows of a solution of the assembled model.
func (p *Planner) Highlights(res *solver.Result, threshold float64, limit int) (*report.Highlights, error) {
	m, err := p.Model()
	if err != nil {
		return nil, err
	}
	return report.NewHighlights(m, p.store, res, threshold, limit), nil
}
