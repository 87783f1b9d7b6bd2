package assembly

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/l7mp/refinery/pkg/index"
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/topology"
)

// Options configures a Builder.
type Options struct {
	// Name is the model name.
	Name string
	// Sequential disables concurrent family generation.
	Sequential bool
	// CDU overrides the CDU yield formulation. Default: ProportionalCut.
	CDU CDUFormulation
	// Families overrides the constraint families. Default: DefaultFamilies(CDU).
	Families []Family
	Logger   logr.Logger
}

// Output is the result of a build.
type Output struct {
	Model    *model.Model
	Index    *index.Index
	Duration time.Duration
}

// Builder assembles models from a store. A Builder holds no per-build state: concurrent builds
// from the same store are independent.
type Builder struct {
	store    *topology.Store
	families []Family
	opts     Options
	log      logr.Logger
}

// DefaultFamilies returns the constraint families in generation order.
func DefaultFamilies(cdu CDUFormulation) []Family {
	if cdu == nil {
		cdu = ProportionalCut{}
	}
	return []Family{
		BatchAggregation{},
		MixerBalance{},
		UnitBalance{},
		CDUYield{Formulation: cdu},
		FixedYield{},
		DeltaBaseYield{},
		PropertyTransfer{},
		MixerQuality{},
		BlenderQuality{},
		Bounds{},
		SplitterProperty{},
		Inventory{},
		StreamContinuity{},
	}
}

// NewBuilder creates a builder for a store.
func NewBuilder(st *topology.Store, opts Options) *Builder {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	families := opts.Families
	if families == nil {
		families = DefaultFamilies(opts.CDU)
	}
	if opts.Name == "" {
		opts.Name = "refinery"
	}
	return &Builder{store: st, families: families, opts: opts, log: log.WithName("builder")}
}

// Build runs the index expander, the variable allocator, every constraint family and the objective
// assembler, and returns the assembled model.
func (b *Builder) Build(ctx context.Context) (*Output, error) {
	start := time.Now()

	ix, err := index.Expand(b.store)
	if err != nil {
		return nil, err
	}

	m := model.New(b.opts.Name)
	Allocate(m, ix, b.log)

	results := make([]*Context, len(b.families))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range b.families {
		run := func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := newContext(ix, m, b.log.WithName(f.Name()))
			if err := f.Generate(c); err != nil {
				return NewFamilyError(f.Name(), err)
			}
			results[i] = c
			return nil
		}
		if b.opts.Sequential {
			if err := run(); err != nil {
				return nil, err
			}
			continue
		}
		g.Go(run)
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range results {
		m.AddConstraints(c.Constraints()...)
		for name, n := range c.skipped {
			m.Skipped[name] += n
		}
		b.log.V(2).Info("family generated", "family", b.families[i].Name(),
			"constraints", len(c.Constraints()), "skipped", c.skipped)
	}

	oc := newContext(ix, m, b.log)
	m.Objective = Objective(oc)
	if err := oc.Err(); err != nil {
		return nil, NewFamilyError(ObjectiveName, err)
	}

	out := &Output{Model: m, Index: ix, Duration: time.Since(start)}
	b.log.V(1).Info("model assembled", "id", m.ID.String(), "variables", len(m.Variables),
		"constraints", len(m.Constraints), "duration", out.Duration)

	return out, nil
}
