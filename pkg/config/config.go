// Package config holds the run configuration of the refinery planner: which solver to run and how,
// how to build the model and what to report.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/l7mp/refinery/pkg/report"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
)

// ErrInvalidConfig means a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Solver configures the solver hand-off.
type Solver struct {
	// Name is "simplex" for the built-in linear solver or the name of an external solver.
	Name string `json:"name,omitempty"`
	// Binary overrides the external solver executable.
	Binary    string            `json:"binary,omitempty"`
	TimeLimit metav1.Duration   `json:"timeLimit,omitempty"`
	Gap       float64           `json:"gap,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	WorkDir   string            `json:"workDir,omitempty"`
	KeepFiles bool              `json:"keepFiles,omitempty"`
}

// Build configures model assembly.
type Build struct {
	Parallel bool                 `json:"parallel"`
	Storage  topology.StorageMode `json:"storage,omitempty"`
}

// Report configures the solution report.
type Report struct {
	Threshold float64 `json:"threshold"`
	Limit     int     `json:"limit"`
}

// Config is the run configuration.
type Config struct {
	Solver Solver `json:"solver"`
	Build  Build  `json:"build"`
	Report Report `json:"report"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Solver: Solver{
			Name:      solver.DefaultBinary,
			TimeLimit: metav1.Duration{Duration: solver.DefaultTimeLimit},
		},
		Build: Build{
			Parallel: true,
			Storage:  topology.StorageAuto,
		},
		Report: Report{
			Threshold: report.DefaultThreshold,
			Limit:     report.DefaultLimit,
		},
	}
}

// Load reads a configuration file on top of the defaults. An empty path or a missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Solver.TimeLimit.Duration < 0:
		return fmt.Errorf("%w: negative time limit %s", ErrInvalidConfig, c.Solver.TimeLimit.Duration)
	case c.Solver.Gap < 0:
		return fmt.Errorf("%w: negative gap %g", ErrInvalidConfig, c.Solver.Gap)
	case c.Report.Threshold < 0:
		return fmt.Errorf("%w: negative report threshold %g", ErrInvalidConfig, c.Report.Threshold)
	case c.Report.Limit < 0:
		return fmt.Errorf("%w: negative report limit %d", ErrInvalidConfig, c.Report.Limit)
	}
	switch c.Build.Storage {
	case "", topology.StorageAuto, topology.StorageOn, topology.StorageOff:
	default:
		return fmt.Errorf("%w: unknown storage mode %q", ErrInvalidConfig, c.Build.Storage)
	}
	return nil
}

// ExternalOptions returns the external solver options of the configuration.
func (c *Config) ExternalOptions() solver.ExternalOptions {
	return solver.ExternalOptions{
		Binary:    c.Solver.Binary,
		TimeLimit: c.Solver.TimeLimit.Duration,
		Gap:       c.Solver.Gap,
		Options:   c.Solver.Options,
		WorkDir:   c.Solver.WorkDir,
		KeepFiles: c.Solver.KeepFiles,
	}
}

// TimeLimit is a convenience accessor.
func (c *Config) TimeLimit() time.Duration { return c.Solver.TimeLimit.Duration }
