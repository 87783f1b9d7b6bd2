package solver

import (
	"fmt"
	"os/exec"
)

// SimplexName selects the built-in simplex solver in New.
const SimplexName = "simplex"

// New returns the solver for a name: "simplex" is the built-in linear solver, any other name is an
// external solver binary that must be found in PATH.
func New(name string, opts ExternalOptions) (Solver, error) {
	if name == SimplexName {
		return NewSimplex(opts.Logger), nil
	}
	if name == "" {
		name = DefaultBinary
	}
	if opts.Binary == "" {
		opts.Binary = name
	}
	if _, err := exec.LookPath(opts.Binary); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownSolver, name, err)
	}
	return NewExternal(opts), nil
}
