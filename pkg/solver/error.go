package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported means the model uses a feature the adapter cannot express.
	ErrUnsupported = errors.New("unsupported model")
	// ErrNoObjective means the model has no objective.
	ErrNoObjective = errors.New("model has no objective")
	// ErrUnknownSolver is returned by New for an unknown solver name.
	ErrUnknownSolver = errors.New("unknown solver")
)

func NewUnsupportedError(solver, what string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnsupported, solver, what)
}
