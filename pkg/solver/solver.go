// Package solver hands assembled models to numerical solvers. A Solver is a long-running,
// cancellable synchronous call that returns a termination status and, unless the model is
// infeasible, a value for every variable and for the objective.
//
// Two adapters are provided: Simplex, a reference solver for continuous linear models built on
// gonum, and External, which writes the model in CPLEX LP format, runs an external MINLP solver
// binary (SCIP by default) and reads back its solution file.
package solver

import (
	"context"
	"time"

	"github.com/l7mp/refinery/pkg/model"
)

// Status is the termination status of a solve.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusTimeLimit  Status = "time-limit"
	StatusError      Status = "error"
)

// Result is the outcome of a solve. Values is indexed by model.VarID and is nil when the solver
// produced no solution.
type Result struct {
	Solver    string        `json:"solver"`
	Status    Status        `json:"status"`
	Objective float64       `json:"objective"`
	Values    []float64     `json:"-"`
	Message   string        `json:"message,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// HasSolution is true if variable values are available.
func (r *Result) HasSolution() bool { return r.Values != nil }

// Value returns the value of a variable, zero if there is no solution.
func (r *Result) Value(id model.VarID) float64 {
	if r.Values == nil || int(id) >= len(r.Values) {
		return 0
	}
	return r.Values[id]
}

// Solver is a numerical solver.
type Solver interface {
	Name() string
	// Solve solves the model. Solver-side failures (infeasibility, time limit, crash) are reported
	// through Result.Status; the error return is reserved for models the adapter cannot express
	// and for local I/O failures.
	Solve(ctx context.Context, m *model.Model) (*Result, error)
}
