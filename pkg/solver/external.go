package solver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/l7mp/refinery/pkg/model"
)

const (
	// DefaultBinary is the external solver executable.
	DefaultBinary = "scip"
	// DefaultTimeLimit is the solver time limit.
	DefaultTimeLimit = 18000 * time.Second
	// killGrace is the time the solver gets past its own time limit before it is killed.
	killGrace = 30 * time.Second
)

// ExternalOptions configures the external solver adapter.
type ExternalOptions struct {
	// Binary is the solver executable, looked up in PATH. Default: scip.
	Binary string
	// TimeLimit is passed to the solver; the process is killed shortly after.
	TimeLimit time.Duration
	// Gap is the relative optimality gap; zero keeps the solver default.
	Gap float64
	// Options are extra solver parameters, e.g., "limits/nodes": "1000".
	Options map[string]string
	// WorkDir holds the model, command and solution files. Default: a fresh temporary directory.
	WorkDir string
	// KeepFiles retains the temporary directory.
	KeepFiles bool
	Logger    logr.Logger
}

// External runs an external solver binary in batch mode.
type External struct {
	opts ExternalOptions
	log  logr.Logger
}

// NewExternal creates an external solver adapter.
func NewExternal(opts ExternalOptions) *External {
	if opts.Binary == "" {
		opts.Binary = DefaultBinary
	}
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = DefaultTimeLimit
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &External{opts: opts, log: log.WithName("external").WithValues("binary", opts.Binary)}
}

func (e *External) Name() string { return filepath.Base(e.opts.Binary) }

// Solve writes the model, runs the solver and parses its solution file.
func (e *External) Solve(ctx context.Context, m *model.Model) (*Result, error) {
	start := time.Now()

	dir := e.opts.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "refinery-")
		if err != nil {
			return nil, fmt.Errorf("cannot create work directory: %w", err)
		}
		dir = tmp
		if !e.opts.KeepFiles {
			defer os.RemoveAll(tmp)
		}
	}

	lpFile := filepath.Join(dir, "model.lp")
	solFile := filepath.Join(dir, "model.sol")
	cmdFile := filepath.Join(dir, "commands.txt")

	if err := writeFile(lpFile, func(w io.Writer) error { return WriteLP(w, m) }); err != nil {
		return nil, err
	}
	if err := os.WriteFile(cmdFile, []byte(e.Commands(lpFile, solFile)), 0o644); err != nil {
		return nil, fmt.Errorf("cannot write command file: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.opts.TimeLimit+killGrace)
	defer cancel()

	e.log.V(1).Info("starting solver", "dir", dir, "time-limit", e.opts.TimeLimit)
	cmd := exec.CommandContext(runCtx, e.opts.Binary, "-b", cmdFile)
	out, runErr := cmd.CombinedOutput()
	e.log.V(4).Info("solver output", "output", string(out))

	res := &Result{Solver: e.Name(), Elapsed: time.Since(start)}
	if runErr != nil {
		switch {
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			res.Status, res.Message = StatusTimeLimit, "solver killed after time limit"
		case errors.Is(runCtx.Err(), context.Canceled):
			res.Status, res.Message = StatusError, "solve canceled"
		default:
			res.Status, res.Message = StatusError, runErr.Error()
		}
		e.log.Info("solver failed", "status", res.Status, "reason", res.Message)
		return res, nil
	}

	f, err := os.Open(solFile)
	if err != nil {
		res.Status, res.Message = StatusError, "no solution file: "+err.Error()
		return res, nil
	}
	defer f.Close()

	sol, err := ParseSolution(f, len(m.Variables))
	if err != nil {
		res.Status, res.Message = StatusError, err.Error()
		return res, nil
	}
	res.Status, res.Objective, res.Values, res.Message = sol.Status, sol.Objective, sol.Values, sol.Raw
	return res, nil
}

// Commands returns the batch command script run by the solver.
func (e *External) Commands(lpFile, solFile string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "set limits time %d\n", int64(e.opts.TimeLimit.Seconds()))
	if e.opts.Gap > 0 {
		fmt.Fprintf(&b, "set limits gap %s\n", num(e.opts.Gap))
	}
	keys := make([]string, 0, len(e.opts.Options))
	for k := range e.opts.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "set %s %s\n", strings.ReplaceAll(k, "/", " "), e.opts.Options[k])
	}
	fmt.Fprintf(&b, "read %s\noptimize\nwrite solution %s\nquit\n", lpFile, solFile)
	return b.String()
}

// Solution is a parsed solution file.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	// Raw is the status line as written by the solver.
	Raw string
}

// ParseSolution reads a SCIP solution file. Variables absent from the file are zero.
func ParseSolution(r io.Reader, numVars int) (*Solution, error) {
	sol := &Solution{Status: StatusError}
	values := make([]float64, numVars)
	found := false

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "solution status:"):
			sol.Raw = strings.TrimSpace(strings.TrimPrefix(line, "solution status:"))
			sol.Status = statusOf(sol.Raw)
		case strings.HasPrefix(line, "objective value:"):
			v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, "objective value:")), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid objective line %q: %w", line, err)
			}
			sol.Objective, found = v, true
		case strings.HasPrefix(line, "no solution available"):
			found = false
		default:
			fields := strings.Fields(line)
			if len(fields) < 2 || !strings.HasPrefix(fields[0], "x") {
				continue
			}
			id, err := strconv.Atoi(fields[0][1:])
			if err != nil || id < 0 || id >= numVars {
				return nil, fmt.Errorf("unknown column %q in solution", fields[0])
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", fields[0], err)
			}
			values[id] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if found && sol.Status != StatusInfeasible {
		sol.Values = values
		if sol.Status == StatusError {
			sol.Status = StatusFeasible
		}
	}
	return sol, nil
}

func statusOf(raw string) Status {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "infeasible"):
		return StatusInfeasible
	case strings.Contains(s, "optimal"):
		return StatusOptimal
	case strings.Contains(s, "time limit"):
		return StatusTimeLimit
	case strings.Contains(s, "limit"):
		return StatusFeasible
	default:
		return StatusError
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}
