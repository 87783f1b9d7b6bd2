package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/l7mp/refinery/pkg/model"
)

const presolveEps = 1e-12

// Simplex solves continuous linear models with the gonum simplex method. Models with binary
// variables or bilinear terms are rejected with ErrUnsupported.
type Simplex struct {
	// Tolerance is passed to the simplex method. Zero selects the gonum default.
	Tolerance float64
	log       logr.Logger
}

// NewSimplex creates a simplex solver.
func NewSimplex(log logr.Logger) *Simplex {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Simplex{log: log.WithName("simplex")}
}

func (s *Simplex) Name() string { return "simplex" }

// Solve converts the model into standard form min cᵀx s.t. Ax = b, x >= 0 and runs the simplex.
func (s *Simplex) Solve(ctx context.Context, m *model.Model) (*Result, error) {
	start := time.Now()
	if m.Objective == nil {
		return nil, ErrNoObjective
	}

	sf, err := newStandardForm(m)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return &Result{Solver: s.Name(), Status: StatusTimeLimit, Message: err.Error()}, nil
	}

	res := &Result{Solver: s.Name()}
	defer func() { res.Elapsed = time.Since(start) }()

	if msg := sf.presolve(); msg != "" {
		res.Status, res.Message = sf.status, msg
		s.log.V(1).Info("presolve terminated", "status", res.Status, "reason", msg)
		return res, nil
	}

	s.log.V(1).Info("solving", "rows", len(sf.rows), "columns", len(sf.c))

	if len(sf.rows) > len(sf.c) {
		res.Status = StatusError
		res.Message = fmt.Sprintf("rank deficient: %d rows over %d columns", len(sf.rows), len(sf.c))
		return res, nil
	}

	x := []float64{}
	if len(sf.rows) > 0 {
		A := mat.NewDense(len(sf.rows), len(sf.c), sf.dense())
		_, x, err = lp.Simplex(sf.c, A, sf.b, s.Tolerance, nil)
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			res.Status, res.Message = StatusInfeasible, err.Error()
			return res, nil
		case errors.Is(err, lp.ErrUnbounded):
			res.Status, res.Message = StatusError, "unbounded: "+err.Error()
			return res, nil
		case err != nil:
			res.Status, res.Message = StatusError, err.Error()
			return res, nil
		}
	} else {
		x = make([]float64, len(sf.c))
	}

	res.Values = sf.recover(x)
	res.Objective = m.Objective.Expr.Eval(res.Values)
	res.Status = StatusOptimal
	return res, nil
}

// column maps a standard-form column to a model variable: x_var += sign·col. Slack columns have
// no variable.
type column struct {
	v     model.VarID
	sign  float64
	slack bool
}

type standardForm struct {
	m      *model.Model
	cols   []column
	offset []float64
	c      []float64
	rows   []map[int]float64
	b      []float64
	status Status
}

func newStandardForm(m *model.Model) (*standardForm, error) {
	sf := &standardForm{m: m, offset: make([]float64, len(m.Variables))}
	varCols := make([][]int, len(m.Variables))

	addCol := func(col column) int {
		sf.cols = append(sf.cols, col)
		sf.c = append(sf.c, 0)
		return len(sf.cols) - 1
	}

	var bounds []int
	for _, v := range m.Variables {
		if v.IsInteger() {
			return nil, NewUnsupportedError("simplex", "integer variable "+v.Name())
		}
		loInf, hiInf := math.IsInf(v.Lower, -1), math.IsInf(v.Upper, 1)
		switch {
		case !loInf:
			sf.offset[v.ID] = v.Lower
			varCols[v.ID] = []int{addCol(column{v: v.ID, sign: 1})}
			if !hiInf {
				bounds = append(bounds, int(v.ID))
			}
		case !hiInf:
			sf.offset[v.ID] = v.Upper
			varCols[v.ID] = []int{addCol(column{v: v.ID, sign: -1})}
		default:
			varCols[v.ID] = []int{addCol(column{v: v.ID, sign: 1}), addCol(column{v: v.ID, sign: -1})}
		}
	}

	// finite upper bounds on shifted columns: x' + s = hi - lo
	for _, id := range bounds {
		v := m.Variables[id]
		row := map[int]float64{varCols[id][0]: 1, addCol(column{slack: true}): 1}
		sf.rows = append(sf.rows, row)
		sf.b = append(sf.b, v.Upper-v.Lower)
	}

	obj := m.Objective.Expr
	if !obj.IsLinear() {
		return nil, NewUnsupportedError("simplex", "bilinear objective")
	}
	dir := 1.0
	if m.Objective.Sense == model.Maximize {
		dir = -1.0
	}
	for _, t := range obj.Terms {
		for _, col := range varCols[t.Var] {
			sf.c[col] += dir * t.Coef * sf.cols[col].sign
		}
	}

	for _, cons := range m.Constraints {
		if !cons.Body.IsLinear() {
			return nil, NewUnsupportedError("simplex", "bilinear constraint "+cons.Key())
		}
		coefs := map[int]float64{}
		shift := cons.Body.Constant
		for _, t := range cons.Body.Terms {
			shift += t.Coef * sf.offset[t.Var]
			for _, col := range varCols[t.Var] {
				coefs[col] += t.Coef * sf.cols[col].sign
			}
		}
		lo, hi := cons.Lower-shift, cons.Upper-shift
		loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)

		addRow := func(slack float64, rhs float64) {
			row := make(map[int]float64, len(coefs)+1)
			for k, v := range coefs {
				row[k] = v
			}
			if slack != 0 {
				row[addCol(column{slack: true})] = slack
			}
			sf.rows = append(sf.rows, row)
			sf.b = append(sf.b, rhs)
		}

		switch {
		case !loInf && !hiInf && cons.Lower == cons.Upper:
			addRow(0, lo)
		default:
			if !hiInf {
				addRow(1, hi)
			}
			if !loInf {
				addRow(-1, lo)
			}
		}
	}

	return sf, nil
}

// presolve drops empty and duplicate rows and empty columns, and normalizes the rows to b >= 0.
// It returns a non-empty message if presolve already decides the problem.
func (sf *standardForm) presolve() string {
	for i, row := range sf.rows {
		for k, v := range row {
			if math.Abs(v) < presolveEps {
				delete(row, k)
			}
		}
		if len(row) == 0 {
			continue
		}
		// first nonzero coefficient positive, so that negated duplicates collide
		if row[minKey(row)] < 0 {
			for k := range row {
				row[k] = -row[k]
			}
			sf.b[i] = -sf.b[i]
		}
	}

	seen := map[string]float64{}
	rows, b := []map[int]float64{}, []float64{}
	for i, row := range sf.rows {
		if len(row) == 0 {
			if math.Abs(sf.b[i]) > 1e-9 {
				sf.status = StatusInfeasible
				return fmt.Sprintf("empty row %d with nonzero right-hand side %g", i, sf.b[i])
			}
			continue
		}
		key := rowKey(row)
		if rhs, ok := seen[key]; ok {
			if math.Abs(rhs-sf.b[i]) > 1e-9 {
				sf.status = StatusInfeasible
				return fmt.Sprintf("conflicting parallel rows with right-hand sides %g and %g", rhs, sf.b[i])
			}
			continue
		}
		seen[key] = sf.b[i]
		rows, b = append(rows, row), append(b, sf.b[i])
	}

	used := make([]bool, len(sf.cols))
	for _, row := range rows {
		for k := range row {
			used[k] = true
		}
	}
	remap := make([]int, len(sf.cols))
	cols, c := []column{}, []float64{}
	for j := range sf.cols {
		if !used[j] {
			if sf.c[j] < 0 {
				sf.status = StatusError
				return "unbounded: improving column not constrained by any row"
			}
			remap[j] = -1
			continue
		}
		remap[j] = len(cols)
		cols, c = append(cols, sf.cols[j]), append(c, sf.c[j])
	}
	for i, row := range rows {
		nr := make(map[int]float64, len(row))
		for k, v := range row {
			nr[remap[k]] = v
		}
		rows[i] = nr
		if b[i] < 0 {
			for k := range nr {
				nr[k] = -nr[k]
			}
			b[i] = -b[i]
		}
	}

	sf.rows, sf.b, sf.cols, sf.c = rows, b, cols, c
	return ""
}

func (sf *standardForm) dense() []float64 {
	data := make([]float64, len(sf.rows)*len(sf.c))
	for i, row := range sf.rows {
		for k, v := range row {
			data[i*len(sf.c)+k] = v
		}
	}
	return data
}

func (sf *standardForm) recover(x []float64) []float64 {
	values := make([]float64, len(sf.offset))
	copy(values, sf.offset)
	for j, col := range sf.cols {
		if !col.slack {
			values[col.v] += col.sign * x[j]
		}
	}
	return values
}

func minKey(row map[int]float64) int {
	ret := math.MaxInt
	for k := range row {
		if k < ret {
			ret = k
		}
	}
	return ret
}

func rowKey(row map[int]float64) string {
	keys := make([]int, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strconv.Itoa(k))
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(row[k], 'g', 12, 64))
		b.WriteByte(' ')
	}
	return b.String()
}
