package relation

import (
	"fmt"
)

// Predicate decides whether a tuple is kept by a selection.
type Predicate func(Tuple) bool

// Operator is a relational operator over sets.
type Operator interface {
	// Process input sets and produce an output set.
	Process(inputs ...*Set) (*Set, error)
	// Arity is the number of inputs expected.
	Arity() int
	fmt.Stringer
}

// BaseOp implements input validation for operators.
type BaseOp struct {
	arity int
	name  string
}

func NewBaseOp(name string, arity int) BaseOp {
	return BaseOp{arity: arity, name: name}
}

func (n *BaseOp) Arity() int     { return n.arity }
func (n *BaseOp) String() string { return n.name }

func (n *BaseOp) validateInputs(inputs []*Set) error {
	if len(inputs) != n.arity {
		return newRelationError(fmt.Sprintf("op %s expects %d inputs, got %d", n.name, n.arity, len(inputs)), nil)
	}
	for i, in := range inputs {
		if in == nil {
			return newRelationError(fmt.Sprintf("op %s: input %d is nil", n.name, i), nil)
		}
	}
	return nil
}

// SelectionOp keeps the tuples satisfying a predicate.
type SelectionOp struct {
	BaseOp
	pred Predicate
}

// NewSelection creates a new selection op.
func NewSelection(pred Predicate) *SelectionOp {
	return &SelectionOp{BaseOp: NewBaseOp("σ", 1), pred: pred}
}

// Process evaluates the op.
func (n *SelectionOp) Process(inputs ...*Set) (*Set, error) {
	if err := n.validateInputs(inputs); err != nil {
		return nil, err
	}

	input := inputs[0]
	result := NewSet(n.name+"("+input.name+")", input.arity)
	for _, t := range input.Tuples() {
		if n.pred(t) {
			if err := result.Insert(t); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// ProjectionOp keeps the given columns, collapsing duplicates.
type ProjectionOp struct {
	BaseOp
	cols []int
}

// NewProjection creates a new projection op.
func NewProjection(cols ...int) *ProjectionOp {
	return &ProjectionOp{BaseOp: NewBaseOp("π", 1), cols: cols}
}

// Process evaluates the op.
func (n *ProjectionOp) Process(inputs ...*Set) (*Set, error) {
	if err := n.validateInputs(inputs); err != nil {
		return nil, err
	}

	input := inputs[0]
	for _, c := range n.cols {
		if c < 0 || c >= input.arity {
			return nil, newRelationError(fmt.Sprintf("π: column %d out of range for %s/%d",
				c, input.name, input.arity), nil)
		}
	}

	result := NewSet(n.name+"("+input.name+")", len(n.cols))
	for _, t := range input.Tuples() {
		if err := result.Insert(t.Pick(n.cols...)); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// JoinOp is an equi-join on a list of column pairs. The output is the left tuple followed by the
// right tuple with the join columns removed.
type JoinOp struct {
	BaseOp
	left, right []int
}

// NewJoin creates a join op matching left[i] with right[i].
func NewJoin(left, right []int) *JoinOp {
	return &JoinOp{BaseOp: NewBaseOp("⋈", 2), left: left, right: right}
}

// Process evaluates the op.
func (op *JoinOp) Process(inputs ...*Set) (*Set, error) {
	if err := op.validateInputs(inputs); err != nil {
		return nil, err
	}
	if len(op.left) != len(op.right) {
		return nil, newRelationError("⋈: join column lists differ in length", nil)
	}

	l, r := inputs[0], inputs[1]
	dropped := map[int]bool{}
	for _, c := range op.right {
		dropped[c] = true
	}
	keep := []int{}
	for c := 0; c < r.arity; c++ {
		if !dropped[c] {
			keep = append(keep, c)
		}
	}

	ix := r.IndexBy(op.right...)
	result := NewSet(l.name+op.name+r.name, l.arity+len(keep))
	for _, lt := range l.Tuples() {
		for _, rt := range ix.Lookup(lt.Pick(op.left...)...) {
			out := make(Tuple, 0, l.arity+len(keep))
			out = append(out, lt...)
			out = append(out, rt.Pick(keep...)...)
			if err := result.Insert(out); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// Select is shorthand for a selection.
func Select(s *Set, pred Predicate) *Set {
	ret, _ := NewSelection(pred).Process(s)
	return ret
}

// Project is shorthand for a projection. It panics on an invalid column.
func Project(s *Set, cols ...int) *Set {
	ret, err := NewProjection(cols...).Process(s)
	if err != nil {
		panic(err)
	}
	return ret
}
