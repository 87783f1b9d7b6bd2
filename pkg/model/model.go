package model

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/l7mp/refinery/pkg/relation"
)

// Model is a solver-agnostic algebraic model: variables with domains and bounds, constraints with
// a comparator and one objective. Variables must all be declared before constraints are added;
// after that the model is read concurrently.
type Model struct {
	ID          uuid.UUID
	Name        string
	Variables   []*Variable
	Constraints []*Constraint
	Objective   *Objective
	// Skipped counts the constraint instances omitted as degenerate, per constraint name.
	Skipped map[string]int

	lookup   map[string]VarID
	families []string
}

// New creates an empty model with a fresh identifier.
func New(name string) *Model {
	return &Model{
		ID:      uuid.New(),
		Name:    name,
		Skipped: map[string]int{},
		lookup:  map[string]VarID{},
	}
}

// AddVariable declares a variable with the implicit bounds of its domain. Redeclaring an existing
// (family, index) pair returns the existing handle.
func (m *Model) AddVariable(family string, domain Domain, idx ...string) VarID {
	key := family + "\x1e" + relation.Key(idx...)
	if id, ok := m.lookup[key]; ok {
		return id
	}
	lo, hi := domain.Bounds()
	id := VarID(len(m.Variables))
	m.Variables = append(m.Variables, &Variable{
		ID:     id,
		Family: family,
		Index:  append(relation.Tuple{}, idx...),
		Domain: domain,
		Lower:  lo,
		Upper:  hi,
	})
	m.lookup[key] = id
	if !contains(m.families, family) {
		m.families = append(m.families, family)
	}
	return id
}

// Var returns the handle of a declared variable.
func (m *Model) Var(family string, idx ...string) (VarID, bool) {
	id, ok := m.lookup[family+"\x1e"+relation.Key(idx...)]
	return id, ok
}

// Variable returns a variable by handle.
func (m *Model) Variable(id VarID) *Variable { return m.Variables[id] }

// VarName returns the readable name of a variable.
func (m *Model) VarName(id VarID) string { return m.Variables[id].Name() }

// Families returns the variable families in declaration order.
func (m *Model) Families() []string { return m.families }

// HasFamily reports whether any variable of a family was declared.
func (m *Model) HasFamily(family string) bool { return contains(m.families, family) }

// AddConstraints appends constraints.
func (m *Model) AddConstraints(cs ...*Constraint) { m.Constraints = append(m.Constraints, cs...) }

// IsLinear is true if no constraint and no objective contains a bilinear term.
func (m *Model) IsLinear() bool {
	for _, c := range m.Constraints {
		if !c.Body.IsLinear() {
			return false
		}
	}
	return m.Objective == nil || m.Objective.Expr.IsLinear()
}

// Stats summarizes the size of a model.
type Stats struct {
	Variables           int            `json:"variables"`
	Binary              int            `json:"binary"`
	Continuous          int            `json:"continuous"`
	Constraints         int            `json:"constraints"`
	Bilinear            int            `json:"bilinear"`
	VariablesByFamily   map[string]int `json:"variablesByFamily"`
	ConstraintsByName   map[string]int `json:"constraintsByName"`
	SkippedByName       map[string]int `json:"skippedByName,omitempty"`
	ConstraintNames     []string       `json:"-"`
	VariableFamilyOrder []string       `json:"-"`
}

// Stats computes the size summary of the model.
func (m *Model) Stats() Stats {
	st := Stats{
		Variables:           len(m.Variables),
		Constraints:         len(m.Constraints),
		VariablesByFamily:   map[string]int{},
		ConstraintsByName:   map[string]int{},
		SkippedByName:       map[string]int{},
		VariableFamilyOrder: append([]string{}, m.families...),
	}
	for _, v := range m.Variables {
		if v.Domain == Binary {
			st.Binary++
		} else {
			st.Continuous++
		}
		st.VariablesByFamily[v.Family]++
	}
	for _, c := range m.Constraints {
		if _, ok := st.ConstraintsByName[c.Name]; !ok {
			st.ConstraintNames = append(st.ConstraintNames, c.Name)
		}
		st.ConstraintsByName[c.Name]++
		if !c.Body.IsLinear() {
			st.Bilinear++
		}
	}
	for k, v := range m.Skipped {
		st.SkippedByName[k] = v
	}
	return st
}

// Violations returns the constraints violated by more than tol at x, sorted by key.
func (m *Model) Violations(x []float64, tol float64) []*Constraint {
	ret := []*Constraint{}
	for _, c := range m.Constraints {
		if c.Violation(x) > tol {
			ret = append(ret, c)
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Key() < ret[j].Key() })
	return ret
}

// Constraint returns the constraint with the given name and index.
func (m *Model) Constraint(name string, idx ...string) (*Constraint, bool) {
	key := name + relation.Tuple(idx).String()
	for _, c := range m.Constraints {
		if c.Key() == key {
			return c, true
		}
	}
	return nil, false
}

// ConstraintsNamed returns the constraints with the given name.
func (m *Model) ConstraintsNamed(name string) []*Constraint {
	ret := []*Constraint{}
	for _, c := range m.Constraints {
		if c.Name == name {
			ret = append(ret, c)
		}
	}
	return ret
}

// String returns a short description.
func (m *Model) String() string {
	return fmt.Sprintf("model %s/%s: %d variables, %d constraints", m.Name, m.ID, len(m.Variables),
		len(m.Constraints))
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}
