package model

import (
	"math"

	"github.com/l7mp/refinery/pkg/relation"
)

// VarID is the handle of a variable inside its model.
type VarID int

// Domain is the domain of a decision variable.
type Domain int

const (
	NonNegativeReals Domain = iota
	Reals
	Binary
)

func (d Domain) String() string {
	switch d {
	case NonNegativeReals:
		return "nonnegative"
	case Reals:
		return "free"
	case Binary:
		return "binary"
	default:
		return "unknown"
	}
}

// Bounds returns the implicit bounds of the domain.
func (d Domain) Bounds() (float64, float64) {
	switch d {
	case NonNegativeReals:
		return 0, math.Inf(1)
	case Binary:
		return 0, 1
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

// Variable is a decision variable indexed by a tuple of entity identifiers.
type Variable struct {
	ID     VarID
	Family string
	Index  relation.Tuple
	Domain Domain
	Lower  float64
	Upper  float64
}

// Name returns a readable name, e.g., "FVI(gasoline,1)".
func (v *Variable) Name() string { return v.Family + v.Index.String() }

// IsInteger is true for binary variables.
func (v *Variable) IsInteger() bool { return v.Domain == Binary }
