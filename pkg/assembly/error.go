package assembly

import (
	"errors"
	"fmt"

	"github.com/l7mp/refinery/pkg/relation"
)

var (
	// ErrMissingVariable means a family referenced a variable the allocator did not declare.
	ErrMissingVariable = errors.New("undeclared variable")
	// ErrFamily wraps an error returned by a constraint family.
	ErrFamily = errors.New("constraint family failed")
)

func NewMissingVariableError(family string, idx relation.Tuple) error {
	return fmt.Errorf("%w: %s%s", ErrMissingVariable, family, idx)
}

func NewFamilyError(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFamily, name, err)
}
