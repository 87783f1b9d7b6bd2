package topology

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIntegrity is the sentinel all data integrity errors unwrap to.
var ErrIntegrity = errors.New("data integrity error")

// IntegrityError collects every integrity violation found in a case.
type IntegrityError struct {
	Problems []string
}

// NewIntegrityError creates an empty error collector.
func NewIntegrityError() *IntegrityError { return &IntegrityError{} }

// Addf records a problem.
func (e *IntegrityError) Addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Err returns nil if no problem was recorded.
func (e *IntegrityError) Err() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIntegrity.Error(), strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrIntegrity.
func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
