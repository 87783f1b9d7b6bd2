package relation

import "fmt"

// RelationError is returned by relation construction and the relational operators.
type RelationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *RelationError) Unwrap() error { return e.Cause }

func newRelationError(message string, cause error) error {
	return &RelationError{Message: message, Cause: cause}
}
