package relation

import (
	"fmt"
	"strings"
)

// keySep joins identifiers into map keys, so it may not appear in an identifier.
const keySep = "\x1f"

// CheckIdent rejects identifiers that would corrupt tuple keys.
func CheckIdent(id string) error {
	if strings.Contains(id, keySep) {
		return newRelationError(fmt.Sprintf("identifier %q contains the unit separator", id), nil)
	}
	return nil
}

// Tuple is an ordered list of entity identifiers.
type Tuple []string

// Key returns the canonical map key of the tuple.
func (t Tuple) Key() string { return strings.Join(t, keySep) }

// String returns a human readable form, e.g., "(cdu1,m1,crude)".
func (t Tuple) String() string { return "(" + strings.Join(t, ",") + ")" }

// Pick returns a new tuple consisting of the given columns.
func (t Tuple) Pick(cols ...int) Tuple {
	ret := make(Tuple, len(cols))
	for i, c := range cols {
		ret[i] = t[c]
	}
	return ret
}

// Key returns the canonical map key of a list of identifiers.
func Key(elems ...string) string { return strings.Join(elems, keySep) }

// SplitKey is the inverse of Key.
func SplitKey(key string) Tuple { return Tuple(strings.Split(key, keySep)) }
