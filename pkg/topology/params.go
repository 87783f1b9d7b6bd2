package topology

import (
	"sort"

	"github.com/l7mp/refinery/pkg/relation"
)

// Table is a sparse parameter table keyed by index tuple.
type Table map[string]float64

// Set stores a value under an index.
func (t Table) Set(v float64, idx ...string) { t[relation.Key(idx...)] = v }

// Get returns the value stored under an index.
func (t Table) Get(idx ...string) (float64, bool) {
	v, ok := t[relation.Key(idx...)]
	return v, ok
}

// Lookup returns a parameter value, if given in the input data.
func (s *Store) Lookup(name string, idx ...string) (float64, bool) {
	t, ok := s.params[name]
	if !ok {
		return 0, false
	}
	return t.Get(idx...)
}

// Value returns a parameter value, falling back to the documented default. Parameters with no
// default yield zero.
func (s *Store) Value(name string, idx ...string) float64 {
	if v, ok := s.Lookup(name, idx...); ok {
		return v
	}
	return paramDefaults[name]
}

// Table returns the raw table of a parameter, or nil.
func (s *Store) Table(name string) Table { return s.params[name] }

// ParamNames returns the sorted names of the parameters present in the input.
func (s *Store) ParamNames() []string {
	ret := make([]string, 0, len(s.params))
	for n := range s.params {
		ret = append(ret, n)
	}
	sort.Strings(ret)
	return ret
}
