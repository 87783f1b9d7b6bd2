package relation

import (
	"fmt"
	"strings"
)

// Set is a sparse relation of fixed arity with set semantics. Iteration order is insertion order,
// which keeps everything derived from a Set deterministic.
type Set struct {
	name   string
	arity  int
	order  []string
	tuples map[string]Tuple
}

// NewSet creates an empty relation.
func NewSet(name string, arity int) *Set {
	return &Set{
		name:   name,
		arity:  arity,
		tuples: make(map[string]Tuple),
	}
}

// FromTuples creates a relation from a list of tuples. Duplicates are dropped.
func FromTuples(name string, arity int, tuples ...Tuple) (*Set, error) {
	s := NewSet(name, arity)
	for i, t := range tuples {
		if err := s.Insert(t); err != nil {
			return nil, newRelationError(fmt.Sprintf("failed to add tuple at index %d", i), err)
		}
	}
	return s, nil
}

// FromElems creates a unary relation from a list of identifiers.
func FromElems(name string, elems ...string) *Set {
	s := NewSet(name, 1)
	for _, e := range elems {
		_ = s.Insert(Tuple{e})
	}
	return s
}

// Insert adds a tuple to the relation. Inserting an existing tuple is a no-op.
func (s *Set) Insert(t Tuple) error {
	if len(t) != s.arity {
		return newRelationError(fmt.Sprintf("relation %s: tuple %s has arity %d, expected %d",
			s.name, t, len(t), s.arity), nil)
	}
	for _, id := range t {
		if err := CheckIdent(id); err != nil {
			return newRelationError(fmt.Sprintf("relation %s", s.name), err)
		}
	}
	key := t.Key()
	if _, ok := s.tuples[key]; ok {
		return nil
	}
	cp := make(Tuple, len(t))
	copy(cp, t)
	s.tuples[key] = cp
	s.order = append(s.order, key)
	return nil
}

// Name returns the name of the relation.
func (s *Set) Name() string { return s.name }

// Arity returns the number of columns.
func (s *Set) Arity() int { return s.arity }

// Len returns the number of tuples.
func (s *Set) Len() int { return len(s.order) }

// IsZero is true for an empty relation.
func (s *Set) IsZero() bool { return len(s.order) == 0 }

// Contains checks whether the tuple made of the given elements is in the relation.
func (s *Set) Contains(elems ...string) bool {
	_, ok := s.tuples[Key(elems...)]
	return ok
}

// Tuples returns the tuples in insertion order. The tuples must not be modified.
func (s *Set) Tuples() []Tuple {
	ret := make([]Tuple, 0, len(s.order))
	for _, k := range s.order {
		ret = append(ret, s.tuples[k])
	}
	return ret
}

// Elems returns the first column of a unary relation.
func (s *Set) Elems() []string {
	ret := make([]string, 0, len(s.order))
	for _, k := range s.order {
		ret = append(ret, s.tuples[k][0])
	}
	return ret
}

// Union returns a new relation with the tuples of both arguments, receiver first.
func (s *Set) Union(name string, other *Set) (*Set, error) {
	if other != nil && other.arity != s.arity {
		return nil, newRelationError(fmt.Sprintf("cannot union %s/%d with %s/%d",
			s.name, s.arity, other.name, other.arity), nil)
	}
	ret := NewSet(name, s.arity)
	for _, t := range s.Tuples() {
		_ = ret.Insert(t)
	}
	if other != nil {
		for _, t := range other.Tuples() {
			_ = ret.Insert(t)
		}
	}
	return ret, nil
}

// IndexBy builds an inverted index keyed by the given columns.
func (s *Set) IndexBy(cols ...int) *Index {
	ix := &Index{cols: cols, groups: make(map[string][]Tuple)}
	for _, t := range s.Tuples() {
		key := t.Pick(cols...).Key()
		if _, ok := ix.groups[key]; !ok {
			ix.keys = append(ix.keys, key)
		}
		ix.groups[key] = append(ix.groups[key], t)
	}
	return ix
}

// String returns a string representation of the relation for debugging.
func (s *Set) String() string {
	if s.IsZero() {
		return s.name + "=∅"
	}
	parts := make([]string, 0, len(s.order))
	for _, t := range s.Tuples() {
		parts = append(parts, t.String())
	}
	return s.name + "={" + strings.Join(parts, ", ") + "}"
}

// Index maps a fixed column prefix to the tuples of a relation carrying it.
type Index struct {
	cols   []int
	keys   []string
	groups map[string][]Tuple
}

// Lookup returns the tuples whose indexed columns equal the given elements, in relation order.
func (ix *Index) Lookup(elems ...string) []Tuple {
	return ix.groups[Key(elems...)]
}

// Column returns a single column of the tuples matching the given elements.
func (ix *Index) Column(col int, elems ...string) []string {
	ts := ix.groups[Key(elems...)]
	ret := make([]string, 0, len(ts))
	for _, t := range ts {
		ret = append(ret, t[col])
	}
	return ret
}

// Keys returns the distinct index keys in first-seen order.
func (ix *Index) Keys() []Tuple {
	ret := make([]Tuple, 0, len(ix.keys))
	for _, k := range ix.keys {
		ret = append(ret, SplitKey(k))
	}
	return ret
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int { return len(ix.keys) }
