package topology

import (
	"fmt"

	"github.com/l7mp/refinery/pkg/relation"
	"github.com/l7mp/refinery/pkg/util"
)

// Input is what the ingestion layer hands over: named sets of entity tokens or tuples and named
// parameter tables. Unary sets are given as 1-tuples.
type Input struct {
	Sets   map[string][]relation.Tuple
	Params map[string]Table
}

// NewInput creates an empty input.
func NewInput() *Input {
	return &Input{Sets: map[string][]relation.Tuple{}, Params: map[string]Table{}}
}

// AddElems appends identifiers to a unary set.
func (in *Input) AddElems(name string, elems ...string) {
	for _, e := range elems {
		in.Sets[name] = append(in.Sets[name], relation.Tuple{e})
	}
}

// AddTuple appends a tuple to a relation set.
func (in *Input) AddTuple(name string, elems ...string) {
	in.Sets[name] = append(in.Sets[name], relation.Tuple(elems))
}

// SetParam stores a parameter value.
func (in *Input) SetParam(name string, v float64, idx ...string) {
	t, ok := in.Params[name]
	if !ok {
		t = Table{}
		in.Params[name] = t
	}
	t.Set(v, idx...)
}

// StorageMode selects how the storage subsystem is activated.
type StorageMode string

const (
	// StorageAuto activates storage iff some LMax value is strictly positive.
	StorageAuto StorageMode = "auto"
	StorageOn   StorageMode = "on"
	StorageOff  StorageMode = "off"
)

// Options controls store construction.
type Options struct {
	Storage StorageMode
}

// Store is the validated, read-only topology and parameter store of a case. It is safe for
// concurrent reads.
type Store struct {
	sets    map[string]*relation.Set
	params  map[string]Table
	periods []string
	prev    map[string]string
	units   map[string]UnitKind
	byKind  map[UnitKind][]string
	storage bool
}

// New validates the input and builds a store. Structural problems (missing required sets, unknown
// set or parameter names, wrong arity, a unit in more than one variant set, unpinnable FIX pairs)
// are reported together as an *IntegrityError.
func New(in *Input, opts Options) (*Store, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: no input", ErrIntegrity)
	}

	ierr := NewIntegrityError()
	s := &Store{
		sets:   map[string]*relation.Set{},
		params: map[string]Table{},
		prev:   map[string]string{},
		units:  map[string]UnitKind{},
		byKind: map[UnitKind][]string{},
	}

	for _, name := range requiredSets {
		if _, ok := in.Sets[name]; !ok {
			ierr.Addf("required set %s is missing", name)
		}
	}

	load := func(name string, arity int) {
		set, err := relation.FromTuples(name, arity, in.Sets[name]...)
		if err != nil {
			ierr.Addf("%v", err)
			set = relation.NewSet(name, arity)
		}
		s.sets[name] = set
	}
	for _, name := range requiredSets {
		load(name, 1)
	}
	for _, spec := range PartitionSets {
		load(spec.Name, spec.Arity)
	}
	for _, spec := range RelationSets {
		load(spec.Name, spec.Arity)
	}

	s.periods = s.sets[SetT].Elems()
	if _, ok := in.Sets[SetT]; ok && len(s.periods) == 0 {
		ierr.Addf("time period set %s is empty", SetT)
	}
	for i := 1; i < len(s.periods); i++ {
		s.prev[s.periods[i]] = s.periods[i-1]
	}

	known := map[string]bool{}
	for _, name := range SetNames() {
		known[name] = true
	}
	for _, name := range util.SortedKeys(in.Sets) {
		if !known[name] {
			ierr.Addf("unknown set %s", name)
		}
	}

	for _, name := range util.SortedKeys(in.Params) {
		spec, ok := ParamSpec(name)
		if !ok {
			ierr.Addf("unknown parameter %s", name)
			continue
		}
		t := in.Params[name]
		cp := make(Table, len(t))
		for _, k := range util.SortedKeys(t) {
			if idx := relation.SplitKey(k); len(idx) != spec.Arity {
				ierr.Addf("parameter %s%s has %d indices, expected %d", name, idx, len(idx), spec.Arity)
				continue
			}
			cp[k] = t[k]
		}
		s.params[name] = cp
	}

	s.resolveUnits(ierr)
	s.checkFixed(ierr)

	if err := ierr.Err(); err != nil {
		return nil, err
	}

	switch opts.Storage {
	case StorageOn:
		s.storage = true
	case StorageOff:
		s.storage = false
	case StorageAuto, "":
		s.storage = s.HasStorageCapacity()
	default:
		return nil, fmt.Errorf("unknown storage mode %q", opts.Storage)
	}

	return s, nil
}

func (s *Store) resolveUnits(ierr *IntegrityError) {
	for _, u := range s.sets[SetU].Elems() {
		s.units[u] = UnitGeneric
	}
	for _, kind := range UnitKinds {
		for _, u := range s.sets[kind.SetName()].Elems() {
			prev, ok := s.units[u]
			if !ok {
				// Reported by the referential integrity check.
				continue
			}
			if prev != UnitGeneric {
				ierr.Addf("unit %s is listed in both %s and %s", u, prev.SetName(), kind.SetName())
				continue
			}
			s.units[u] = kind
		}
	}
	for _, u := range s.sets[SetU].Elems() {
		k := s.units[u]
		s.byKind[k] = append(s.byKind[k], u)
	}
}

func (s *Store) checkFixed(ierr *IntegrityError) {
	for _, t := range s.sets[SetFIX].Tuples() {
		if !s.sets[SetSQ].Contains(t...) {
			ierr.Addf("FIX pair %s is not in SQ", t)
		}
		if _, ok := s.Lookup(ParamFixedValue, t...); !ok {
			ierr.Addf("FIX pair %s has no %s value", t, ParamFixedValue)
		}
	}
}

// HasStorageCapacity reports whether some LMax value is strictly positive.
func (s *Store) HasStorageCapacity() bool {
	for _, v := range s.params[ParamLevelMax] {
		if v > 0 {
			return true
		}
	}
	return false
}

// Set returns a named set. Unknown names yield an empty relation.
func (s *Store) Set(name string) *relation.Set {
	if set, ok := s.sets[name]; ok {
		return set
	}
	return relation.NewSet(name, 1)
}

// Has checks membership in a named set.
func (s *Store) Has(name string, elems ...string) bool { return s.Set(name).Contains(elems...) }

// Periods returns the ordered time periods.
func (s *Store) Periods() []string { return s.periods }

// Prev returns the predecessor of a period; false for the first period.
func (s *Store) Prev(t string) (string, bool) {
	p, ok := s.prev[t]
	return p, ok
}

// Kind returns the variant of a unit.
func (s *Store) Kind(u string) UnitKind { return s.units[u] }

// Units returns the units of a variant in set order.
func (s *Store) Units(kind UnitKind) []string { return s.byKind[kind] }

// StorageEnabled reports the storage-activation decision taken at construction.
func (s *Store) StorageEnabled() bool { return s.storage }

// SetNames returns the names of all sets known to the store, in canonical order.
func SetNames() []string {
	ret := append([]string{}, requiredSets...)
	for _, spec := range PartitionSets {
		ret = append(ret, spec.Name)
	}
	for _, spec := range RelationSets {
		ret = append(ret, spec.Name)
	}
	return ret
}
