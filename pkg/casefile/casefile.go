// Package casefile reads refinery planning cases from YAML files.
//
// A case file lists the entity, partition and relation sets by name, and the parameter tables as
// lists of index/value entries:
//
//	schemaVersion: 1.0.0
//	name: blend
//	sets:
//	  T: [1]
//	  S: [crude, gasoline]
//	  IU:
//	  - [blend, crude]
//	parameters:
//	  c_P:
//	  - {index: [gasoline], value: 15}
//
// Unary sets may list scalars, relation sets list tuples. Numeric identifiers are converted to
// their shortest decimal form, so period 1 and period "1" are the same element.
package casefile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"sigs.k8s.io/yaml"

	"github.com/l7mp/refinery/pkg/relation"
	"github.com/l7mp/refinery/pkg/topology"
)

// SchemaVersion is the case-file schema version written by Encode.
const SchemaVersion = "1.0.0"

// SupportedSchema is the range of case-file schema versions this package reads.
const SupportedSchema = ">= 1.0.0, < 2.0.0"

var (
	// ErrSchemaVersion means the schema version is missing, malformed or unsupported.
	ErrSchemaVersion = errors.New("unsupported case schema version")
	// ErrInvalidCase means the case file is structurally malformed.
	ErrInvalidCase = errors.New("invalid case file")
)

var supported = func() *semver.Constraints {
	c, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		panic(err)
	}
	return c
}()

// Entry is one parameter value.
type Entry struct {
	Index []any   `json:"index,omitempty"`
	Value float64 `json:"value"`
}

// Case is the on-disk form of a planning case.
type Case struct {
	SchemaVersion string             `json:"schemaVersion"`
	Name          string             `json:"name,omitempty"`
	Sets          map[string][]any   `json:"sets"`
	Parameters    map[string][]Entry `json:"parameters,omitempty"`
}

// Load reads a case file.
func Load(path string) (*Case, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read case file: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse parses a case and checks its schema version.
func Parse(data []byte) (*Case, error) {
	c := &Case{}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}
	if c.SchemaVersion == "" {
		return nil, fmt.Errorf("%w: schemaVersion is missing", ErrSchemaVersion)
	}
	v, err := semver.NewVersion(c.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrSchemaVersion, c.SchemaVersion, err)
	}
	if !supported.Check(v) {
		return nil, fmt.Errorf("%w: %s does not satisfy %s", ErrSchemaVersion, v, SupportedSchema)
	}
	return c, nil
}

// Input converts the case into the input of a topology store.
func (c *Case) Input() (*topology.Input, error) {
	in := topology.NewInput()
	for name, elems := range c.Sets {
		var tuples []relation.Tuple
		for i, e := range elems {
			t, err := toTuple(e)
			if err != nil {
				return nil, fmt.Errorf("%w: set %s, element %d: %w", ErrInvalidCase, name, i, err)
			}
			tuples = append(tuples, t)
		}
		in.Sets[name] = tuples
	}
	for name, entries := range c.Parameters {
		table := topology.Table{}
		for i, e := range entries {
			idx, err := toTuple(e.Index)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter %s, entry %d: %w", ErrInvalidCase, name, i, err)
			}
			table.Set(e.Value, idx...)
		}
		in.Params[name] = table
	}
	return in, nil
}

// Encode renders a topology input as a case file. Sets and parameters are written in name order,
// parameter entries in index order.
func Encode(name string, in *topology.Input) ([]byte, error) {
	c := &Case{
		SchemaVersion: SchemaVersion,
		Name:          name,
		Sets:          map[string][]any{},
		Parameters:    map[string][]Entry{},
	}
	for set, tuples := range in.Sets {
		elems := make([]any, 0, len(tuples))
		for _, t := range tuples {
			if len(t) == 1 {
				elems = append(elems, t[0])
				continue
			}
			elems = append(elems, toList(t))
		}
		c.Sets[set] = elems
	}
	for param, table := range in.Params {
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, Entry{Index: toList(relation.SplitKey(k)), Value: table[k]})
		}
		c.Parameters[param] = entries
	}
	return yaml.Marshal(c)
}

// toTuple converts a scalar or a list of scalars into a tuple.
func toTuple(v any) (relation.Tuple, error) {
	switch x := v.(type) {
	case []any:
		ret := make(relation.Tuple, 0, len(x))
		for _, e := range x {
			s, err := toElem(e)
			if err != nil {
				return nil, err
			}
			ret = append(ret, s)
		}
		return ret, nil
	default:
		s, err := toElem(v)
		if err != nil {
			return nil, err
		}
		return relation.Tuple{s}, nil
	}
}

func toElem(v any) (string, error) {
	switch x := v.(type) {
	case string:
		if err := relation.CheckIdent(x); err != nil {
			return "", err
		}
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported identifier %v of type %T", v, v)
	}
}

func toList(t relation.Tuple) []any {
	ret := make([]any, len(t))
	for i, e := range t {
		ret[i] = e
	}
	return ret
}
