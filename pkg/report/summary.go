// Package report renders what a build and a solve produced: the model summary, the material and
// product flows of a solution, and a generic report document that can be queried with JSONPath.
package report

import (
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/topology"
	"github.com/l7mp/refinery/pkg/util"
)

// summarySets are the cardinalities shown in the text summary, in display order.
var summarySets = []struct{ name, label string }{
	{topology.SetT, "time periods"},
	{topology.SetS, "streams"},
	{topology.SetU, "units"},
	{topology.SetM, "batches"},
	{topology.SetQ, "properties"},
	{topology.SetSP, "product streams"},
	{topology.SetSM, "material streams"},
}

// Summary is the size report of an assembled model.
type Summary struct {
	Name        string         `json:"name"`
	ID          string         `json:"id"`
	Variables   int            `json:"variables"`
	Continuous  int            `json:"continuous"`
	Binary      int            `json:"binary"`
	Constraints int            `json:"constraints"`
	Bilinear    int            `json:"bilinear"`
	Storage     bool           `json:"storage"`
	Families    map[string]int `json:"families"`
	Skipped     map[string]int `json:"skipped,omitempty"`
	Sets        map[string]int `json:"sets"`
	Units       map[string]int `json:"units"`
}

// NewSummary summarizes a build.
func NewSummary(out *assembly.Output) *Summary {
	m, st := out.Model, out.Index.Store()
	stats := m.Stats()
	s := &Summary{
		Name:        m.Name,
		ID:          m.ID.String(),
		Variables:   stats.Variables,
		Continuous:  stats.Continuous,
		Binary:      stats.Binary,
		Constraints: stats.Constraints,
		Bilinear:    stats.Bilinear,
		Storage:     st.StorageEnabled(),
		Families:    stats.ConstraintsByName,
		Skipped:     stats.SkippedByName,
		Sets:        out.Index.Cardinalities(),
		Units:       map[string]int{},
	}
	for _, k := range append([]topology.UnitKind{topology.UnitGeneric}, topology.UnitKinds...) {
		s.Units[k.String()] = len(st.Units(k))
	}
	return s
}

// WriteText writes the human-readable summary.
func (s *Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nModel summary: %s (%s)\n%s\n", rule, s.Name, s.ID, rule)
	fmt.Fprintf(&b, "Variables: %d\n  continuous: %d\n  binary: %d\n", s.Variables, s.Continuous, s.Binary)
	fmt.Fprintf(&b, "Constraints: %d (bilinear: %d)\n", s.Constraints, s.Bilinear)
	fmt.Fprintf(&b, "Storage: %t\n", s.Storage)

	b.WriteString("\nSet sizes:\n")
	for _, set := range summarySets {
		fmt.Fprintf(&b, "  %s (%s): %d\n", set.label, set.name, s.Sets[set.name])
	}

	b.WriteString("\nUnit variants:\n")
	for _, k := range topology.UnitKinds {
		fmt.Fprintf(&b, "  %s (%s): %d\n", k, k.SetName(), s.Units[k.String()])
	}
	if n := s.Units[topology.UnitGeneric.String()]; n > 0 {
		fmt.Fprintf(&b, "  %s: %d\n", topology.UnitGeneric, n)
	}

	if len(s.Skipped) > 0 {
		b.WriteString("\nSkipped degenerate constraints:\n")
		for _, name := range util.SortedKeys(s.Skipped) {
			fmt.Fprintf(&b, "  %s: %d\n", name, s.Skipped[name])
		}
	}
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// YAML renders the summary as YAML.
func (s *Summary) YAML() ([]byte, error) { return yaml.Marshal(s) }
