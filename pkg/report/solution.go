package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/l7mp/refinery/pkg/assembly"
	"github.com/l7mp/refinery/pkg/model"
	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/topology"
)

const (
	// DefaultThreshold is the materiality threshold of reported flows.
	DefaultThreshold = 0.01
	// DefaultLimit is the number of flows reported per group.
	DefaultLimit = 10
)

// Flow is a reported variable value.
type Flow struct {
	Variable string  `json:"variable"`
	Stream   string  `json:"stream"`
	Period   string  `json:"period"`
	Value    float64 `json:"value"`
}

// Highlights are the material purchases and product sales of a solution above the materiality
// threshold, at most limit per group, in stream then period order.
type Highlights struct {
	Products  []Flow `json:"products"`
	Materials []Flow `json:"materials"`
}

// NewHighlights selects the flows worth reporting. A non-positive limit reports every flow.
func NewHighlights(m *model.Model, st *topology.Store, res *solver.Result, threshold float64, limit int) *Highlights {
	h := &Highlights{Products: []Flow{}, Materials: []Flow{}}
	if res == nil || !res.HasSolution() {
		return h
	}
	collect := func(set, family string) []Flow {
		ret := []Flow{}
		for _, s := range st.Set(set).Elems() {
			for _, t := range st.Periods() {
				if limit > 0 && len(ret) >= limit {
					return ret
				}
				id, ok := m.Var(family, s, t)
				if !ok {
					continue
				}
				if v := res.Value(id); v > threshold {
					ret = append(ret, Flow{Variable: family, Stream: s, Period: t, Value: v})
				}
			}
		}
		return ret
	}
	h.Products = collect(topology.SetSP, assembly.VarFVI)
	h.Materials = collect(topology.SetSM, assembly.VarFVO)
	return h
}

// WriteSolution writes the solution report of a case.
func WriteSolution(w io.Writer, name string, res *solver.Result, h *Highlights) error {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(&b, "%s solution\n%s\n", name, rule)
	fmt.Fprintf(&b, "Solver: %s\nStatus: %s\n", res.Solver, res.Status)
	if res.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", res.Message)
	}
	fmt.Fprintf(&b, "Elapsed: %s\n", res.Elapsed)

	if !res.HasSolution() {
		b.WriteString("No feasible solution found\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Objective (profit): %.2f\n", res.Objective)
	group := func(title string, flows []Flow) {
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, f := range flows {
			fmt.Fprintf(&b, "  %s[%s,%s] = %.4f\n", f.Variable, f.Stream, f.Period, f.Value)
		}
	}
	group("Product flows", h.Products)
	group("Material flows", h.Materials)

	_, err := io.WriteString(w, b.String())
	return err
}
