// Package visualize renders the process network of a refinery case as a diagram: units as boxes,
// streams as ellipses, stream incidences as edges and property transfers as dashed edges.
package visualize

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"

	"github.com/l7mp/refinery/internal/dag"
	"github.com/l7mp/refinery/pkg/topology"
)

// Graph represents the visualization graph of a case.
type Graph struct {
	CaseName  string
	Units     []UnitNode
	Streams   []StreamNode
	Flows     []Connection
	Transfers []Transfer
}

// UnitNode represents a processing unit.
type UnitNode struct {
	Name    string
	Kind    topology.UnitKind
	Batches []string
}

// StreamRole classifies a stream for display.
type StreamRole string

const (
	RoleMaterial     StreamRole = "material"
	RoleProduct      StreamRole = "product"
	RoleIntermediate StreamRole = "intermediate"
)

// StreamNode represents a stream.
type StreamNode struct {
	Name       string
	Role       StreamRole
	Properties []string
}

// Connection is a stream entering (Input) or leaving a unit.
type Connection struct {
	Unit   string
	Stream string
	Input  bool
}

// Transfer is a property transfer edge between streams.
type Transfer struct {
	From, To, Property string
}

// BuildGraph constructs a visualization graph from a store.
func BuildGraph(name string, st *topology.Store) *Graph {
	g := &Graph{CaseName: name}

	batches := map[string][]string{}
	seen := map[string]bool{}
	for _, set := range []string{topology.SetIM, topology.SetOM} {
		for _, t := range st.Set(set).Tuples() {
			if key := t[0] + "/" + t[1]; !seen[key] {
				seen[key] = true
				batches[t[0]] = append(batches[t[0]], t[1])
			}
		}
	}
	for _, u := range st.Set(topology.SetU).Elems() {
		g.Units = append(g.Units, UnitNode{Name: u, Kind: st.Kind(u), Batches: batches[u]})
	}

	props := map[string][]string{}
	for _, t := range st.Set(topology.SetSQ).Tuples() {
		props[t[0]] = append(props[t[0]], t[1])
	}
	for _, s := range st.Set(topology.SetS).Elems() {
		role := RoleIntermediate
		switch {
		case st.Has(topology.SetSP, s):
			role = RoleProduct
		case st.Has(topology.SetSM, s):
			role = RoleMaterial
		}
		g.Streams = append(g.Streams, StreamNode{Name: s, Role: role, Properties: props[s]})
	}

	for _, t := range st.Set(topology.SetIU).Tuples() {
		g.Flows = append(g.Flows, Connection{Unit: t[0], Stream: t[1], Input: true})
	}
	for _, t := range st.Set(topology.SetOU).Tuples() {
		g.Flows = append(g.Flows, Connection{Unit: t[0], Stream: t[1]})
	}
	for _, t := range st.Set(topology.SetQT).Tuples() {
		g.Transfers = append(g.Transfers, Transfer{From: t[0], To: t[1], Property: t[2]})
	}

	return g
}

// Orphans returns the streams no unit touches.
func (g *Graph) Orphans() []string {
	touched := map[string]bool{}
	for _, c := range g.Flows {
		touched[c.Stream] = true
	}
	ret := []string{}
	for _, s := range g.Streams {
		if !touched[s.Name] {
			ret = append(ret, s.Name)
		}
	}
	return ret
}

// Network returns the process network as a directed graph over unit and stream node ids.
func (g *Graph) Network() *dag.Graph {
	n := dag.New()
	for _, u := range g.Units {
		n.AddNode(unitID(u.Name))
	}
	for _, s := range g.Streams {
		n.AddNode(streamID(s.Name))
	}
	for _, c := range g.Flows {
		if c.Input {
			n.AddEdge(streamID(c.Stream), unitID(c.Unit))
		} else {
			n.AddEdge(unitID(c.Unit), streamID(c.Stream))
		}
	}
	return n
}

// Unreachable returns the units and streams no material stream feeds, as node ids.
func (g *Graph) Unreachable() []string {
	n := g.Network()
	materials := []string{}
	for _, s := range g.Streams {
		if s.Role == RoleMaterial {
			materials = append(materials, streamID(s.Name))
		}
	}
	reached := n.Reachable(materials...)
	ret := []string{}
	for _, id := range n.Nodes {
		if !reached[id] {
			ret = append(ret, id)
		}
	}
	return ret
}

func unitID(name string) string   { return "u_" + name }
func streamID(name string) string { return "s_" + name }

var unitColors = map[topology.UnitKind]string{
	topology.UnitGeneric:    "#D3D3D3",
	topology.UnitCDU:        "#FFA07A",
	topology.UnitFixedYield: "#ADD8E6",
	topology.UnitDeltaBase:  "#B0C4DE",
	topology.UnitMixer:      "#F0E68C",
	topology.UnitSplitter:   "#E0FFFF",
	topology.UnitBlender:    "#98FB98",
}

var streamColors = map[StreamRole]string{
	RoleMaterial:     "#90EE90",
	RoleProduct:      "#FFFFE0",
	RoleIntermediate: "#FFFFFF",
}

// BuildDotGraph creates a Graphviz dot.Graph from the visualization graph.
func BuildDotGraph(g *Graph) *dot.Graph { return buildGraph(g, false) }

// buildGraph creates the dot.Graph. Mermaid output needs its own shape values, single-line labels
// and CSS styles.
func buildGraph(g *Graph, mermaid bool) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")
	graph.Attr("newrank", "true")
	graph.Attr("label", g.CaseName)
	graph.Attr("labelloc", "t")
	graph.Attr("fontsize", "16")

	sep := "\n"
	if mermaid {
		sep = " "
	}

	units := make(map[string]dot.Node, len(g.Units))
	for _, u := range g.Units {
		label := fmt.Sprintf("%s%s(%s)", u.Name, sep, u.Kind)
		if len(u.Batches) > 0 {
			label += sep + strings.Join(u.Batches, ", ")
		}
		n := graph.Node(unitID(u.Name)).Attr("label", label)
		if mermaid {
			n.Attr("shape", dot.MermaidShapeSubroutine).
				Attr("style", "fill:"+unitColors[u.Kind])
		} else {
			n.Attr("shape", "box").
				Attr("style", "filled,rounded").
				Attr("fillcolor", unitColors[u.Kind]).
				Attr("color", "darkblue").
				Attr("penwidth", "2").
				Attr("fontname", "helvetica")
		}
		units[u.Name] = n
	}

	streams := make(map[string]dot.Node, len(g.Streams))
	for _, s := range g.Streams {
		label := s.Name
		if len(s.Properties) > 0 {
			label += sep + "[" + strings.Join(s.Properties, ", ") + "]"
		}
		n := graph.Node(streamID(s.Name)).Attr("label", label)
		if mermaid {
			n.Attr("shape", dot.MermaidShapeStadium).
				Attr("style", "fill:"+streamColors[s.Role])
		} else {
			n.Attr("shape", "ellipse").
				Attr("style", "filled").
				Attr("fillcolor", streamColors[s.Role]).
				Attr("fontname", "helvetica")
		}
		streams[s.Name] = n
	}

	for _, c := range g.Flows {
		u, uok := units[c.Unit]
		s, sok := streams[c.Stream]
		if !uok || !sok {
			continue
		}
		if c.Input {
			graph.Edge(s, u)
		} else {
			graph.Edge(u, s)
		}
	}

	for _, t := range g.Transfers {
		from, fok := streams[t.From]
		to, tok := streams[t.To]
		if !fok || !tok {
			continue
		}
		e := graph.Edge(from, to).Attr("label", t.Property)
		if !mermaid {
			e.Attr("style", "dashed").
				Attr("color", "blue").
				Attr("fontname", "helvetica").
				Attr("fontsize", "10")
		}
	}

	return graph
}
