// Package dag is a small directed graph over string labels, used to reason about the reachability
// of a process network.
package dag

import (
	"sort"
)

// Graph is a directed graph. Nodes keep their insertion order.
type Graph struct {
	Nodes   []string
	byLabel map[string]int
	edges   map[string]map[string]bool
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byLabel: map[string]int{}, edges: map[string]map[string]bool{}}
}

// AddNode adds a node, returns false if it already exists.
func (g *Graph) AddNode(label string) bool {
	if _, ok := g.byLabel[label]; ok {
		return false
	}
	g.byLabel[label] = len(g.Nodes)
	g.Nodes = append(g.Nodes, label)
	g.edges[label] = map[string]bool{}
	return true
}

func (g *Graph) HasNode(label string) bool {
	_, ok := g.byLabel[label]
	return ok
}

// AddEdge adds an edge, adding the endpoints if missing.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from][to] = true
}

func (g *Graph) HasEdge(from, to string) bool {
	return g.edges[from] != nil && g.edges[from][to]
}

// Edges returns the successors of a node in node order.
func (g *Graph) Edges(from string) []string {
	edges := make([]string, 0, len(g.edges[from]))
	for k := range g.edges[from] {
		edges = append(edges, k)
	}
	sort.Slice(edges, func(i, j int) bool { return g.byLabel[edges[i]] < g.byLabel[edges[j]] })
	return edges
}

// Roots returns the nodes without an incoming edge.
func (g *Graph) Roots() []string {
	incoming := map[string]bool{}
	for _, es := range g.edges {
		for to := range es {
			incoming[to] = true
		}
	}
	roots := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !incoming[n] {
			roots = append(roots, n)
		}
	}
	return roots
}

// Reachable returns the set of nodes reachable from the given nodes, the nodes included.
func (g *Graph) Reachable(from ...string) map[string]bool {
	seen := map[string]bool{}
	queue := []string{}
	for _, n := range from {
		if g.HasNode(n) && !seen[n] {
			seen[n] = true
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range g.Edges(n) {
			if !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}
	return seen
}
