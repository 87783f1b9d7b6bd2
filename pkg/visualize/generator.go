package visualize

import "fmt"

// Generator renders a graph.
type Generator interface {
	Generate(g *Graph) string
}

// NewGenerator returns the generator of an output format: "dot" or "mermaid".
func NewGenerator(format string) (Generator, error) {
	switch format {
	case "dot", "":
		return &DotGenerator{}, nil
	case "mermaid":
		return &MermaidGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown diagram format %q", format)
	}
}
