package report

import (
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/l7mp/refinery/pkg/solver"
	"github.com/l7mp/refinery/pkg/util"
)

// ErrQuery means a report query could not be parsed.
var ErrQuery = errors.New("invalid report query")

// Document is the generic form of a report: summary, solve result and highlights as nested maps
// and lists, ready for YAML output and JSONPath selection.
type Document map[string]any

type document struct {
	Summary    *Summary       `json:"summary"`
	Result     *solver.Result `json:"result,omitempty"`
	Highlights *Highlights    `json:"highlights,omitempty"`
}

// NewDocument assembles a report document. Result and highlights may be nil.
func NewDocument(s *Summary, res *solver.Result, h *Highlights) (Document, error) {
	d, err := util.ToDocument(document{Summary: s, Result: res, Highlights: h})
	if err != nil {
		return nil, err
	}
	return Document(d), nil
}

// Select evaluates a JSONPath query on the document, e.g., "$.summary.families.cdu_yield" or
// "$.highlights.products[?(@.value > 50)].stream".
func (d Document) Select(query string) ([]any, error) {
	x, err := jp.ParseString(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrQuery, query, err)
	}
	return x.Get(map[string]any(d)), nil
}
