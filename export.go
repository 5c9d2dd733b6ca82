package symgraph

import (
	"github.com/hupe1980/symgraph/regions"
)

// Report is the exported summary of a Table.
type Report struct {
	Declarations []DeclarationReport `json:"declarations" yaml:"declarations"`
	Edges        []EdgeReport        `json:"edges" yaml:"edges"`
	Unreferenced []string            `json:"unreferenced" yaml:"unreferenced"`
	Orphans      []string            `json:"orphans" yaml:"orphans"`
	Cyclic       []string            `json:"cyclic" yaml:"cyclic"`
	Unresolved   []Reference         `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

// DeclarationReport describes one declaration and its neighbours in the
// reference graph.
type DeclarationReport struct {
	Name       string       `json:"name" yaml:"name"`
	Kind       regions.Kind `json:"kind" yaml:"kind"`
	Start      int          `json:"start" yaml:"start"`
	End        int          `json:"end" yaml:"end"`
	References int          `json:"references" yaml:"references"`
	Uses       []string     `json:"uses,omitempty" yaml:"uses,omitempty"`
	UsedBy     []string     `json:"used_by,omitempty" yaml:"used_by,omitempty"`
}

// EdgeReport is one edge of the reference graph.
type EdgeReport struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// NewReport summarizes t. Declarations appear in slot order.
func NewReport(t *Table) *Report {
	g := t.Graph()
	r := &Report{
		Declarations: make([]DeclarationReport, 0, t.Len()),
		Edges:        make([]EdgeReport, 0, g.Graph().EdgeCount()),
		Unreferenced: t.Unreferenced().Slice(),
		Orphans:      t.Orphans().Slice(),
		Cyclic:       g.CyclicNodes().Slice(),
		Unresolved:   t.Unresolved(),
	}

	for region := range t.decls.All() {
		r.Declarations = append(r.Declarations, DeclarationReport{
			Name:       region.Name,
			Kind:       region.Kind,
			Start:      region.Start,
			End:        region.End,
			References: len(t.ReferencesOf(region.Name)),
			Uses:       nonEmpty(g.Outbound(region.Name).Slice()),
			UsedBy:     nonEmpty(g.Inbound(region.Name).Slice()),
		})
	}
	for from, to := range g.Edges() {
		r.Edges = append(r.Edges, EdgeReport{From: from, To: to})
	}
	return r
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Export encodes the Report of t with the configured codec (WithCodec),
// JSON by default.
func Export(t *Table, optFns ...Option) ([]byte, error) {
	o := applyOptions(optFns)
	return o.codec.Marshal(NewReport(t))
}
