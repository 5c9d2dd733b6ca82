package symgraph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hupe1980/symgraph/codec"
	"github.com/hupe1980/symgraph/regions"
)

// Document is the serialized output of a parser: the declarations, labeled
// blocks and references of one source file.
//
// Example (YAML):
//
//	declarations:
//	  - {name: expr, kind: production, start: 0, end: 40, name_start: 0}
//	  - {name: NUM, kind: terminal, start: 41, end: 55}
//	blocks:
//	  - {name: Add, start: 6, end: 20}
//	references:
//	  - {name: NUM, start: 12, end: 15}
type Document struct {
	Declarations []DocumentDeclaration `json:"declarations" yaml:"declarations"`
	Blocks       []Block               `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	References   []Reference           `json:"references,omitempty" yaml:"references,omitempty"`
}

// DocumentDeclaration is a Declaration whose name token offset may be
// omitted, in which case it defaults to Start. Kind is required.
type DocumentDeclaration struct {
	Name      string        `json:"name" yaml:"name"`
	Kind      *regions.Kind `json:"kind" yaml:"kind"`
	Start     int          `json:"start" yaml:"start"`
	End       int          `json:"end" yaml:"end"`
	NameStart *int         `json:"name_start,omitempty" yaml:"name_start,omitempty"`
}

// ParseDocument decodes a Document with c and validates it.
func ParseDocument(data []byte, c codec.Codec) (*Document, error) {
	if c == nil {
		c = codec.Default
	}
	var doc Document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document (%s): %w", c.Name(), err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate reports the first declaration without a kind.
func (d *Document) Validate() error {
	for _, decl := range d.Declarations {
		if decl.Kind == nil {
			return &NameError{Name: decl.Name, Kind: ErrMissingKind}
		}
	}
	return nil
}

// Constructs returns the document as constructs ready for Builder.Apply:
// declarations and blocks first, then references ordered by start. A
// declaration without a kind is passed on as a Fragment; Build rejects it.
func (d *Document) Constructs() []Construct {
	out := make([]Construct, 0, len(d.Declarations)+len(d.Blocks)+len(d.References))
	for _, decl := range d.Declarations {
		nameStart := decl.Start
		if decl.NameStart != nil {
			nameStart = *decl.NameStart
		}
		var kind regions.Kind
		if decl.Kind != nil {
			kind = *decl.Kind
		}
		out = append(out, Declaration{
			Name:      decl.Name,
			Kind:      kind,
			Start:     decl.Start,
			End:       decl.End,
			NameStart: nameStart,
		})
	}
	for _, b := range d.Blocks {
		out = append(out, b)
	}

	refs := slices.Clone(d.References)
	slices.SortStableFunc(refs, func(a, b Reference) int { return cmp.Compare(a.Start, b.Start) })
	for _, r := range refs {
		out = append(out, r)
	}
	return out
}

// Build validates doc and freezes a Table from it.
func Build(doc *Document, optFns ...Option) (*Table, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	b := NewBuilder(optFns...)
	if err := b.Apply(doc.Constructs()...); err != nil {
		return nil, err
	}
	return b.Freeze()
}
