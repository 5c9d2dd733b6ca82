package symgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/namedgraph"
	"github.com/hupe1980/symgraph/regions"
)

// Builder collects the constructs of one source file. It is not safe for
// concurrent use. After Freeze every method returns ErrFrozen.
type Builder struct {
	opts   options
	decls  []Declaration
	refs   []Reference
	seen   map[string]struct{}
	frozen bool
}

// NewBuilder creates an empty Builder.
func NewBuilder(optFns ...Option) *Builder {
	return &Builder{
		opts: applyOptions(optFns),
		seen: make(map[string]struct{}),
	}
}

// Apply records constructs in order, stopping at the first error.
func (b *Builder) Apply(constructs ...Construct) error {
	for _, c := range constructs {
		var err error
		switch c := c.(type) {
		case Declaration:
			err = b.DeclareAt(c.Name, c.Kind, c.NameStart, c.Start, c.End)
		case Reference:
			err = b.Reference(c.Name, c.Start, c.End)
		case Block:
			err = b.declare(Declaration{Name: c.Name, Kind: regions.LabeledAlternative, Start: c.Start, End: c.End, NameStart: -1})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Declare records a declaration whose name token starts at start.
func (b *Builder) Declare(name string, kind regions.Kind, start, end int) error {
	return b.DeclareAt(name, kind, start, start, end)
}

// DeclareAt records a declaration spanning [start, end) whose name token
// starts at nameStart. A negative nameStart records no name token.
func (b *Builder) DeclareAt(name string, kind regions.Kind, nameStart, start, end int) error {
	return b.declare(Declaration{Name: name, Kind: kind, Start: start, End: end, NameStart: nameStart})
}

func (b *Builder) declare(d Declaration) error {
	if b.frozen {
		return ErrFrozen
	}
	if d.Name == "" {
		return &NameError{Name: d.Name, Kind: ErrInvalidName}
	}
	if d.Start < 0 || d.End <= d.Start {
		return &NameError{Name: d.Name, Kind: ErrInvalidBounds,
			cause: fmt.Errorf("declaration [%d,%d)", d.Start, d.End)}
	}
	if d.NameStart >= 0 && (d.NameStart < d.Start || d.NameStart+len(d.Name) > d.End) {
		return &NameError{Name: d.Name, Kind: ErrInvalidBounds,
			cause: fmt.Errorf("name token at %d outside declaration [%d,%d)", d.NameStart, d.Start, d.End)}
	}
	if _, dup := b.seen[d.Name]; dup {
		return &NameError{Name: d.Name, Kind: ErrDuplicateName}
	}
	b.seen[d.Name] = struct{}{}
	b.decls = append(b.decls, d)
	return nil
}

// Reference records a use of name at [start, end). The name does not have
// to be declared yet; references that stay unresolved at Freeze are kept
// separately.
func (b *Builder) Reference(name string, start, end int) error {
	if b.frozen {
		return ErrFrozen
	}
	if name == "" {
		return &NameError{Name: name, Kind: ErrInvalidName}
	}
	if start < 0 || end <= start {
		return &NameError{Name: name, Kind: ErrInvalidBounds,
			cause: fmt.Errorf("reference [%d,%d)", start, end)}
	}
	b.refs = append(b.refs, Reference{Name: name, Start: start, End: end})
	return nil
}

// Freeze builds the Table. References to one name must have been reported
// in source order.
func (b *Builder) Freeze() (*Table, error) {
	if b.frozen {
		return nil, ErrFrozen
	}
	b.frozen = true

	start := time.Now()
	t, err := b.freeze()
	elapsed := time.Since(start)

	edges := 0
	if t != nil {
		edges = t.graph.Graph().EdgeCount()
	}
	b.opts.metricsCollector.RecordFreeze(len(b.decls), len(b.refs), elapsed, err)
	b.opts.logger.LogFreeze(context.Background(), len(b.decls), len(b.refs), edges, elapsed, err)
	return t, err
}

func (b *Builder) freeze() (*Table, error) {
	rb := regions.NewBuilder()
	for _, d := range b.decls {
		rb.Declare(d.Name, d.Kind)
	}
	names := rb.Build(regions.NameLengthEnds)
	decls := names.SecondaryView()

	for _, d := range b.decls {
		if d.NameStart >= 0 {
			if err := names.Add(d.Name, d.Kind, d.NameStart, d.NameStart+len(d.Name)); err != nil {
				return nil, translateError(err)
			}
		}
		if err := decls.Add(d.Name, d.Kind, d.Start, d.End); err != nil {
			return nil, translateError(err)
		}
	}

	var unresolved []Reference
	for _, r := range b.refs {
		if names.IndexOf(r.Name) < 0 {
			unresolved = append(unresolved, r)
			continue
		}
		if err := names.AddReference(r.Name, r.Start, r.End); err != nil {
			if errors.Is(err, regions.ErrOrderingViolation) {
				set := names.ReferencesOf(r.Name)
				return nil, &OrderingError{Name: r.Name, Start: r.Start, PrevEnd: set.At(set.Len() - 1).End, cause: err}
			}
			return nil, translateError(err)
		}
	}

	decls.BuildPositions()
	gb := bsgraph.NewBuilder(names.Len())
	for _, r := range b.refs {
		to := names.IndexOf(r.Name)
		if to < 0 {
			continue
		}
		from, ok := decls.RegionAt(r.Start)
		if !ok {
			continue
		}
		if err := gb.AddEdge(from.Index, to); err != nil {
			return nil, err
		}
	}

	return newTable(names, decls, gb.Build(), unresolved)
}

func newTable(names, decls *regions.Index, g *bsgraph.Graph, unresolved []Reference) (*Table, error) {
	view, err := namedgraph.New(g, names.Names())
	if err != nil {
		return nil, err
	}
	names.BuildPositions()
	decls.BuildPositions()
	return &Table{
		names:      names,
		decls:      decls,
		graph:      view,
		unresolved: unresolved,
	}, nil
}
