package bsgraph

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/bits-and-blooms/bitset"
)

var (
	// ErrNotTranspose is returned when the inbound vectors are not the exact
	// transpose of the outbound vectors.
	ErrNotTranspose = errors.New("inbound adjacency is not the transpose of outbound adjacency")
	// ErrNodeOutOfRange is returned for edges that reference unknown nodes.
	ErrNodeOutOfRange = errors.New("node out of range")
)

// Edge is a directed edge From → To.
type Edge struct {
	From int
	To   int
}

// Graph is an immutable directed graph over nodes [0, Len()).
type Graph struct {
	out []*bitset.BitSet
	in  []*bitset.BitSet

	top    *bitset.BitSet
	bottom *bitset.BitSet
	edges  int

	closuresOnce sync.Once
	closures     []*bitset.BitSet
}

// New creates a graph from outbound adjacency vectors; out[i] has bit j set
// for every edge i → j. Nil vectors are treated as empty. The graph takes
// ownership of out. New panics if a vector references a node >= len(out).
func New(out []*bitset.BitSet) *Graph {
	out = normalize(out)
	if err := checkRange(out); err != nil {
		panic(fmt.Sprintf("bsgraph: %v", err))
	}
	return newGraph(out, transpose(out))
}

// NewWithInbound creates a graph from both adjacency directions. With the
// symgraphdebug build tag the transpose relation is verified; otherwise the
// caller must guarantee it.
func NewWithInbound(out, in []*bitset.BitSet) (*Graph, error) {
	if len(out) != len(in) {
		return nil, fmt.Errorf("%w: %d outbound vs %d inbound vectors", ErrNotTranspose, len(out), len(in))
	}
	out, in = normalize(out), normalize(in)
	if checkInvariants {
		if err := checkRange(out); err != nil {
			return nil, err
		}
		if err := validate(out, in); err != nil {
			return nil, err
		}
	}
	return newGraph(out, in), nil
}

func newGraph(out, in []*bitset.BitSet) *Graph {
	n := uint(len(out))
	g := &Graph{
		out:    out,
		in:     in,
		top:    bitset.New(n),
		bottom: bitset.New(n),
	}
	for i := range out {
		if in[i].None() {
			g.top.Set(uint(i))
		}
		c := out[i].Count()
		if c == 0 {
			g.bottom.Set(uint(i))
		}
		g.edges += int(c)
	}
	return g
}

func normalize(vs []*bitset.BitSet) []*bitset.BitSet {
	for i, v := range vs {
		if v == nil {
			vs[i] = bitset.New(uint(len(vs)))
		}
	}
	return vs
}

func checkRange(out []*bitset.BitSet) error {
	n := uint(len(out))
	for i, v := range out {
		if j, ok := v.NextSet(n); ok {
			return fmt.Errorf("%w: edge %d -> %d in graph of %d nodes", ErrNodeOutOfRange, i, j, n)
		}
	}
	return nil
}

func transpose(out []*bitset.BitSet) []*bitset.BitSet {
	n := uint(len(out))
	in := make([]*bitset.BitSet, n)
	for i := range in {
		in[i] = bitset.New(n)
	}
	for i, v := range out {
		for j, ok := v.NextSet(0); ok; j, ok = v.NextSet(j + 1) {
			in[j].Set(uint(i))
		}
	}
	return in
}

func validate(out, in []*bitset.BitSet) error {
	n := uint(len(out))
	for i := range out {
		for j := uint(0); j < n; j++ {
			if out[i].Test(j) != in[j].Test(uint(i)) {
				return fmt.Errorf("%w: edge %d -> %d", ErrNotTranspose, i, j)
			}
		}
	}
	for j, v := range in {
		if i, ok := v.NextSet(n); ok {
			return fmt.Errorf("%w: inbound %d <- %d out of range", ErrNotTranspose, j, i)
		}
	}
	return nil
}

// Validate checks that the inbound vectors are the exact transpose of the
// outbound vectors.
func (g *Graph) Validate() error {
	if err := checkRange(g.out); err != nil {
		return err
	}
	return validate(g.out, g.in)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.out) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

func (g *Graph) valid(i int) bool { return i >= 0 && i < len(g.out) }

// HasEdge reports whether the edge from → to exists.
func (g *Graph) HasEdge(from, to int) bool {
	return g.valid(from) && g.valid(to) && g.out[from].Test(uint(to))
}

// Outbound returns a copy of the nodes i references.
func (g *Graph) Outbound(i int) *bitset.BitSet {
	if !g.valid(i) {
		return bitset.New(0)
	}
	return g.out[i].Clone()
}

// Inbound returns a copy of the nodes referencing i.
func (g *Graph) Inbound(i int) *bitset.BitSet {
	if !g.valid(i) {
		return bitset.New(0)
	}
	return g.in[i].Clone()
}

// OutDegree returns the number of edges leaving i.
func (g *Graph) OutDegree(i int) int {
	if !g.valid(i) {
		return 0
	}
	return int(g.out[i].Count())
}

// InDegree returns the number of edges entering i.
func (g *Graph) InDegree(i int) int {
	if !g.valid(i) {
		return 0
	}
	return int(g.in[i].Count())
}

// TopLevelOrOrphanNodes returns the nodes without inbound edges.
func (g *Graph) TopLevelOrOrphanNodes() *bitset.BitSet { return g.top.Clone() }

// BottomLevelNodes returns the nodes without outbound edges.
func (g *Graph) BottomLevelNodes() *bitset.BitSet { return g.bottom.Clone() }

// Edges yields every edge ordered by source, then target.
func (g *Graph) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for i, v := range g.out {
			for j, ok := v.NextSet(0); ok; j, ok = v.NextSet(j + 1) {
				if !yield(Edge{From: i, To: int(j)}) {
					return
				}
			}
		}
	}
}

// Transpose returns the graph with every edge reversed.
func (g *Graph) Transpose() *Graph {
	return newGraph(cloneAll(g.in), cloneAll(g.out))
}

// Equal reports whether both graphs have the same nodes and edges.
func (g *Graph) Equal(other *Graph) bool {
	if g == other {
		return true
	}
	if other == nil || g.Len() != other.Len() || g.edges != other.edges {
		return false
	}
	for i := range g.out {
		if g.out[i].SymmetricDifferenceCardinality(other.out[i]) != 0 {
			return false
		}
	}
	return true
}

func cloneAll(vs []*bitset.BitSet) []*bitset.BitSet {
	out := make([]*bitset.BitSet, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}

// Builder accumulates edges for a graph of a fixed size.
type Builder struct {
	out []*bitset.BitSet
}

// NewBuilder creates a builder for a graph of n nodes.
func NewBuilder(n int) *Builder {
	out := make([]*bitset.BitSet, n)
	for i := range out {
		out[i] = bitset.New(uint(n))
	}
	return &Builder{out: out}
}

// AddEdge records the edge from → to. Adding an edge twice is a no-op.
func (b *Builder) AddEdge(from, to int) error {
	n := len(b.out)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: edge %d -> %d in graph of %d nodes", ErrNodeOutOfRange, from, to, n)
	}
	b.out[from].Set(uint(to))
	return nil
}

// Build returns the graph. The builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	g := newGraph(b.out, transpose(b.out))
	b.out = nil
	return g
}
