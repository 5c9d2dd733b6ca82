package symgraph

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/maskedset"
	"github.com/hupe1980/symgraph/namedgraph"
	"github.com/hupe1980/symgraph/regions"
)

// Table is the frozen symbol table of one source file. It combines the
// name-token index, which also carries every reference, the declaration
// bounds and the reference graph between declarations.
//
// A Table is immutable and safe for concurrent readers.
type Table struct {
	names      *regions.Index
	decls      *regions.Index
	graph      *namedgraph.View
	unresolved []Reference
}

// Usage is one reference to a declared name together with the innermost
// declaration enclosing it. Enclosing is empty at top level.
type Usage struct {
	regions.Occurrence
	Enclosing string `json:"enclosing,omitempty" yaml:"enclosing,omitempty"`
}

// Len returns the number of declared names.
func (t *Table) Len() int { return t.names.Len() }

// Names returns the declared names in slot order.
func (t *Table) Names() maskedset.Names { return t.names.Names() }

// IndexOf returns the slot of name, or -1.
func (t *Table) IndexOf(name string) int { return t.names.IndexOf(name) }

// Lookup returns the declaration bounds of name.
func (t *Table) Lookup(name string) (regions.Region, bool) { return t.decls.Lookup(name) }

// Kind returns the declaration kind of name.
func (t *Table) Kind(name string) (regions.Kind, bool) { return t.names.Kind(name) }

// OfKind yields the declarations of the given kind in slot order.
func (t *Table) OfKind(kind regions.Kind) []regions.Region {
	return slices.Collect(t.decls.OfKind(kind))
}

// RegionAt returns the innermost declaration containing pos.
func (t *Table) RegionAt(pos int) (regions.Region, bool) { return t.decls.RegionAt(pos) }

// NestingAt returns the innermost declaration containing pos and the number
// of declarations enclosing it.
func (t *Table) NestingAt(pos int) (regions.Region, int, bool) { return t.decls.NestingAt(pos) }

// NameAt returns the symbol whose name token or reference covers pos.
func (t *Table) NameAt(pos int) (string, bool) {
	if r, ok := t.names.RegionAt(pos); ok {
		return r.Name, true
	}
	if name, _, ok := t.names.ReferenceAt(pos); ok {
		return name, true
	}
	return "", false
}

// DeclarationAt resolves the symbol at pos to its declaration bounds.
func (t *Table) DeclarationAt(pos int) (regions.Region, bool) {
	name, ok := t.NameAt(pos)
	if !ok {
		return regions.Region{}, false
	}
	return t.decls.Lookup(name)
}

// ReferencesOf returns the occurrences of name in source order. It is nil
// for unknown or unreferenced names.
func (t *Table) ReferencesOf(name string) []regions.Occurrence {
	set := t.names.ReferencesOf(name)
	if set == nil || set.Len() == 0 {
		return nil
	}
	return slices.Collect(set.All())
}

// Usages returns every reference to name with its enclosing declaration.
func (t *Table) Usages(name string) []Usage {
	occ := t.ReferencesOf(name)
	if len(occ) == 0 {
		return nil
	}
	out := make([]Usage, 0, len(occ))
	for _, o := range occ {
		u := Usage{Occurrence: o}
		if r, ok := t.decls.RegionAt(o.Start); ok {
			u.Enclosing = r.Name
		}
		out = append(out, u)
	}
	return out
}

// Graph returns the reference graph keyed by name. An edge a → b means the
// body of a references b.
func (t *Table) Graph() *namedgraph.View { return t.graph }

// Unreferenced returns the declarations that are never referenced from
// outside their own bounds. Self-recursive names without other uses are
// included.
func (t *Table) Unreferenced() *maskedset.Set[string] {
	n := t.names.Len()
	unused := roaring.New()
	unused.AddRange(0, uint64(n))

	used := roaring.New()
	for name := range t.names.Referenced() {
		own, _ := t.decls.Lookup(name)
		for o := range t.names.ReferencesOf(name).All() {
			if !own.Contains(o.Start) {
				used.AddInt(t.names.IndexOf(name))
				break
			}
		}
	}
	unused.AndNot(used)

	out := t.graph.Set()
	for _, i := range unused.ToArray() {
		out.Add(t.names.At(int(i)))
	}
	return out
}

// Orphans returns the declarations with neither inbound nor outbound edges.
func (t *Table) Orphans() *maskedset.Set[string] {
	return t.graph.TopLevelOrOrphanNodes().Intersect(t.graph.BottomLevelNodes())
}

// Rank scores every declaration with PageRank.
func (t *Table) Rank(opts bsgraph.PageRankOptions) namedgraph.Ranking {
	return t.graph.PageRank(opts)
}

// Centrality scores every declaration with eigenvector centrality.
func (t *Table) Centrality(opts bsgraph.CentralityOptions) namedgraph.Ranking {
	return t.graph.EigenvectorCentrality(opts)
}

// Unresolved returns the references to names that were never declared, in
// the order they were reported.
func (t *Table) Unresolved() []Reference { return slices.Clone(t.unresolved) }

// Equal reports whether two tables hold the same declarations, references
// and edges.
func (t *Table) Equal(other *Table) bool {
	if t == other {
		return true
	}
	if other == nil {
		return false
	}
	return t.names.Equal(other.names) &&
		t.decls.Equal(other.decls) &&
		t.graph.Graph().Equal(other.graph.Graph()) &&
		slices.Equal(t.unresolved, other.unresolved)
}
