package namedgraph

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/maskedset"
)

var (
	// ErrSizeMismatch is returned when the name universe and the graph
	// differ in size.
	ErrSizeMismatch = errors.New("name count does not match node count")
	// ErrUnsortedNames is returned when the names are not strictly sorted.
	ErrUnsortedNames = errors.New("names are not sorted")
)

// View is a name-keyed view of a graph.
type View struct {
	g     *bsgraph.Graph
	names maskedset.Names
}

// New wraps g, naming node i names[i].
func New(g *bsgraph.Graph, names maskedset.Names) (*View, error) {
	if g.Len() != names.Len() {
		return nil, fmt.Errorf("%w: %d names, %d nodes", ErrSizeMismatch, names.Len(), g.Len())
	}
	if !names.IsSorted() {
		return nil, ErrUnsortedNames
	}
	return &View{g: g, names: names}, nil
}

// Graph returns the underlying graph.
func (v *View) Graph() *bsgraph.Graph { return v.g }

// Names returns the name universe.
func (v *View) Names() maskedset.Names { return v.names }

// Len returns the number of nodes.
func (v *View) Len() int { return v.g.Len() }

func (v *View) set(bits *bitset.BitSet) *maskedset.Set[string] {
	return maskedset.FromBits[string](v.names, bits)
}

func (v *View) empty() *maskedset.Set[string] {
	return maskedset.New[string](v.names)
}

// Set returns a set of the given names over the view's universe.
func (v *View) Set(names ...string) *maskedset.Set[string] {
	return maskedset.Of[string](v.names, names...)
}

// HasEdge reports whether from references to.
func (v *View) HasEdge(from, to string) bool {
	return v.g.HasEdge(v.names.IndexOf(from), v.names.IndexOf(to))
}

// Outbound returns the names referenced by name.
func (v *View) Outbound(name string) *maskedset.Set[string] {
	return v.query(name, v.g.Outbound)
}

// Inbound returns the names referencing name.
func (v *View) Inbound(name string) *maskedset.Set[string] {
	return v.query(name, v.g.Inbound)
}

// OutDegree returns the number of names referenced by name.
func (v *View) OutDegree(name string) int { return v.g.OutDegree(v.names.IndexOf(name)) }

// InDegree returns the number of names referencing name.
func (v *View) InDegree(name string) int { return v.g.InDegree(v.names.IndexOf(name)) }

// ClosureOf returns every name reachable from name.
func (v *View) ClosureOf(name string) *maskedset.Set[string] {
	return v.query(name, v.g.ClosureOf)
}

// ReverseClosureOf returns every name from which name is reachable.
func (v *View) ReverseClosureOf(name string) *maskedset.Set[string] {
	return v.query(name, v.g.ReverseClosureOf)
}

func (v *View) query(name string, fn func(int) *bitset.BitSet) *maskedset.Set[string] {
	i := v.names.IndexOf(name)
	if i < 0 {
		return v.empty()
	}
	return v.set(fn(i))
}

// CyclicNodes returns the names that lie on a cycle.
func (v *View) CyclicNodes() *maskedset.Set[string] { return v.set(v.g.CyclicNodes()) }

// DisjointItems returns the names that reach something no other single
// name reaches.
func (v *View) DisjointItems() *maskedset.Set[string] { return v.set(v.g.DisjointItems()) }

// TopLevelOrOrphanNodes returns the names nothing references.
func (v *View) TopLevelOrOrphanNodes() *maskedset.Set[string] {
	return v.set(v.g.TopLevelOrOrphanNodes())
}

// BottomLevelNodes returns the names that reference nothing.
func (v *View) BottomLevelNodes() *maskedset.Set[string] {
	return v.set(v.g.BottomLevelNodes())
}

// Distance returns the signed shortest hop count between two names; see
// bsgraph.Graph.Distance.
func (v *View) Distance(from, to string) (int, bool) {
	return v.g.Distance(v.names.IndexOf(from), v.names.IndexOf(to))
}

// ForwardDistance returns the hop count of the shortest path from → to.
func (v *View) ForwardDistance(from, to string) (int, bool) {
	return v.g.ForwardDistance(v.names.IndexOf(from), v.names.IndexOf(to))
}

// BackwardDistance returns the hop count of the shortest path to → from.
func (v *View) BackwardDistance(from, to string) (int, bool) {
	return v.g.BackwardDistance(v.names.IndexOf(from), v.names.IndexOf(to))
}

// Edges yields every (from, to) pair ordered by name.
func (v *View) Edges() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for e := range v.g.Edges() {
			if !yield(v.names[e.From], v.names[e.To]) {
				return
			}
		}
	}
}

// Ranking holds scores keyed by name.
type Ranking struct {
	Scores     map[string]float64
	Iterations int
	Converged  bool
}

// Scored is one entry of a sorted ranking.
type Scored struct {
	Name  string
	Score float64
}

// Ranked returns the scores ordered by descending score, then name.
func (r Ranking) Ranked() []Scored {
	out := make([]Scored, 0, len(r.Scores))
	for name, score := range r.Scores {
		out = append(out, Scored{Name: name, Score: score})
	}
	slices.SortFunc(out, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// PageRank ranks the names with bsgraph.Graph.PageRank.
func (v *View) PageRank(opts bsgraph.PageRankOptions) Ranking {
	return v.ranking(v.g.PageRank(opts))
}

// EigenvectorCentrality ranks the names with
// bsgraph.Graph.EigenvectorCentrality.
func (v *View) EigenvectorCentrality(opts bsgraph.CentralityOptions) Ranking {
	return v.ranking(v.g.EigenvectorCentrality(opts))
}

func (v *View) ranking(res bsgraph.RankResult) Ranking {
	scores := make(map[string]float64, len(res.Scores))
	for i, s := range res.Scores {
		scores[v.names[i]] = s
	}
	return Ranking{Scores: scores, Iterations: res.Iterations, Converged: res.Converged}
}
