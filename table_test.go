package symgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/regions"
)

func TestTable_Positions(t *testing.T) {
	tbl := grammar(t)

	t.Run("RegionAt", func(t *testing.T) {
		tests := []struct {
			pos  int
			want string
			ok   bool
		}{
			{pos: 0, want: "expr", ok: true},
			{pos: 8, want: "Add", ok: true},
			{pos: 29, want: "Add", ok: true},
			{pos: 30, want: "expr", ok: true},
			{pos: 40, ok: false},
			{pos: 45, want: "term", ok: true},
			{pos: 109, want: "WS", ok: true},
			{pos: 110, ok: false},
		}
		for _, tt := range tests {
			r, ok := tbl.RegionAt(tt.pos)
			require.Equal(t, tt.ok, ok, "pos %d", tt.pos)
			if ok {
				assert.Equal(t, tt.want, r.Name, "pos %d", tt.pos)
			}
		}
	})

	t.Run("NestingAt", func(t *testing.T) {
		r, depth, ok := tbl.NestingAt(12)
		require.True(t, ok)
		assert.Equal(t, "Add", r.Name)
		assert.Equal(t, 1, depth)

		r, depth, ok = tbl.NestingAt(35)
		require.True(t, ok)
		assert.Equal(t, "expr", r.Name)
		assert.Equal(t, 0, depth)
	})

	t.Run("NameAt", func(t *testing.T) {
		name, ok := tbl.NameAt(1)
		require.True(t, ok)
		assert.Equal(t, "expr", name)

		name, ok = tbl.NameAt(11)
		require.True(t, ok)
		assert.Equal(t, "term", name)

		_, ok = tbl.NameAt(5)
		assert.False(t, ok)

		_, ok = tbl.NameAt(61)
		assert.False(t, ok, "unresolved references are not indexed")
	})

	t.Run("DeclarationAt", func(t *testing.T) {
		r, ok := tbl.DeclarationAt(11)
		require.True(t, ok)
		assert.Equal(t, regions.Region{Name: "term", Kind: regions.Production, Start: 41, End: 70, Index: 2}, r)

		r, ok = tbl.DeclarationAt(92)
		require.True(t, ok)
		assert.Equal(t, "DIGIT", r.Name)

		_, ok = tbl.DeclarationAt(5)
		assert.False(t, ok)
	})
}

func TestTable_Lookup(t *testing.T) {
	tbl := grammar(t)

	assert.Equal(t, 3, tbl.IndexOf("NUM"))
	assert.Equal(t, -1, tbl.IndexOf("factor"))

	r, ok := tbl.Lookup("Add")
	require.True(t, ok)
	assert.Equal(t, regions.LabeledAlternative, r.Kind)
	assert.Equal(t, 6, r.Start)

	_, ok = tbl.Lookup("factor")
	assert.False(t, ok)

	kind, ok := tbl.Kind("DIGIT")
	require.True(t, ok)
	assert.Equal(t, regions.Fragment, kind)

	var terminals []string
	for _, r := range tbl.OfKind(regions.Terminal) {
		terminals = append(terminals, r.Name)
	}
	assert.Equal(t, []string{"NUM", "WS"}, terminals)
}

func TestTable_References(t *testing.T) {
	tbl := grammar(t)

	assert.Equal(t, []regions.Occurrence{{Start: 80, End: 85}}, tbl.ReferencesOf("DIGIT"))
	assert.Nil(t, tbl.ReferencesOf("WS"))
	assert.Nil(t, tbl.ReferencesOf("factor"))

	assert.Equal(t, []symgraph.Usage{
		{Occurrence: regions.Occurrence{Start: 10, End: 14}, Enclosing: "Add"},
	}, tbl.Usages("term"))
	assert.Equal(t, []symgraph.Usage{
		{Occurrence: regions.Occurrence{Start: 50, End: 53}, Enclosing: "term"},
	}, tbl.Usages("NUM"))
	assert.Nil(t, tbl.Usages("WS"))
}

func TestTable_GraphQueries(t *testing.T) {
	tbl := grammar(t)

	t.Run("Unreferenced", func(t *testing.T) {
		// expr is only referenced from inside itself.
		assert.Equal(t, []string{"expr", "Add", "WS"}, tbl.Unreferenced().Slice())
	})

	t.Run("Orphans", func(t *testing.T) {
		assert.Equal(t, []string{"WS"}, tbl.Orphans().Slice())
	})

	t.Run("Closures", func(t *testing.T) {
		g := tbl.Graph()
		assert.Equal(t, []string{"expr", "term", "NUM", "DIGIT"}, g.ClosureOf("Add").Slice())
		assert.Equal(t, []string{"Add", "term", "NUM"}, g.ReverseClosureOf("DIGIT").Slice())
		assert.True(t, g.CyclicNodes().IsEmpty())
	})

	t.Run("Rank", func(t *testing.T) {
		ranking := tbl.Rank(bsgraph.DefaultPageRankOptions())
		require.Len(t, ranking.Scores, tbl.Len())

		ranked := ranking.Ranked()
		assert.Equal(t, "DIGIT", ranked[0].Name, "the end of the longest chain ranks highest")
		assert.Greater(t, ranking.Scores["DIGIT"], ranking.Scores["WS"])
	})

	t.Run("Centrality", func(t *testing.T) {
		ranking := tbl.Centrality(bsgraph.DefaultCentralityOptions())
		assert.Len(t, ranking.Scores, tbl.Len())
	})
}

func TestTable_Equal(t *testing.T) {
	a := grammar(t)
	b := grammar(t)
	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(nil))

	other := symgraph.NewBuilder()
	require.NoError(t, other.Declare("expr", regions.Production, 0, 40))
	c, err := other.Freeze()
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}
