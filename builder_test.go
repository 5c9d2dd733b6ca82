package symgraph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/regions"
)

// grammar builds the table of a small grammar:
//
//	expr  [0,40)   production, name at 0, labeled block Add [6,30)
//	term  [41,70)  production, name at 41
//	NUM   [71,90)  terminal, name at 71
//	DIGIT [91,100) fragment, name at 91
//	WS    [101,110) terminal, name at 101
//
// References: term@10 and expr@20 inside Add, NUM@50 and the undeclared
// factor@60 inside term, DIGIT@80 inside NUM.
func grammar(t *testing.T, optFns ...symgraph.Option) *symgraph.Table {
	t.Helper()

	b := symgraph.NewBuilder(optFns...)
	require.NoError(t, b.Apply(
		symgraph.Declaration{Name: "expr", Kind: regions.Production, Start: 0, End: 40, NameStart: 0},
		symgraph.Block{Name: "Add", Start: 6, End: 30},
		symgraph.Declaration{Name: "term", Kind: regions.Production, Start: 41, End: 70, NameStart: 41},
		symgraph.Declaration{Name: "NUM", Kind: regions.Terminal, Start: 71, End: 90, NameStart: 71},
		symgraph.Declaration{Name: "DIGIT", Kind: regions.Fragment, Start: 91, End: 100, NameStart: 91},
		symgraph.Declaration{Name: "WS", Kind: regions.Terminal, Start: 101, End: 110, NameStart: 101},
		symgraph.Reference{Name: "term", Start: 10, End: 14},
		symgraph.Reference{Name: "expr", Start: 20, End: 24},
		symgraph.Reference{Name: "NUM", Start: 50, End: 53},
		symgraph.Reference{Name: "factor", Start: 60, End: 66},
		symgraph.Reference{Name: "DIGIT", Start: 80, End: 85},
	))

	tbl, err := b.Freeze()
	require.NoError(t, err)
	return tbl
}

func TestBuilder_Validation(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		b := symgraph.NewBuilder()
		err := b.Declare("", regions.Production, 0, 10)
		assert.ErrorIs(t, err, symgraph.ErrInvalidName)

		err = b.Reference("", 0, 1)
		assert.ErrorIs(t, err, symgraph.ErrInvalidName)
	})

	t.Run("invalid bounds", func(t *testing.T) {
		b := symgraph.NewBuilder()
		assert.ErrorIs(t, b.Declare("expr", regions.Production, 10, 10), symgraph.ErrInvalidBounds)
		assert.ErrorIs(t, b.Declare("expr", regions.Production, -1, 10), symgraph.ErrInvalidBounds)
		assert.ErrorIs(t, b.Reference("expr", 5, 2), symgraph.ErrInvalidBounds)
	})

	t.Run("name token outside declaration", func(t *testing.T) {
		b := symgraph.NewBuilder()
		err := b.DeclareAt("expr", regions.Production, 8, 0, 10)
		require.ErrorIs(t, err, symgraph.ErrInvalidBounds)

		var ne *symgraph.NameError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "expr", ne.Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		b := symgraph.NewBuilder()
		require.NoError(t, b.Declare("expr", regions.Production, 0, 10))
		err := b.Declare("expr", regions.Production, 20, 30)
		assert.ErrorIs(t, err, symgraph.ErrDuplicateName)
	})

	t.Run("frozen", func(t *testing.T) {
		b := symgraph.NewBuilder()
		require.NoError(t, b.Declare("expr", regions.Production, 0, 10))
		_, err := b.Freeze()
		require.NoError(t, err)

		assert.ErrorIs(t, b.Declare("term", regions.Production, 20, 30), symgraph.ErrFrozen)
		assert.ErrorIs(t, b.Reference("expr", 20, 24), symgraph.ErrFrozen)
		_, err = b.Freeze()
		assert.ErrorIs(t, err, symgraph.ErrFrozen)
	})

	t.Run("apply stops at first error", func(t *testing.T) {
		b := symgraph.NewBuilder()
		err := b.Apply(
			symgraph.Declaration{Name: "expr", Kind: regions.Production, Start: 0, End: 10},
			symgraph.Declaration{Name: "expr", Kind: regions.Production, Start: 20, End: 30},
			symgraph.Declaration{Name: "term", Kind: regions.Production, Start: 40, End: 50},
		)
		require.ErrorIs(t, err, symgraph.ErrDuplicateName)

		tbl, err := b.Freeze()
		require.NoError(t, err)
		assert.Equal(t, 1, tbl.Len())
	})
}

func TestBuilder_OrderingViolation(t *testing.T) {
	b := symgraph.NewBuilder()
	require.NoError(t, b.Declare("expr", regions.Production, 0, 40))
	require.NoError(t, b.Declare("term", regions.Production, 41, 60))
	require.NoError(t, b.Reference("term", 20, 24))
	require.NoError(t, b.Reference("term", 10, 14))

	_, err := b.Freeze()
	require.ErrorIs(t, err, symgraph.ErrOrderingViolation)

	var oe *symgraph.OrderingError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "term", oe.Name)
	assert.Equal(t, 10, oe.Start)
	assert.Equal(t, 24, oe.PrevEnd)
}

func TestBuilder_Freeze(t *testing.T) {
	tbl := grammar(t)

	assert.Equal(t, 6, tbl.Len())
	assert.Equal(t, []string{"expr", "Add", "term", "NUM", "DIGIT", "WS"}, []string(tbl.Names()))

	g := tbl.Graph()
	assert.Equal(t, 4, g.Graph().EdgeCount())
	assert.True(t, g.HasEdge("Add", "term"))
	assert.True(t, g.HasEdge("Add", "expr"))
	assert.True(t, g.HasEdge("term", "NUM"))
	assert.True(t, g.HasEdge("NUM", "DIGIT"))
	assert.False(t, g.HasEdge("expr", "term"), "references inside a block belong to the block")

	assert.Equal(t, []symgraph.Reference{{Name: "factor", Start: 60, End: 66}}, tbl.Unresolved())
}

func TestBuilder_TopLevelReference(t *testing.T) {
	b := symgraph.NewBuilder()
	require.NoError(t, b.Declare("expr", regions.Production, 10, 20))
	require.NoError(t, b.Reference("expr", 0, 4))

	tbl, err := b.Freeze()
	require.NoError(t, err)

	assert.Zero(t, tbl.Graph().Graph().EdgeCount())
	assert.Len(t, tbl.ReferencesOf("expr"), 1)
	assert.True(t, tbl.Unreferenced().IsEmpty())

	usages := tbl.Usages("expr")
	require.Len(t, usages, 1)
	assert.Empty(t, usages[0].Enclosing)
}

func TestBuilder_Metrics(t *testing.T) {
	metrics := &symgraph.BasicMetricsCollector{}
	grammar(t, symgraph.WithMetricsCollector(metrics))

	b := symgraph.NewBuilder(symgraph.WithMetricsCollector(metrics))
	require.NoError(t, b.Declare("a", regions.Production, 0, 10))
	require.NoError(t, b.Reference("a", 5, 6))
	require.NoError(t, b.Reference("a", 2, 3))
	_, err := b.Freeze()
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.FreezeCount)
	assert.Equal(t, int64(1), stats.FreezeErrors)
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "expr", symgraph.NameOf(symgraph.Declaration{Name: "expr"}))
	assert.Equal(t, "term", symgraph.NameOf(symgraph.Reference{Name: "term"}))
	assert.Equal(t, "Add", symgraph.NameOf(symgraph.Block{Name: "Add"}))
	assert.Equal(t, "block", symgraph.ConstructBlock.String())
}
