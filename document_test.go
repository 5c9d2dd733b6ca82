package symgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/codec"
	"github.com/hupe1980/symgraph/regions"
)

const grammarYAML = `
declarations:
  - {name: expr, kind: production, start: 0, end: 40}
  - {name: term, kind: production, start: 41, end: 70}
  - {name: NUM, kind: terminal, start: 71, end: 90}
  - {name: DIGIT, kind: fragment, start: 91, end: 100}
  - {name: WS, kind: terminal, start: 101, end: 110}
blocks:
  - {name: Add, start: 6, end: 30}
references:
  - {name: DIGIT, start: 80, end: 85}
  - {name: factor, start: 60, end: 66}
  - {name: NUM, start: 50, end: 53}
  - {name: expr, start: 20, end: 24}
  - {name: term, start: 10, end: 14}
`

func TestParseDocument(t *testing.T) {
	doc, err := symgraph.ParseDocument([]byte(grammarYAML), codec.YAML{})
	require.NoError(t, err)
	require.Len(t, doc.Declarations, 5)
	assert.Nil(t, doc.Declarations[0].NameStart)

	tbl, err := symgraph.Build(doc)
	require.NoError(t, err)

	// Blocks are declared after the rules here, so slots differ from
	// the grammar fixture while the edges are the same.
	assert.Equal(t, []string{"expr", "term", "NUM", "DIGIT", "WS", "Add"}, []string(tbl.Names()))
	assert.True(t, tbl.Graph().HasEdge("Add", "term"))
	assert.True(t, tbl.Graph().HasEdge("NUM", "DIGIT"))
	assert.Len(t, tbl.Unresolved(), 1)

	name, ok := tbl.NameAt(42)
	require.True(t, ok)
	assert.Equal(t, "term", name)
}

func TestParseDocument_Errors(t *testing.T) {
	_, err := symgraph.ParseDocument([]byte(`declarations: [{name: x, kind: rule}]`), codec.YAML{})
	assert.Error(t, err)

	_, err = symgraph.ParseDocument([]byte(`{`), nil)
	assert.Error(t, err)
}

func TestDocument_Constructs(t *testing.T) {
	nameStart := 3
	kind := regions.Production
	doc := &symgraph.Document{
		Declarations: []symgraph.DocumentDeclaration{
			{Name: "a", Kind: &kind, Start: 0, End: 10, NameStart: &nameStart},
		},
		References: []symgraph.Reference{
			{Name: "a", Start: 20, End: 21},
			{Name: "a", Start: 12, End: 13},
		},
	}

	constructs := doc.Constructs()
	require.Len(t, constructs, 3)
	assert.Equal(t, 3, constructs[0].(symgraph.Declaration).NameStart)
	assert.Equal(t, regions.Production, constructs[0].(symgraph.Declaration).Kind)
	assert.Equal(t, 12, constructs[1].(symgraph.Reference).Start)
	assert.Equal(t, 20, constructs[2].(symgraph.Reference).Start)
	assert.Len(t, doc.References, 2, "input is not reordered")
	assert.Equal(t, 20, doc.References[0].Start)
}

func TestDocument_MissingKind(t *testing.T) {
	for name, c := range map[string]codec.Codec{"yaml": codec.YAML{}, "json": codec.JSON{}} {
		t.Run(name, func(t *testing.T) {
			data := codec.MustMarshal(c, map[string]any{
				"declarations": []map[string]any{
					{"name": "expr", "kind": "production", "start": 0, "end": 10},
					{"name": "term", "start": 11, "end": 20},
				},
			})
			_, err := symgraph.ParseDocument(data, c)
			var ne *symgraph.NameError
			require.ErrorAs(t, err, &ne)
			assert.Equal(t, "term", ne.Name)
			assert.ErrorIs(t, err, symgraph.ErrMissingKind)
		})
	}

	t.Run("build", func(t *testing.T) {
		doc := &symgraph.Document{
			Declarations: []symgraph.DocumentDeclaration{{Name: "expr", Start: 0, End: 10}},
		}
		_, err := symgraph.Build(doc)
		assert.ErrorIs(t, err, symgraph.ErrMissingKind)
	})

	t.Run("fragment is explicit", func(t *testing.T) {
		doc, err := symgraph.ParseDocument([]byte(`declarations: [{name: DIGIT, kind: fragment, start: 0, end: 5}]`), codec.YAML{})
		require.NoError(t, err)
		require.NotNil(t, doc.Declarations[0].Kind)
		assert.Equal(t, regions.Fragment, *doc.Declarations[0].Kind)
	})
}
