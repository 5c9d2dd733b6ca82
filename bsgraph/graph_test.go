package bsgraph

import (
	"bytes"
	"slices"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgraph/persistence"
)

const (
	nodeA = iota
	nodeB
	nodeC
)

func members(b *bitset.BitSet) []int {
	out := []int{}
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

func build(t *testing.T, n int, edges ...Edge) *Graph {
	t.Helper()

	b := NewBuilder(n)
	for _, e := range edges {
		require.NoError(t, b.AddEdge(e.From, e.To))
	}
	return b.Build()
}

// entryGraph is A → B, B → C, A → C.
func entryGraph(t *testing.T) *Graph {
	return build(t, 3, Edge{nodeA, nodeB}, Edge{nodeB, nodeC}, Edge{nodeA, nodeC})
}

func TestEntryGraph(t *testing.T) {
	g := entryGraph(t)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, []int{nodeB, nodeC}, members(g.ClosureOf(nodeA)))
	assert.Equal(t, []int{nodeA}, members(g.TopLevelOrOrphanNodes()))
	assert.Equal(t, []int{nodeC}, members(g.BottomLevelNodes()))

	d, ok := g.Distance(nodeA, nodeC)
	require.True(t, ok)
	assert.Equal(t, 1, d)

	assert.True(t, g.HasEdge(nodeA, nodeB))
	assert.False(t, g.HasEdge(nodeB, nodeA))
	assert.False(t, g.HasEdge(nodeA, 7))
	assert.Equal(t, 2, g.OutDegree(nodeA))
	assert.Equal(t, 2, g.InDegree(nodeC))
	assert.Equal(t, 0, g.InDegree(-1))
	assert.Equal(t, []int{nodeA, nodeB}, members(g.Inbound(nodeC)))
	assert.Equal(t, []int{nodeC}, members(g.Outbound(nodeB)))
	assert.Empty(t, members(g.Outbound(9)))
}

func TestDistance(t *testing.T) {
	g := build(t, 5,
		Edge{0, 1}, Edge{1, 2}, Edge{2, 3},
		Edge{3, 0},
	)

	t.Run("self", func(t *testing.T) {
		d, ok := g.Distance(2, 2)
		require.True(t, ok)
		assert.Equal(t, 0, d)
	})

	t.Run("forward shorter", func(t *testing.T) {
		d, ok := g.Distance(0, 1)
		require.True(t, ok)
		assert.Equal(t, 1, d)
	})

	t.Run("backward shorter", func(t *testing.T) {
		// 0 → 3 takes three hops, 3 → 0 one.
		d, ok := g.Distance(0, 3)
		require.True(t, ok)
		assert.Equal(t, -1, d)

		f, ok := g.ForwardDistance(0, 3)
		require.True(t, ok)
		assert.Equal(t, 3, f)

		r, ok := g.BackwardDistance(0, 3)
		require.True(t, ok)
		assert.Equal(t, 1, r)
	})

	t.Run("tie prefers forward", func(t *testing.T) {
		h := build(t, 4, Edge{0, 1}, Edge{1, 2}, Edge{2, 3}, Edge{3, 0})
		d, ok := h.Distance(0, 2)
		require.True(t, ok)
		assert.Equal(t, 2, d)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, ok := g.Distance(0, 4)
		assert.False(t, ok)
		_, ok = g.Distance(0, 99)
		assert.False(t, ok)
	})

	t.Run("backward only", func(t *testing.T) {
		h := entryGraph(t)
		d, ok := h.Distance(nodeC, nodeA)
		require.True(t, ok)
		assert.Equal(t, -1, d)
	})
}

func TestClosure(t *testing.T) {
	// 0 → 1 → 2 → 1, 3 → 0, 4 isolated
	g := build(t, 5, Edge{0, 1}, Edge{1, 2}, Edge{2, 1}, Edge{3, 0})

	assert.Equal(t, []int{1, 2}, members(g.ClosureOf(0)))
	assert.Equal(t, []int{1, 2}, members(g.ClosureOf(1)))
	assert.Equal(t, []int{0, 1, 2}, members(g.ClosureOf(3)))
	assert.Empty(t, members(g.ClosureOf(4)))
	assert.Equal(t, []int{1, 2}, members(g.CyclicNodes()))

	t.Run("path equivalence", func(t *testing.T) {
		for i := range g.Len() {
			c := g.ClosureOf(i)
			for j := range g.Len() {
				// A path of length >= 1 from i to j exists iff some
				// successor of i is j or reaches j.
				path := false
				for _, s := range members(g.Outbound(i)) {
					if d, ok := g.ForwardDistance(s, j); ok && d >= 0 {
						path = true
					}
				}
				assert.Equal(t, path, c.Test(uint(j)), "%d -> %d", i, j)
			}
		}
	})

	t.Run("reverse equals transposed", func(t *testing.T) {
		tr := g.Transpose()
		for i := range g.Len() {
			assert.Equal(t, members(tr.ClosureOf(i)), members(g.ReverseClosureOf(i)), "node %d", i)
		}
	})
}

func TestDisjointItems(t *testing.T) {
	assert.Equal(t, []int{nodeA}, members(entryGraph(t).DisjointItems()))

	g := build(t, 4, Edge{0, 1}, Edge{2, 3})
	assert.Equal(t, []int{0, 2}, members(g.DisjointItems()))
	// Cached closures give the same answer again.
	assert.Equal(t, []int{0, 2}, members(g.DisjointItems()))
}

func TestEdgesAndTranspose(t *testing.T) {
	g := entryGraph(t)

	edges := slices.Collect(g.Edges())
	assert.Equal(t, []Edge{{nodeA, nodeB}, {nodeA, nodeC}, {nodeB, nodeC}}, edges)

	tr := g.Transpose()
	require.NoError(t, tr.Validate())
	assert.True(t, tr.HasEdge(nodeC, nodeA))
	assert.Equal(t, []int{nodeC}, members(tr.TopLevelOrOrphanNodes()))
	assert.True(t, g.Equal(tr.Transpose()))
	assert.False(t, g.Equal(tr))
}

func TestNewWithInbound(t *testing.T) {
	g := entryGraph(t)

	out := make([]*bitset.BitSet, 3)
	in := make([]*bitset.BitSet, 3)
	for i := range 3 {
		out[i] = g.Outbound(i)
		in[i] = g.Inbound(i)
	}

	h, err := NewWithInbound(out, in)
	require.NoError(t, err)
	require.NoError(t, h.Validate())
	assert.True(t, g.Equal(h))

	bad := []*bitset.BitSet{bitset.New(3), bitset.New(3), bitset.New(3)}
	h, err = NewWithInbound(cloneAll(out), bad)
	if checkInvariants {
		assert.ErrorIs(t, err, ErrNotTranspose)
	} else {
		require.NoError(t, err)
		assert.ErrorIs(t, h.Validate(), ErrNotTranspose)
	}

	_, err = NewWithInbound(out, in[:2])
	assert.ErrorIs(t, err, ErrNotTranspose)
}

func TestNew(t *testing.T) {
	out := []*bitset.BitSet{bitset.New(2).Set(1), nil}
	g := New(out)
	require.NoError(t, g.Validate())
	assert.Equal(t, []int{0}, members(g.Inbound(1)))
	assert.Equal(t, []int{1}, members(g.BottomLevelNodes()))

	assert.Panics(t, func() {
		New([]*bitset.BitSet{bitset.New(8).Set(5)})
	})

	b := NewBuilder(2)
	assert.ErrorIs(t, b.AddEdge(0, 2), ErrNodeOutOfRange)
}

func TestPageRank(t *testing.T) {
	t.Run("no dangling nodes", func(t *testing.T) {
		g := build(t, 4, Edge{0, 1}, Edge{1, 2}, Edge{2, 0}, Edge{2, 3}, Edge{3, 0})
		opts := DefaultPageRankOptions()
		opts.MaxIterations = 500
		res := g.PageRank(opts)

		require.Len(t, res.Scores, 4)
		assert.True(t, res.Converged)
		assert.InDelta(t, 1.0, sum(res.Scores), 1e-6)
		// Node 0 collects from 2 and 3.
		assert.Greater(t, res.Scores[0], res.Scores[3])
	})

	t.Run("redistribute dangling mass", func(t *testing.T) {
		res := entryGraph(t).PageRank(DefaultPageRankOptions())
		assert.InDelta(t, 1.0, sum(res.Scores), 1e-6)
		assert.Greater(t, res.Scores[nodeC], res.Scores[nodeB])
		assert.Greater(t, res.Scores[nodeB], res.Scores[nodeA])
	})

	t.Run("monotonic", func(t *testing.T) {
		opts := DefaultPageRankOptions()
		opts.Monotonic = true
		res := entryGraph(t).PageRank(opts)
		for _, s := range res.Scores {
			assert.GreaterOrEqual(t, s, 1.0/3)
		}
	})

	t.Run("iteration budget", func(t *testing.T) {
		opts := DefaultPageRankOptions()
		opts.MaxIterations = 1
		res := entryGraph(t).PageRank(opts)
		assert.Equal(t, 1, res.Iterations)
		assert.False(t, res.Converged)
	})

	t.Run("empty graph", func(t *testing.T) {
		res := NewBuilder(0).Build().PageRank(PageRankOptions{})
		assert.True(t, res.Converged)
		assert.Empty(t, res.Scores)
	})

	t.Run("validate", func(t *testing.T) {
		opts := PageRankOptions{DampingFactor: 3}
		opts.Validate()
		assert.Equal(t, DefaultDampingFactor, opts.DampingFactor)
		assert.Equal(t, DefaultMaxIterations, opts.MaxIterations)
		assert.Equal(t, DefaultMaxError, opts.MaxError)
	})
}

func TestEigenvectorCentrality(t *testing.T) {
	cycle := build(t, 3, Edge{0, 1}, Edge{1, 2}, Edge{2, 0})

	t.Run("l1 cycle", func(t *testing.T) {
		res := cycle.EigenvectorCentrality(DefaultCentralityOptions())
		assert.True(t, res.Converged)
		assert.Equal(t, 1, res.Iterations)
		for _, s := range res.Scores {
			assert.InDelta(t, 1.0/3, s, 1e-9)
		}
	})

	t.Run("l2 cycle", func(t *testing.T) {
		opts := DefaultCentralityOptions()
		opts.L2Norm = true
		res := cycle.EigenvectorCentrality(opts)
		assert.True(t, res.Converged)
		assert.Equal(t, 2, res.Iterations)
		for _, s := range res.Scores {
			assert.InDelta(t, 0.57735, s, 1e-4)
		}
	})

	t.Run("acyclic collapse", func(t *testing.T) {
		res := entryGraph(t).EigenvectorCentrality(DefaultCentralityOptions())
		assert.False(t, res.Converged)
		assert.Equal(t, 3, res.Iterations)
		assert.InDeltaSlice(t, []float64{0, 0, 1}, res.Scores, 1e-9)
	})

	t.Run("self edges", func(t *testing.T) {
		g := build(t, 2, Edge{0, 0}, Edge{0, 1}, Edge{1, 0})

		opts := DefaultCentralityOptions()
		with := g.EigenvectorCentrality(CentralityOptions{UseInbound: true, MaxIterations: opts.MaxIterations})
		without := g.EigenvectorCentrality(opts)
		assert.Greater(t, with.Scores[0], without.Scores[0])
	})
}

func TestEncodeDecode(t *testing.T) {
	g := build(t, 4, Edge{0, 1}, Edge{1, 2}, Edge{2, 0})

	var buf bytes.Buffer
	enc := persistence.NewEncoder(&buf)
	g.Encode(enc)
	require.NoError(t, enc.Err())

	got, err := Decode(persistence.NewDecoder(&buf))
	require.NoError(t, err)
	assert.True(t, g.Equal(got))
	require.NoError(t, got.Validate())
	assert.Equal(t, []int{3}, members(got.TopLevelOrOrphanNodes()))

	t.Run("unsupported version", func(t *testing.T) {
		var buf bytes.Buffer
		persistence.NewEncoder(&buf).PutInt32(encodingVersion + 1)
		_, err := Decode(persistence.NewDecoder(&buf))
		assert.ErrorIs(t, err, persistence.ErrUnsupportedVersion)
	})

	t.Run("edge out of range", func(t *testing.T) {
		b, err := bitset.New(16).Set(9).MarshalBinary()
		require.NoError(t, err)

		var buf bytes.Buffer
		enc := persistence.NewEncoder(&buf)
		enc.PutInt32(encodingVersion)
		enc.PutInt(2)
		enc.PutBytes(b)
		enc.PutBytes(nil)
		require.NoError(t, enc.Err())

		_, err = Decode(persistence.NewDecoder(&buf))
		assert.ErrorIs(t, err, persistence.ErrCorrupt)
	})
}

func TestDecodeOversizedCounts(t *testing.T) {
	const huge = 1<<28 - 1

	tests := []struct {
		name  string
		write func(enc *persistence.Encoder)
	}{
		{"nodes", func(enc *persistence.Encoder) {
			enc.PutInt32(encodingVersion)
			enc.PutInt32(huge)
		}},
		{"adjacency length", func(enc *persistence.Encoder) {
			enc.PutInt32(encodingVersion)
			enc.PutInt(1)
			enc.PutInt32(huge)
		}},
		{"adjacency bit length", func(enc *persistence.Encoder) {
			enc.PutInt32(encodingVersion)
			enc.PutInt(1)
			enc.PutBytes([]byte{0, 0, 1, 0, 0, 0, 0, 0})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := persistence.NewEncoder(&buf)
			tt.write(enc)
			require.NoError(t, enc.Err())

			_, err := Decode(persistence.NewDecoder(bytes.NewReader(buf.Bytes())))
			assert.ErrorIs(t, err, persistence.ErrCorrupt)
		})
	}
}

func sum(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}
