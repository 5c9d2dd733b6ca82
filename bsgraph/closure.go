package bsgraph

import (
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"
)

// closure returns every node reachable from start through at least one
// edge of adj. start is part of the result only if it lies on a cycle.
// Each node is expanded at most once.
func closure(adj []*bitset.BitSet, start int) *bitset.BitSet {
	seen := bitset.New(uint(len(adj)))
	stack := []uint{uint(start)}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for j, ok := adj[v].NextSet(0); ok; j, ok = adj[v].NextSet(j + 1) {
			if !seen.Test(j) {
				seen.Set(j)
				stack = append(stack, j)
			}
		}
	}
	return seen
}

// ClosureOf returns the nodes reachable from i by a path of length >= 1.
func (g *Graph) ClosureOf(i int) *bitset.BitSet {
	if !g.valid(i) {
		return bitset.New(0)
	}
	return closure(g.out, i)
}

// ReverseClosureOf returns the nodes from which i is reachable by a path of
// length >= 1.
func (g *Graph) ReverseClosureOf(i int) *bitset.BitSet {
	if !g.valid(i) {
		return bitset.New(0)
	}
	return closure(g.in, i)
}

// allClosures computes the forward closure of every node once, spread over
// GOMAXPROCS workers.
func (g *Graph) allClosures() []*bitset.BitSet {
	g.closuresOnce.Do(func() {
		closures := make([]*bitset.BitSet, len(g.out))

		var eg errgroup.Group
		eg.SetLimit(runtime.GOMAXPROCS(0))
		for i := range g.out {
			eg.Go(func() error {
				closures[i] = closure(g.out, i)
				return nil
			})
		}
		_ = eg.Wait()

		g.closures = closures
	})
	return g.closures
}

// CyclicNodes returns the nodes that lie on at least one cycle, including
// nodes with a self edge.
func (g *Graph) CyclicNodes() *bitset.BitSet {
	result := bitset.New(uint(g.Len()))
	for i, c := range g.allClosures() {
		if c.Test(uint(i)) {
			result.Set(uint(i))
		}
	}
	return result
}

// DisjointItems returns the nodes whose closure, excluding the node itself,
// is not contained in the closure of any other single node. These are the
// nodes that reach some part of the graph no other node reaches.
func (g *Graph) DisjointItems() *bitset.BitSet {
	closures := g.allClosures()
	result := bitset.New(uint(g.Len()))

	for i, c := range closures {
		own := c.Clone()
		own.Clear(uint(i))

		disjoint := true
		for j, other := range closures {
			if i != j && other.IsSuperSet(own) {
				disjoint = false
				break
			}
		}
		if disjoint {
			result.Set(uint(i))
		}
	}
	return result
}
