package bsgraph

import "github.com/bits-and-blooms/bitset"

// bfs returns the number of hops from a to b along adj, or false if b is
// unreachable. A node is at distance 0 from itself.
func bfs(adj []*bitset.BitSet, a, b int) (int, bool) {
	if a == b {
		return 0, true
	}
	seen := bitset.New(uint(len(adj)))
	seen.Set(uint(a))
	frontier := []uint{uint(a)}

	for hops := 1; len(frontier) > 0; hops++ {
		var next []uint
		for _, v := range frontier {
			for j, ok := adj[v].NextSet(0); ok; j, ok = adj[v].NextSet(j + 1) {
				if int(j) == b {
					return hops, true
				}
				if !seen.Test(j) {
					seen.Set(j)
					next = append(next, j)
				}
			}
		}
		frontier = next
	}
	return 0, false
}

// ForwardDistance returns the length of the shortest path a → … → b.
func (g *Graph) ForwardDistance(a, b int) (int, bool) {
	if !g.valid(a) || !g.valid(b) {
		return 0, false
	}
	return bfs(g.out, a, b)
}

// BackwardDistance returns the length of the shortest path b → … → a,
// found by following inbound edges from a.
func (g *Graph) BackwardDistance(a, b int) (int, bool) {
	if !g.valid(a) || !g.valid(b) {
		return 0, false
	}
	return bfs(g.in, a, b)
}

// Distance returns the signed shortest hop count between a and b. A
// positive value is the forward distance a → b; a negative value is the
// negated backward distance when b → a is strictly shorter. Forward wins
// ties. The second result is false if neither direction connects them.
func (g *Graph) Distance(a, b int) (int, bool) {
	f, fok := g.ForwardDistance(a, b)
	r, rok := g.BackwardDistance(a, b)
	switch {
	case fok && (!rok || f <= r):
		return f, true
	case rok:
		return -r, true
	default:
		return 0, false
	}
}
