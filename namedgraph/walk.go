package namedgraph

import "github.com/bits-and-blooms/bitset"

// Visitor is called when a walk enters a node.
type Visitor interface {
	Enter(name string, depth int)
}

// Exiter is implemented by visitors that also want to know when a walk
// leaves a node.
type Exiter interface {
	Exit(name string, depth int)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(name string, depth int)

// Enter calls f(name, depth).
func (f VisitorFunc) Enter(name string, depth int) { f(name, depth) }

type walker struct {
	v       *View
	visitor Visitor
	exiter  Exiter
	seen    *bitset.BitSet
}

func (v *View) newWalker(visitor Visitor) *walker {
	w := &walker{v: v, visitor: visitor, seen: bitset.New(uint(v.Len()))}
	w.exiter, _ = visitor.(Exiter)
	return w
}

func (w *walker) exit(i, depth int) {
	if w.exiter != nil {
		w.exiter.Exit(w.v.names[i], depth)
	}
}

func (w *walker) depthFirst(i, depth int) {
	w.seen.Set(uint(i))
	w.visitor.Enter(w.v.names[i], depth)
	out := w.v.g.Outbound(i)
	for j, ok := out.NextSet(0); ok; j, ok = out.NextSet(j + 1) {
		if !w.seen.Test(j) {
			w.depthFirst(int(j), depth+1)
		}
	}
	w.exit(i, depth)
}

// Walk visits every node reachable from start depth-first, entering each
// node once and exiting it after all of its unvisited successors. It
// returns false if start is unknown.
func (v *View) Walk(start string, visitor Visitor) bool {
	i := v.names.IndexOf(start)
	if i < 0 {
		return false
	}
	v.newWalker(visitor).depthFirst(i, 0)
	return true
}

// WalkBreadthFirst visits every node reachable from start in order of
// increasing depth. A node is exited right after its successors have been
// queued. It returns false if start is unknown.
func (v *View) WalkBreadthFirst(start string, visitor Visitor) bool {
	i := v.names.IndexOf(start)
	if i < 0 {
		return false
	}

	w := v.newWalker(visitor)
	type item struct{ node, depth int }
	w.seen.Set(uint(i))
	queue := []item{{node: i}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		w.visitor.Enter(v.names[cur.node], cur.depth)
		out := v.g.Outbound(cur.node)
		for j, ok := out.NextSet(0); ok; j, ok = out.NextSet(j + 1) {
			if !w.seen.Test(j) {
				w.seen.Set(j)
				queue = append(queue, item{node: int(j), depth: cur.depth + 1})
			}
		}
		w.exit(cur.node, cur.depth)
	}
	return true
}

// WalkAll walks depth-first from every top-level node in name order, then
// from any node still unvisited (nodes only reachable through cycles).
// Every node is entered exactly once.
func (v *View) WalkAll(visitor Visitor) {
	w := v.newWalker(visitor)
	top := v.g.TopLevelOrOrphanNodes()
	for i, ok := top.NextSet(0); ok; i, ok = top.NextSet(i + 1) {
		if !w.seen.Test(i) {
			w.depthFirst(int(i), 0)
		}
	}
	for i := range v.Len() {
		if !w.seen.Test(uint(i)) {
			w.depthFirst(i, 0)
		}
	}
}
