// Package regions implements an interval index over named declarations.
//
// An Index is created once per analyzed source file from the set of declared
// names (see Builder). Each name owns one storage slot whose position in the
// name-sorted table is its stable Index. Offsets start out Unset and are
// assigned with Add while the file is traversed; references to a name are
// recorded in source order with AddReference.
//
// Positional queries (RegionAt, NestingAt, ReferenceAt) are answered from a
// position index that is built on first use and cached until the next
// mutation. Regions commonly nest, for example a labeled alternative inside
// its enclosing rule, so lookups return the innermost region together with
// its nesting depth.
//
// Example:
//
//	ix := regions.NewBuilder().
//		Declare("expr", regions.Production).
//		Declare("term", regions.Production).
//		Build(regions.ExplicitEnds)
//
//	_ = ix.Add("expr", regions.Production, 0, 20)
//	_ = ix.Add("term", regions.Production, 5, 10)
//
//	r, depth, _ := ix.NestingAt(7) // r.Name == "term", depth == 1
package regions
