// Package namedgraph exposes a bsgraph.Graph through the names of its nodes.
//
// Node i of the graph is the i-th name of a sorted name universe. Every
// query translates names to indices before delegating and translates the
// resulting node sets back into maskedset.Set values over the same
// universe. Unknown names yield empty sets or false.
package namedgraph
