// Package bsgraph implements a directed graph over dense node indices whose
// adjacency is stored as one bit vector per node.
//
// Edge (i, j) means node i references node j. Outbound vectors are the
// source of truth; the inbound vectors are their exact transpose and are
// derived on construction unless supplied. Build with the
// symgraphdebug tag to verify supplied transposes in NewWithInbound.
//
// Besides adjacency queries the package provides transitive closures,
// signed shortest distances, disjoint items, eigenvector centrality and
// PageRank. A Graph is immutable after construction and safe for
// concurrent readers.
package bsgraph
