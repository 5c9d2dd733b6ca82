// Package symgraph indexes the symbols of a parsed source file and the
// references between them.
//
// A Builder collects declarations, nested labeled blocks and references as
// a parser reports them. Freeze turns them into a read-only Table that
// answers positional questions (which declaration encloses an offset, which
// name is under the cursor, where is it declared) and graph questions (who
// uses a rule, which rules are unreachable, how central is a rule).
//
// # Quick Start
//
//	b := symgraph.NewBuilder()
//	_ = b.DeclareAt("expr", regions.Production, 0, 0, 40)
//	_ = b.DeclareAt("term", regions.Production, 41, 41, 60)
//	_ = b.Reference("term", 10, 14)
//	tbl, err := b.Freeze()
//
//	decl, ok := tbl.DeclarationAt(11) // "term" at [41,60)
//	users := tbl.Graph().Inbound("term")
//
// # Snapshots
//
// Tables are persisted as compressed, checksummed snapshots in any
// blobstore.BlobStore:
//
//	store := blobstore.NewLocalStore("./tables")
//	err = symgraph.Save(ctx, store, "grammar.sgt", tbl, symgraph.WithCompression(persistence.CompressionZSTD))
//	tbl, err = symgraph.Load(ctx, store, "grammar.sgt")
//
// Publish additionally moves the HEAD pointer of the store to the saved
// snapshot; with s3.DDBCommitStore that move is a conditional write.
//
// # Key Features
//
//   - Nested region lookup in O(log n) for well-nested input
//   - Reference graph on bit vectors with closures, distances and ranking
//   - Versioned binary snapshots with LZ4/ZSTD compression
//   - Local (mmap), in-memory, S3 and MinIO storage backends
package symgraph
