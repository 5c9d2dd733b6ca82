package symgraph_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/symgraph"
	"github.com/hupe1980/symgraph/blobstore"
	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/persistence"
	"github.com/hupe1980/symgraph/regions"
	"github.com/hupe1980/symgraph/resource"
)

func TestSnapshot_EncodeDecode(t *testing.T) {
	tbl := grammar(t)

	for _, c := range []persistence.Compression{
		persistence.CompressionNone,
		persistence.CompressionLZ4,
		persistence.CompressionZSTD,
	} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, symgraph.Encode(&buf, tbl, symgraph.WithCompression(c)))

			got, err := symgraph.Decode(&buf)
			require.NoError(t, err)
			assert.True(t, tbl.Equal(got))

			// Decoded tables answer the same queries.
			r, ok := got.DeclarationAt(11)
			require.True(t, ok)
			assert.Equal(t, "term", r.Name)
			assert.Equal(t, tbl.Unreferenced().Slice(), got.Unreferenced().Slice())
			assert.Equal(t, tbl.Unresolved(), got.Unresolved())
		})
	}
}

func TestSnapshot_Corruption(t *testing.T) {
	tbl := grammar(t)

	var buf bytes.Buffer
	require.NoError(t, symgraph.Encode(&buf, tbl, symgraph.WithCompression(persistence.CompressionNone)))
	data := buf.Bytes()

	t.Run("flipped payload byte", func(t *testing.T) {
		corrupt := bytes.Clone(data)
		corrupt[len(corrupt)-1] ^= 0xFF

		_, err := symgraph.Decode(bytes.NewReader(corrupt))
		require.ErrorIs(t, err, symgraph.ErrCorrupt)
		assert.True(t, persistence.IsChecksumMismatch(err))
	})

	t.Run("bad magic", func(t *testing.T) {
		corrupt := bytes.Clone(data)
		corrupt[0] ^= 0xFF

		_, err := symgraph.Decode(bytes.NewReader(corrupt))
		assert.ErrorIs(t, err, symgraph.ErrCorrupt)
	})

	t.Run("unknown envelope version", func(t *testing.T) {
		corrupt := bytes.Clone(data)
		corrupt[4] = 0x7F

		_, err := symgraph.Decode(bytes.NewReader(corrupt))
		assert.ErrorIs(t, err, symgraph.ErrUnsupportedVersion)
	})

	t.Run("unknown payload version", func(t *testing.T) {
		var payload bytes.Buffer
		enc := persistence.NewEncoder(&payload)
		enc.PutInt32(99)
		require.NoError(t, enc.Err())

		var env bytes.Buffer
		_, err := persistence.WriteEnvelope(&env, payload.Bytes(), persistence.CompressionNone)
		require.NoError(t, err)

		_, err = symgraph.Decode(&env)
		assert.ErrorIs(t, err, symgraph.ErrUnsupportedVersion)
	})
}

// craftedSnapshot wraps a payload of empty name and graph sections followed
// by tail in a valid envelope. sections limits how many of the three
// sections are written before tail.
func craftedSnapshot(t *testing.T, sections int, tail func(enc *persistence.Encoder)) *bytes.Buffer {
	t.Helper()

	var payload bytes.Buffer
	enc := persistence.NewEncoder(&payload)
	strs := persistence.NewStringTable()
	names := regions.NewBuilder().Build(regions.NameLengthEnds)

	enc.PutInt32(1)
	if sections > 0 {
		names.Encode(enc, strs)
	}
	if sections > 1 {
		names.SecondaryView().Encode(enc, strs)
	}
	if sections > 2 {
		bsgraph.New(nil).Encode(enc)
	}
	tail(enc)
	require.NoError(t, enc.Err())

	var env bytes.Buffer
	_, err := persistence.WriteEnvelope(&env, payload.Bytes(), persistence.CompressionNone)
	require.NoError(t, err)
	return &env
}

func TestSnapshot_CorruptCounts(t *testing.T) {
	const huge = 1<<28 - 1

	tests := []struct {
		name     string
		sections int
		tail     func(enc *persistence.Encoder)
	}{
		{"names", 0, func(enc *persistence.Encoder) {
			enc.PutInt32(1) // section version
			enc.PutInt32(huge)
		}},
		{"declarations", 1, func(enc *persistence.Encoder) {
			enc.PutInt32(1)
			enc.PutInt32(huge)
		}},
		{"graph", 2, func(enc *persistence.Encoder) {
			enc.PutInt32(1)
			enc.PutInt32(huge)
		}},
		{"graph adjacency", 2, func(enc *persistence.Encoder) {
			enc.PutInt32(1)
			enc.PutInt32(1)
			enc.PutInt32(huge)
		}},
		{"unresolved", 3, func(enc *persistence.Encoder) {
			enc.PutInt32(huge)
		}},
		{"unresolved name", 3, func(enc *persistence.Encoder) {
			enc.PutInt32(1)
			enc.PutInt32(huge)
		}},
		{"unresolved empty span", 3, func(enc *persistence.Encoder) {
			enc.PutInt32(1)
			enc.PutString("factor")
			enc.PutInt(60)
			enc.PutInt(60)
		}},
		{"unresolved negative start", 3, func(enc *persistence.Encoder) {
			enc.PutInt32(1)
			enc.PutString("factor")
			enc.PutInt(-4)
			enc.PutInt(6)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := symgraph.Decode(craftedSnapshot(t, tt.sections, tt.tail))
			assert.ErrorIs(t, err, symgraph.ErrCorrupt)
		})
	}

	t.Run("empty table", func(t *testing.T) {
		got, err := symgraph.Decode(craftedSnapshot(t, 3, func(enc *persistence.Encoder) {
			enc.PutInt32(0)
		}))
		require.NoError(t, err)
		assert.Zero(t, got.Len())
	})
}

func TestSnapshot_SaveLoad(t *testing.T) {
	ctx := context.Background()
	tbl := grammar(t)

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			metrics := &symgraph.BasicMetricsCollector{}
			opts := []symgraph.Option{symgraph.WithMetricsCollector(metrics)}

			require.NoError(t, symgraph.Save(ctx, store, "grammar.sgt", tbl, opts...))
			got, err := symgraph.Load(ctx, store, "grammar.sgt", opts...)
			require.NoError(t, err)
			assert.True(t, tbl.Equal(got))

			stats := metrics.GetStats()
			assert.Equal(t, int64(1), stats.SaveCount)
			assert.Equal(t, int64(1), stats.LoadCount)
			assert.Positive(t, stats.SaveBytes)
			assert.Equal(t, stats.SaveBytes, stats.LoadBytes)

			_, err = symgraph.Load(ctx, store, "missing.sgt", opts...)
			assert.ErrorIs(t, err, symgraph.ErrNotFound)
			assert.Equal(t, int64(1), metrics.GetStats().LoadErrors)
		})
	}
}

func TestSnapshot_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	tbl := grammar(t)

	require.NoError(t, symgraph.Save(ctx, store, "grammar.sgt", tbl, symgraph.WithNoOverwrite()))
	err := symgraph.Save(ctx, store, "grammar.sgt", tbl, symgraph.WithNoOverwrite())
	assert.ErrorIs(t, err, blobstore.ErrExists)

	require.NoError(t, symgraph.Save(ctx, store, "grammar.sgt", tbl))
}

func TestSnapshot_SaveAll(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MaxWorkers: 3})

	tables := make(map[string]*symgraph.Table)
	for i := range 8 {
		tables[fmt.Sprintf("grammar-%02d.sgt", i)] = grammar(t)
	}

	require.NoError(t, symgraph.SaveAll(ctx, store, tables, symgraph.WithResourceController(rc)))

	names, err := store.List(ctx, "grammar-")
	require.NoError(t, err)
	assert.Len(t, names, len(tables))

	for name, want := range tables {
		got, err := symgraph.Load(ctx, store, name)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), name)
	}
	assert.Zero(t, rc.MemoryUsage())
}

func TestSnapshot_SaveAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := symgraph.SaveAll(ctx, blobstore.NewMemoryStore(), map[string]*symgraph.Table{
		"a.sgt": grammar(t),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8})

	err := symgraph.Save(ctx, blobstore.NewMemoryStore(), "grammar.sgt", grammar(t), symgraph.WithResourceController(rc))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, _, err := symgraph.LoadHead(ctx, store)
	require.ErrorIs(t, err, symgraph.ErrNotFound)

	first := grammar(t)
	require.NoError(t, symgraph.Publish(ctx, store, "grammar-00001.sgt", first))

	b := symgraph.NewBuilder()
	require.NoError(t, b.Declare("start", regions.Production, 0, 10))
	second, err := b.Freeze()
	require.NoError(t, err)
	require.NoError(t, symgraph.Publish(ctx, store, "grammar-00002.sgt", second))

	head, err := symgraph.Head(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "grammar-00002.sgt", head)

	got, name, err := symgraph.LoadHead(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "grammar-00002.sgt", name)
	assert.True(t, second.Equal(got))

	// Earlier snapshots stay readable.
	old, err := symgraph.Load(ctx, store, "grammar-00001.sgt")
	require.NoError(t, err)
	assert.True(t, first.Equal(old))

	err = symgraph.Publish(ctx, store, blobstore.HeadName, first)
	assert.ErrorIs(t, err, symgraph.ErrInvalidName)
}

func TestSnapshot_ReservedNames(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	tbl := grammar(t)
	require.NoError(t, symgraph.Publish(ctx, store, "grammar-00001.sgt", tbl))

	for _, name := range []string{blobstore.HeadName, "", "  "} {
		t.Run(fmt.Sprintf("%q", name), func(t *testing.T) {
			var ne *symgraph.NameError
			err := symgraph.Save(ctx, store, name, tbl)
			require.ErrorAs(t, err, &ne)
			assert.ErrorIs(t, err, symgraph.ErrInvalidName)

			err = symgraph.SaveAll(ctx, store, map[string]*symgraph.Table{"ok.sgt": tbl, name: tbl})
			assert.ErrorIs(t, err, symgraph.ErrInvalidName)

			err = symgraph.Publish(ctx, store, name, tbl)
			assert.ErrorIs(t, err, symgraph.ErrInvalidName)
		})
	}

	// HEAD still points at the published snapshot.
	_, name, err := symgraph.LoadHead(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "grammar-00001.sgt", name)
}
