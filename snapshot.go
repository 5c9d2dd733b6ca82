package symgraph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/symgraph/blobstore"
	"github.com/hupe1980/symgraph/bsgraph"
	"github.com/hupe1980/symgraph/persistence"
	"github.com/hupe1980/symgraph/regions"
	"github.com/hupe1980/symgraph/resource"
)

// snapshotVersion tags the payload layout inside the envelope.
const snapshotVersion int32 = 1

// minUnresolvedSize is the smallest encoding of an unresolved reference:
// name length, start and end.
const minUnresolvedSize = 4 + 4 + 4

// Encode writes t to w as a compressed, checksummed snapshot.
//
// Payload layout: version, name index, declaration index, graph, then the
// unresolved references. Both indexes share one string table.
func Encode(w io.Writer, t *Table, optFns ...Option) error {
	o := applyOptions(optFns)
	return encode(w, t, o.compression)
}

func encode(w io.Writer, t *Table, c persistence.Compression) error {
	var buf bytes.Buffer
	enc := persistence.NewEncoder(&buf)
	strs := persistence.NewStringTable()

	enc.PutInt32(snapshotVersion)
	t.names.Encode(enc, strs)
	t.decls.Encode(enc, strs)
	t.graph.Graph().Encode(enc)

	enc.PutInt(len(t.unresolved))
	for _, r := range t.unresolved {
		enc.PutString(r.Name)
		enc.PutInt(r.Start)
		enc.PutInt(r.End)
	}
	if err := enc.Err(); err != nil {
		return err
	}

	_, err := persistence.WriteEnvelope(w, buf.Bytes(), c)
	return err
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Table, error) {
	t, err := decode(r)
	return t, translateError(err)
}

func decode(r io.Reader) (*Table, error) {
	payload, _, err := persistence.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	dec := persistence.NewDecoder(bytes.NewReader(payload))
	strs := persistence.NewStringTable()

	dec.Version("snapshot", snapshotVersion)
	if err := dec.Err(); err != nil {
		return nil, err
	}
	names, err := regions.Decode(dec, strs)
	if err != nil {
		return nil, err
	}
	decls, err := regions.DecodeView(dec, strs, names)
	if err != nil {
		return nil, err
	}
	g, err := bsgraph.Decode(dec)
	if err != nil {
		return nil, err
	}

	n := dec.Elements(minUnresolvedSize)
	var unresolved []Reference
	if n > 0 {
		unresolved = make([]Reference, 0, dec.Capacity(n))
	}
	for range n {
		ref := Reference{Name: dec.String(), Start: dec.Int(), End: dec.Int()}
		if dec.Err() != nil {
			break
		}
		if ref.Name == "" || ref.Start < 0 || ref.End <= ref.Start {
			dec.Fail(fmt.Errorf("%w: unresolved reference %q [%d,%d)", persistence.ErrCorrupt, ref.Name, ref.Start, ref.End))
			break
		}
		unresolved = append(unresolved, ref)
	}
	if err := dec.Err(); err != nil {
		return nil, err
	}

	if g.Len() != names.Len() {
		return nil, fmt.Errorf("%w: graph of %d nodes for %d names", persistence.ErrCorrupt, g.Len(), names.Len())
	}
	return newTable(names, decls, g, unresolved)
}

// Save encodes t and stores it in store under name. Blank names and
// blobstore.HeadName fail with ErrInvalidName.
//
// With WithNoOverwrite an existing blob is left untouched and the returned
// error matches blobstore.ErrExists.
func Save(ctx context.Context, store blobstore.BlobStore, name string, t *Table, optFns ...Option) error {
	o := applyOptions(optFns)

	start := time.Now()
	n, err := save(ctx, store, name, t, o)
	o.metricsCollector.RecordSave(n, time.Since(start), err)
	o.logger.LogSnapshot(ctx, name, n, err)
	return translateError(err)
}

// checkSnapshotName rejects blank names and the HEAD pointer.
func checkSnapshotName(name string) error {
	if strings.TrimSpace(name) == "" || name == blobstore.HeadName {
		return &NameError{Name: name, Kind: ErrInvalidName}
	}
	return nil
}

func save(ctx context.Context, store blobstore.BlobStore, name string, t *Table, o options) (int64, error) {
	if err := checkSnapshotName(name); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, t, o.compression); err != nil {
		return 0, err
	}
	n := int64(buf.Len())

	rc := o.resources
	if err := rc.AcquireMemory(n); err != nil {
		return 0, err
	}
	defer rc.ReleaseMemory(n)

	if err := rc.AcquireIO(ctx, buf.Len()); err != nil {
		return 0, err
	}

	var err error
	if o.noOverwrite {
		err = blobstore.PutIfNotExists(ctx, store, name, buf.Bytes())
	} else {
		err = store.Put(ctx, name, buf.Bytes())
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Load reads the snapshot stored under name.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Table, error) {
	o := applyOptions(optFns)

	start := time.Now()
	t, n, err := load(ctx, store, name, o.resources)
	o.metricsCollector.RecordLoad(n, time.Since(start), err)
	o.logger.LogLoad(ctx, name, n, err)
	return t, translateError(err)
}

func load(ctx context.Context, store blobstore.BlobStore, name string, rc *resource.Controller) (*Table, int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer blob.Close()

	size := blob.Size()
	if err := rc.AcquireMemory(size); err != nil {
		return nil, 0, err
	}
	defer rc.ReleaseMemory(size)

	rd, err := blob.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, 0, err
	}
	defer rd.Close()

	t, err := decode(resource.NewRateLimitedReader(ctx, rd, rc))
	if err != nil {
		return nil, 0, fmt.Errorf("snapshot %q: %w", name, err)
	}
	return t, size, nil
}

// SaveAll saves every table under its map key. At most
// Controller.MaxWorkers saves run at once; without a resource controller
// they run one at a time. The first error cancels the remaining saves.
func SaveAll(ctx context.Context, store blobstore.BlobStore, tables map[string]*Table, optFns ...Option) error {
	o := applyOptions(optFns)
	rc := o.resources

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	slices.Sort(names)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.MaxWorkers())

	for _, name := range names {
		t := tables[name]
		g.Go(func() error {
			if err := rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			start := time.Now()
			n, err := save(gctx, store, name, t, o)
			o.metricsCollector.RecordSave(n, time.Since(start), err)
			o.logger.LogSnapshot(gctx, name, n, err)
			if err != nil {
				return fmt.Errorf("save %q: %w", name, err)
			}
			return nil
		})
	}
	return translateError(g.Wait())
}

// Publish saves t under name and then points blobstore.HeadName at it.
// Readers that go through LoadHead never observe a partially written
// snapshot. With a conditional HEAD store (see blobstore/s3.DDBCommitStore)
// concurrent publishers are serialized.
func Publish(ctx context.Context, store blobstore.BlobStore, name string, t *Table, optFns ...Option) error {
	if err := Save(ctx, store, name, t, optFns...); err != nil {
		return err
	}

	o := applyOptions(optFns)
	err := store.Put(ctx, blobstore.HeadName, []byte(name))
	o.logger.LogPublish(ctx, name, err)
	return translateError(err)
}

// Head returns the name of the latest published snapshot.
func Head(ctx context.Context, store blobstore.BlobStore) (string, error) {
	data, err := blobstore.ReadBlob(ctx, store, blobstore.HeadName)
	if err != nil {
		return "", translateError(err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return "", fmt.Errorf("%w: empty %s", ErrCorrupt, blobstore.HeadName)
	}
	return name, nil
}

// LoadHead loads the latest published snapshot and returns it with its
// name.
func LoadHead(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Table, string, error) {
	name, err := Head(ctx, store)
	if err != nil {
		return nil, "", err
	}
	t, err := Load(ctx, store, name, optFns...)
	if err != nil {
		return nil, "", err
	}
	return t, name, nil
}
