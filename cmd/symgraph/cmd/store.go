package cmd

import (
	"context"
	"fmt"

	"github.com/hupe1980/symgraph/blobstore"
	miniostore "github.com/hupe1980/symgraph/blobstore/minio"
	s3store "github.com/hupe1980/symgraph/blobstore/s3"
	"github.com/hupe1980/symgraph/cache"
	"github.com/hupe1980/symgraph/resource"
)

// openStore creates the store described by cfg. Remote stores are wrapped
// in a block cache when cfg.Cache.CapacityBytes is positive.
func openStore(ctx context.Context, cfg Config, rc *resource.Controller) (blobstore.BlobStore, error) {
	var (
		store blobstore.BlobStore
		err   error
	)

	switch cfg.Store.Kind {
	case "local":
		return blobstore.NewLocalStore(cfg.Store.Path), nil
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		store, err = openS3(ctx, cfg.Store.S3)
	case "minio":
		store, err = miniostore.New(cfg.Store.MinIO)
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Kind, err)
	}

	if cfg.Cache.CapacityBytes > 0 {
		c := cache.NewLRUBlockCache(cfg.Cache.CapacityBytes, rc)
		store = blobstore.NewCachingStore(store, c, cfg.Cache.BlockSize)
	}
	return store, nil
}

func openS3(ctx context.Context, cfg S3Config) (blobstore.BlobStore, error) {
	opts := []func(*s3store.Options){s3store.WithPrefix(cfg.Prefix)}
	if cfg.Region != "" {
		opts = append(opts, s3store.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, s3store.WithEndpoint(cfg.Endpoint))
	}

	if cfg.Table != "" {
		return s3store.NewCommitStore(ctx, cfg.Bucket, cfg.Table, opts...)
	}
	return s3store.New(ctx, cfg.Bucket, opts...)
}
