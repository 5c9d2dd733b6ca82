// Package resource bounds the memory, concurrency and IO used while
// persisting and loading symbol table snapshots.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   64 << 20,
//	    MaxWorkers:         4,
//	    IOLimitBytesPerSec: 32 << 20,
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
//	w := resource.NewRateLimitedWriter(ctx, file, rc)
//
// AcquireMemory is non-blocking and fails with ErrMemoryLimitExceeded;
// AcquireWorker and AcquireIO block until capacity is available or the
// context is done.
//
// All methods treat a nil *Controller as unlimited, so optional limiting
// needs no nil checks at call sites.
package resource
