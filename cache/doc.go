// Package cache provides an LRU cache for immutable byte blocks.
//
// LRUBlockCache bounds the cached bytes by its own capacity and, when a
// resource.Controller is supplied, by the controller's memory limit. It
// backs blobstore.CachingStore, which caches fixed-size blocks of remote
// snapshot blobs.
package cache
