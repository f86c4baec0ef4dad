// Package store groups the asset.Store implementations.
//
// # Backends
//
//   - memstore keeps documents in memory. It backs tests and embedders that
//     manage persistence themselves.
//   - fsstore keeps documents as zstd-compressed files below a root
//     directory and caches decoded documents.
//   - redisstore keeps documents in Redis hashes so several hosts can share
//     one asset library.
//
// Every backend also implements Seeder so test fixtures and importers can
// place source assets with host flags such as built-in or unreadable.
// storetest holds the behavior suite every backend passes.
package store

import (
	"context"

	"github.com/veilkit/obfuscator/asset"
)

// Seeder is a store that accepts source assets with explicit metadata.
type Seeder interface {
	asset.Store

	// Put stores a under info.Ref, replacing any previous document. Kind and
	// Name are taken from a. Parent containers are not required.
	Put(ctx context.Context, info asset.Info, a asset.Asset) error
}
