package asset

import (
	"context"
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrNotFound is returned when a ref or container does not exist.
	ErrNotFound = errors.New("asset: not found")

	// ErrExists is returned when the destination of a write already exists.
	ErrExists = errors.New("asset: already exists")

	// ErrNoContainer is returned when the parent container of a path is missing.
	ErrNoContainer = errors.New("asset: container does not exist")

	// ErrNotDuplicable is returned by Duplicate for built-in or path-less assets.
	ErrNotDuplicable = errors.New("asset: not duplicable")

	// ErrKindMismatch is returned when a document has a different kind than expected.
	ErrKindMismatch = errors.New("asset: kind mismatch")

	// ErrInvalidPath is returned for paths a store cannot hold.
	ErrInvalidPath = errors.New("asset: invalid path")

	// ErrUnknownKind is returned when decoding a document of an unknown kind.
	ErrUnknownKind = errors.New("asset: unknown kind")
)

// Store is the host's asset storage as seen by the obfuscator.
//
// Paths are slash-separated. Assets created by Create or Duplicate get the
// destination path as Ref and the path's base name (without extension) as
// document name. Implementations must be safe for concurrent use.
type Store interface {
	// Stat describes ref without loading it.
	Stat(ctx context.Context, ref Ref) (Info, error)

	// Load decodes the document stored at ref. Every call returns a fresh
	// copy; changes become visible to other loads only after Save.
	Load(ctx context.Context, ref Ref) (Asset, error)

	// Save replaces the document stored at ref.
	Save(ctx context.Context, ref Ref, a Asset) error

	// Create stores a new document at path.
	Create(ctx context.Context, path string, a Asset) (Ref, error)

	// Duplicate copies src to path and returns the new ref.
	Duplicate(ctx context.Context, src Ref, path string) (Ref, error)

	// CreateContainer creates a folder. Its parent must exist.
	CreateContainer(ctx context.Context, path string) error

	// ContainerExists reports whether a folder exists.
	ContainerExists(ctx context.Context, path string) (bool, error)

	// List returns the refs stored anywhere below container, sorted.
	List(ctx context.Context, container string) ([]Ref, error)

	// Delete removes one asset.
	Delete(ctx context.Context, ref Ref) error

	// DeleteContainer removes a folder and everything below it.
	DeleteContainer(ctx context.Context, path string) error

	// Persist flushes pending writes.
	Persist(ctx context.Context) error
}

// LoadAs loads ref and checks that it holds a document of type T.
func LoadAs[T Asset](ctx context.Context, s Store, ref Ref) (T, error) {
	var zero T
	a, err := s.Load(ctx, ref)
	if err != nil {
		return zero, err
	}
	typed, ok := a.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %s", ErrKindMismatch, ref, a.AssetKind())
	}
	return typed, nil
}
