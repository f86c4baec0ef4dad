// Package memstore implements asset.Store in memory.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/veilkit/obfuscator/asset"
)

type entry struct {
	info asset.Info
	data []byte
}

// Store is an in-memory asset store. Documents are held encoded so every
// Load returns an independent copy.
type Store struct {
	mu         sync.RWMutex
	assets     map[asset.Ref]*entry
	containers map[string]struct{}
	persists   int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		assets:     make(map[asset.Ref]*entry),
		containers: make(map[string]struct{}),
	}
}

// Put stores a under info.Ref with the flags of info.
func (s *Store) Put(ctx context.Context, info asset.Info, a asset.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if info.Ref.IsZero() {
		return fmt.Errorf("memstore: put with empty ref")
	}
	data, err := asset.Marshal(a)
	if err != nil {
		return err
	}
	info.Kind = a.AssetKind()
	info.Name = a.AssetName()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[info.Ref] = &entry{info: info, data: data}
	return nil
}

// Stat describes ref.
func (s *Store) Stat(ctx context.Context, ref asset.Ref) (asset.Info, error) {
	if err := ctx.Err(); err != nil {
		return asset.Info{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.assets[ref]
	if !ok {
		return asset.Info{}, fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	return e.info, nil
}

// Load decodes the document at ref.
func (s *Store) Load(ctx context.Context, ref asset.Ref) (asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.assets[ref]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	return asset.Unmarshal(e.data)
}

// Save replaces the document at ref.
func (s *Store) Save(ctx context.Context, ref asset.Ref, a asset.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := asset.Marshal(a)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.assets[ref]
	if !ok {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	if e.info.Kind != a.AssetKind() {
		return fmt.Errorf("%w: %s holds %s, got %s", asset.ErrKindMismatch, ref, e.info.Kind, a.AssetKind())
	}
	e.info.Name = a.AssetName()
	e.data = data
	return nil
}

// Create stores a new document at p, named after p.
func (s *Store) Create(ctx context.Context, p string, a asset.Asset) (asset.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := asset.CheckPath(p); err != nil {
		return "", err
	}
	data, err := asset.Marshal(a)
	if err != nil {
		return "", err
	}
	name := asset.NameFromPath(p)
	if data, err = asset.Rename(data, name); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDestination(p); err != nil {
		return "", err
	}
	ref := asset.Ref(p)
	s.assets[ref] = &entry{
		info: asset.Info{Ref: ref, Kind: a.AssetKind(), Name: name, Path: p},
		data: data,
	}
	return ref, nil
}

// Duplicate copies src to p. Built-in and path-less assets cannot be
// duplicated.
func (s *Store) Duplicate(ctx context.Context, src asset.Ref, p string) (asset.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := asset.CheckPath(p); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.assets[src]
	if !ok {
		return "", fmt.Errorf("%w: %s", asset.ErrNotFound, src)
	}
	if e.info.BuiltIn || e.info.Path == "" {
		return "", fmt.Errorf("%w: %s", asset.ErrNotDuplicable, src)
	}
	if err := s.checkDestination(p); err != nil {
		return "", err
	}

	name := asset.NameFromPath(p)
	data, err := asset.Rename(e.data, name)
	if err != nil {
		return "", err
	}
	ref := asset.Ref(p)
	s.assets[ref] = &entry{
		info: asset.Info{
			Ref:        ref,
			Kind:       e.info.Kind,
			Name:       name,
			Path:       p,
			Unreadable: e.info.Unreadable,
		},
		data: data,
	}
	return ref, nil
}

// checkDestination must be called with s.mu held.
func (s *Store) checkDestination(p string) error {
	if !s.containerExists(asset.ParentPath(p)) {
		return fmt.Errorf("%w: %s", asset.ErrNoContainer, asset.ParentPath(p))
	}
	if _, ok := s.assets[asset.Ref(p)]; ok {
		return fmt.Errorf("%w: %s", asset.ErrExists, p)
	}
	return nil
}

// CreateContainer creates the folder p. Creating an existing folder is a
// no-op.
func (s *Store) CreateContainer(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := asset.CheckPath(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.containerExists(asset.ParentPath(p)) {
		return fmt.Errorf("%w: %s", asset.ErrNoContainer, asset.ParentPath(p))
	}
	s.containers[p] = struct{}{}
	return nil
}

// ContainerExists reports whether the folder p exists.
func (s *Store) ContainerExists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.containerExists(p), nil
}

func (s *Store) containerExists(p string) bool {
	if p == "" {
		return true
	}
	_, ok := s.containers[p]
	return ok
}

// List returns the refs stored below container, sorted.
func (s *Store) List(ctx context.Context, container string) ([]asset.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.containerExists(container) {
		return nil, fmt.Errorf("%w: %s", asset.ErrNotFound, container)
	}
	var refs []asset.Ref
	for ref, e := range s.assets {
		if e.info.Path != "" && asset.Within(e.info.Path, container) {
			refs = append(refs, ref)
		}
	}
	slices.Sort(refs)
	return refs, nil
}

// Delete removes ref.
func (s *Store) Delete(ctx context.Context, ref asset.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[ref]; !ok {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	delete(s.assets, ref)
	return nil
}

// DeleteContainer removes the folder p with its subfolders and assets.
func (s *Store) DeleteContainer(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := asset.CheckPath(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.containerExists(p) {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, p)
	}
	maps.DeleteFunc(s.containers, func(c string, _ struct{}) bool {
		return c == p || asset.Within(c, p)
	})
	maps.DeleteFunc(s.assets, func(_ asset.Ref, e *entry) bool {
		return e.info.Path != "" && asset.Within(e.info.Path, p)
	})
	return nil
}

// Persist counts flushes; memory needs none.
func (s *Store) Persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.persists++
	s.mu.Unlock()
	return nil
}

// Persists returns how many times Persist was called.
func (s *Store) Persists() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persists
}

// Len returns the number of stored assets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}
