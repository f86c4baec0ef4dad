// Package fsstore implements asset.Store on a directory tree.
//
// Every document lives in its own file, "<root>/<ref>.zst", holding the
// zstd-compressed CBOR encoding of the document together with its Info.
// Containers are directories. Document writes are buffered in memory until
// Persist; container changes and deletes apply immediately. Decoded file
// contents are kept in an LRU cache.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/veilkit/obfuscator/asset"
)

// Ext is appended to the ref of every document file.
const Ext = ".zst"

// DefaultCacheSize is the number of decoded documents kept in memory.
const DefaultCacheSize = 256

// record is the content of one document file.
type record struct {
	Info asset.Info      `cbor:"info"`
	Doc  cbor.RawMessage `cbor:"doc"`
}

// Option configures a Store.
type Option func(*Store)

// WithCacheSize sets the read cache capacity.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		s.cacheSize = n
	}
}

// Store is a filesystem asset store.
type Store struct {
	root      string
	cacheSize int

	mu         sync.RWMutex
	index      map[asset.Ref]asset.Info
	containers map[string]struct{}
	pending    map[asset.Ref][]byte
	cache      *lru.Cache[asset.Ref, []byte]

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens the store rooted at dir, creating dir if needed, and indexes
// the documents already on disk.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		root:       dir,
		cacheSize:  DefaultCacheSize,
		index:      make(map[asset.Ref]asset.Info),
		containers: make(map[string]struct{}),
		pending:    make(map[asset.Ref][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}

	cache, err := lru.New[asset.Ref, []byte](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("fsstore: create cache: %w", err)
	}
	s.cache = cache

	if s.enc, err = zstd.NewWriter(nil); err != nil {
		return nil, fmt.Errorf("fsstore: create encoder: %w", err)
	}
	if s.dec, err = zstd.NewReader(nil); err != nil {
		s.enc.Close()
		return nil, fmt.Errorf("fsstore: create decoder: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.Close()
		return nil, fmt.Errorf("fsstore: create root %s: %w", dir, err)
	}
	if err := s.scan(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the codec resources. Unpersisted writes are dropped.
func (s *Store) Close() {
	if s.enc != nil {
		s.enc.Close()
	}
	if s.dec != nil {
		s.dec.Close()
	}
}

// Root returns the directory the store lives in.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) scan() error {
	return filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." {
				s.containers[rel] = struct{}{}
			}
			return nil
		}
		if !strings.HasSuffix(rel, Ext) {
			return nil
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("fsstore: read %s: %w", rel, err)
		}
		rec, plain, err := s.decode(raw)
		if err != nil {
			return fmt.Errorf("fsstore: decode %s: %w", rel, err)
		}
		s.index[rec.Info.Ref] = rec.Info
		s.cache.Add(rec.Info.Ref, plain)
		return nil
	})
}

func (s *Store) file(ref asset.Ref) string {
	return filepath.Join(s.root, filepath.FromSlash(string(ref))+Ext)
}

func (s *Store) dir(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

func (s *Store) encode(info asset.Info, doc []byte) ([]byte, error) {
	return cbor.Marshal(record{Info: info, Doc: doc})
}

func (s *Store) decode(raw []byte) (record, []byte, error) {
	plain, err := s.dec.DecodeAll(raw, nil)
	if err != nil {
		return record{}, nil, err
	}
	var rec record
	if err := cbor.Unmarshal(plain, &rec); err != nil {
		return record{}, nil, err
	}
	return rec, plain, nil
}

// read returns the record of ref. Must be called with s.mu held; the
// cache has its own lock.
func (s *Store) read(ref asset.Ref) (record, error) {
	plain, ok := s.pending[ref]
	if !ok {
		plain, ok = s.cache.Get(ref)
	}
	if !ok {
		raw, err := os.ReadFile(s.file(ref))
		if err != nil {
			return record{}, fmt.Errorf("fsstore: read %s: %w", ref, err)
		}
		var rec record
		if rec, plain, err = s.decode(raw); err != nil {
			return record{}, fmt.Errorf("fsstore: decode %s: %w", ref, err)
		}
		s.cache.Add(ref, plain)
		return rec, nil
	}
	var rec record
	if err := cbor.Unmarshal(plain, &rec); err != nil {
		return record{}, fmt.Errorf("fsstore: decode %s: %w", ref, err)
	}
	return rec, nil
}

// stage buffers a document write. Must be called with s.mu held.
func (s *Store) stage(info asset.Info, doc []byte) error {
	plain, err := s.encode(info, doc)
	if err != nil {
		return fmt.Errorf("fsstore: encode %s: %w", info.Ref, err)
	}
	s.index[info.Ref] = info
	s.pending[info.Ref] = plain
	s.cache.Remove(info.Ref)
	return nil
}

// Put stores a under info.Ref. info.Ref must be a valid store path; its
// parent directories become containers.
func (s *Store) Put(ctx context.Context, info asset.Info, a asset.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := asset.CheckPath(string(info.Ref)); err != nil {
		return err
	}
	doc, err := asset.Marshal(a)
	if err != nil {
		return err
	}
	info.Kind = a.AssetKind()
	info.Name = a.AssetName()

	s.mu.Lock()
	defer s.mu.Unlock()
	for p := asset.ParentPath(string(info.Ref)); p != ""; p = asset.ParentPath(p) {
		if err := s.mkdir(p); err != nil {
			return err
		}
	}
	return s.stage(info, doc)
}

// Stat describes ref.
func (s *Store) Stat(ctx context.Context, ref asset.Ref) (asset.Info, error) {
	if err := ctx.Err(); err != nil {
		return asset.Info{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.index[ref]
	if !ok {
		return asset.Info{}, fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	return info, nil
}

// Load decodes the document at ref.
func (s *Store) Load(ctx context.Context, ref asset.Ref) (asset.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.index[ref]; !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	rec, err := s.read(ref)
	if err != nil {
		return nil, err
	}
	return asset.Unmarshal(rec.Doc)
}

// Save replaces the document at ref.
func (s *Store) Save(ctx context.Context, ref asset.Ref, a asset.Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := asset.Marshal(a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.index[ref]
	if !ok {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	if info.Kind != a.AssetKind() {
		return fmt.Errorf("%w: %s holds %s, got %s", asset.ErrKindMismatch, ref, info.Kind, a.AssetKind())
	}
	info.Name = a.AssetName()
	return s.stage(info, doc)
}

// Create stores a new document at p, named after p.
func (s *Store) Create(ctx context.Context, p string, a asset.Asset) (asset.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := asset.CheckPath(p); err != nil {
		return "", err
	}
	doc, err := asset.Marshal(a)
	if err != nil {
		return "", err
	}
	name := asset.NameFromPath(p)
	if doc, err = asset.Rename(doc, name); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDestination(p); err != nil {
		return "", err
	}
	ref := asset.Ref(p)
	info := asset.Info{Ref: ref, Kind: a.AssetKind(), Name: name, Path: p}
	if err := s.stage(info, doc); err != nil {
		return "", err
	}
	return ref, nil
}

// Duplicate copies src to p.
func (s *Store) Duplicate(ctx context.Context, src asset.Ref, p string) (asset.Ref, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := asset.CheckPath(p); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.index[src]
	if !ok {
		return "", fmt.Errorf("%w: %s", asset.ErrNotFound, src)
	}
	if info.BuiltIn || info.Path == "" {
		return "", fmt.Errorf("%w: %s", asset.ErrNotDuplicable, src)
	}
	if err := s.checkDestination(p); err != nil {
		return "", err
	}
	rec, err := s.read(src)
	if err != nil {
		return "", err
	}
	name := asset.NameFromPath(p)
	doc, err := asset.Rename(rec.Doc, name)
	if err != nil {
		return "", err
	}

	ref := asset.Ref(p)
	dup := asset.Info{Ref: ref, Kind: info.Kind, Name: name, Path: p, Unreadable: info.Unreadable}
	if err := s.stage(dup, doc); err != nil {
		return "", err
	}
	return ref, nil
}

// checkDestination must be called with s.mu held.
func (s *Store) checkDestination(p string) error {
	if !s.containerExists(asset.ParentPath(p)) {
		return fmt.Errorf("%w: %s", asset.ErrNoContainer, asset.ParentPath(p))
	}
	if _, ok := s.index[asset.Ref(p)]; ok {
		return fmt.Errorf("%w: %s", asset.ErrExists, p)
	}
	return nil
}

// CreateContainer creates the directory p.
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
	return s.mkdir(p)
}

// mkdir must be called with s.mu held.
func (s *Store) mkdir(p string) error {
	if err := os.Mkdir(s.dir(p), 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("fsstore: create container %s: %w", p, err)
	}
	s.containers[p] = struct{}{}
	return nil
}

// ContainerExists reports whether the directory p is a container.
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
	for ref, info := range s.index {
		if info.Path != "" && asset.Within(info.Path, container) {
			refs = append(refs, ref)
		}
	}
	slices.Sort(refs)
	return refs, nil
}

// Delete removes ref from the index and from disk.
func (s *Store) Delete(ctx context.Context, ref asset.Ref) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[ref]; !ok {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	if err := os.Remove(s.file(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fsstore: delete %s: %w", ref, err)
	}
	s.forget(ref)
	return nil
}

// forget must be called with s.mu held.
func (s *Store) forget(ref asset.Ref) {
	delete(s.index, ref)
	delete(s.pending, ref)
	s.cache.Remove(ref)
}

// DeleteContainer removes the directory p and everything below it.
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
	if err := os.RemoveAll(s.dir(p)); err != nil {
		return fmt.Errorf("fsstore: delete container %s: %w", p, err)
	}
	maps.DeleteFunc(s.containers, func(c string, _ struct{}) bool {
		return c == p || asset.Within(c, p)
	})
	for ref := range s.index {
		if asset.Within(string(ref), p) {
			s.forget(ref)
		}
	}
	return nil
}

// Persist writes every buffered document to disk.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := slices.Sorted(maps.Keys(s.pending))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		plain := s.pending[ref]
		if err := s.writeFile(ref, s.enc.EncodeAll(plain, nil)); err != nil {
			return err
		}
		delete(s.pending, ref)
		s.cache.Add(ref, plain)
	}
	return nil
}

// Pending returns the number of buffered documents.
func (s *Store) Pending() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

func (s *Store) writeFile(ref asset.Ref, data []byte) error {
	target := s.file(ref)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("fsstore: write %s: %w", ref, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("fsstore: write %s: %w", ref, err)
	}
	return nil
}
