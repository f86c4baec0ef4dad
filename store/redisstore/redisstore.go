// Package redisstore implements asset.Store on Redis so several hosts can
// share one asset library.
//
// Key layout, below a configurable prefix:
//
//	<prefix>:asset:<ref>   hash: kind, name, path, built_in, unreadable, doc
//	<prefix>:paths         hash: ref -> storage path (listed assets only)
//	<prefix>:containers    set of container paths
//
// Documents are stored as canonical CBOR. Writes reach Redis immediately, so
// Persist only checks the connection.
package redisstore

import (
	"context"
	"crypto/tls"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veilkit/obfuscator/asset"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "obfuscator"

// Hash fields of an asset key.
const (
	fieldKind       = "kind"
	fieldName       = "name"
	fieldPath       = "path"
	fieldBuiltIn    = "built_in"
	fieldUnreadable = "unreadable"
	fieldDoc        = "doc"
)

// Options configures the Redis connection.
type Options struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Prefix namespaces the keys. Defaults to DefaultPrefix.
	Prefix string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// Store is a Redis-backed asset store.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and returns a store.
func New(opts Options) (*Store, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, prefix: opts.Prefix}, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) assetKey(ref asset.Ref) string {
	return s.prefix + ":asset:" + string(ref)
}

func (s *Store) pathsKey() string {
	return s.prefix + ":paths"
}

func (s *Store) containersKey() string {
	return s.prefix + ":containers"
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// write stores info and doc in one transaction.
func (s *Store) write(ctx context.Context, info asset.Info, doc []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.assetKey(info.Ref), map[string]any{
			fieldKind:       string(info.Kind),
			fieldName:       info.Name,
			fieldPath:       info.Path,
			fieldBuiltIn:    flag(info.BuiltIn),
			fieldUnreadable: flag(info.Unreadable),
			fieldDoc:        doc,
		})
		if info.Path != "" {
			pipe.HSet(ctx, s.pathsKey(), string(info.Ref), info.Path)
		} else {
			pipe.HDel(ctx, s.pathsKey(), string(info.Ref))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write asset %s: %w", info.Ref, err)
	}
	return nil
}

// fetch returns the info and encoded document of ref.
func (s *Store) fetch(ctx context.Context, ref asset.Ref) (asset.Info, []byte, error) {
	if err := ctx.Err(); err != nil {
		return asset.Info{}, nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.assetKey(ref)).Result()
	if err != nil {
		return asset.Info{}, nil, fmt.Errorf("failed to read asset %s: %w", ref, err)
	}
	if len(fields) == 0 {
		return asset.Info{}, nil, fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	info := asset.Info{
		Ref:        ref,
		Kind:       asset.Kind(fields[fieldKind]),
		Name:       fields[fieldName],
		Path:       fields[fieldPath],
		BuiltIn:    fields[fieldBuiltIn] == "1",
		Unreadable: fields[fieldUnreadable] == "1",
	}
	return info, []byte(fields[fieldDoc]), nil
}

// Put stores a under info.Ref.
func (s *Store) Put(ctx context.Context, info asset.Info, a asset.Asset) error {
	if info.Ref.IsZero() {
		return fmt.Errorf("redisstore: put with empty ref")
	}
	doc, err := asset.Marshal(a)
	if err != nil {
		return err
	}
	info.Kind = a.AssetKind()
	info.Name = a.AssetName()
	return s.write(ctx, info, doc)
}

// Stat describes ref.
func (s *Store) Stat(ctx context.Context, ref asset.Ref) (asset.Info, error) {
	info, _, err := s.fetch(ctx, ref)
	return info, err
}

// Load decodes the document at ref.
func (s *Store) Load(ctx context.Context, ref asset.Ref) (asset.Asset, error) {
	_, doc, err := s.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return asset.Unmarshal(doc)
}

// Save replaces the document at ref.
func (s *Store) Save(ctx context.Context, ref asset.Ref, a asset.Asset) error {
	info, _, err := s.fetch(ctx, ref)
	if err != nil {
		return err
	}
	if info.Kind != a.AssetKind() {
		return fmt.Errorf("%w: %s holds %s, got %s", asset.ErrKindMismatch, ref, info.Kind, a.AssetKind())
	}
	doc, err := asset.Marshal(a)
	if err != nil {
		return err
	}
	info.Name = a.AssetName()
	return s.write(ctx, info, doc)
}

// Create stores a new document at p, named after p.
func (s *Store) Create(ctx context.Context, p string, a asset.Asset) (asset.Ref, error) {
	if err := asset.CheckPath(p); err != nil {
		return "", err
	}
	if err := s.checkDestination(ctx, p); err != nil {
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
	ref := asset.Ref(p)
	if err := s.write(ctx, asset.Info{Ref: ref, Kind: a.AssetKind(), Name: name, Path: p}, doc); err != nil {
		return "", err
	}
	return ref, nil
}

// Duplicate copies src to p.
func (s *Store) Duplicate(ctx context.Context, src asset.Ref, p string) (asset.Ref, error) {
	if err := asset.CheckPath(p); err != nil {
		return "", err
	}
	info, doc, err := s.fetch(ctx, src)
	if err != nil {
		return "", err
	}
	if info.BuiltIn || info.Path == "" {
		return "", fmt.Errorf("%w: %s", asset.ErrNotDuplicable, src)
	}
	if err := s.checkDestination(ctx, p); err != nil {
		return "", err
	}
	name := asset.NameFromPath(p)
	if doc, err = asset.Rename(doc, name); err != nil {
		return "", err
	}
	ref := asset.Ref(p)
	dup := asset.Info{Ref: ref, Kind: info.Kind, Name: name, Path: p, Unreadable: info.Unreadable}
	if err := s.write(ctx, dup, doc); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *Store) checkDestination(ctx context.Context, p string) error {
	parent := asset.ParentPath(p)
	ok, err := s.ContainerExists(ctx, parent)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", asset.ErrNoContainer, parent)
	}
	n, err := s.client.Exists(ctx, s.assetKey(asset.Ref(p))).Result()
	if err != nil {
		return fmt.Errorf("failed to check asset %s: %w", p, err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", asset.ErrExists, p)
	}
	return nil
}

// CreateContainer adds p to the container set.
func (s *Store) CreateContainer(ctx context.Context, p string) error {
	if err := asset.CheckPath(p); err != nil {
		return err
	}
	parent := asset.ParentPath(p)
	ok, err := s.ContainerExists(ctx, parent)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", asset.ErrNoContainer, parent)
	}
	if err := s.client.SAdd(ctx, s.containersKey(), p).Err(); err != nil {
		return fmt.Errorf("failed to create container %s: %w", p, err)
	}
	return nil
}

// ContainerExists reports whether p is in the container set.
func (s *Store) ContainerExists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p == "" {
		return true, nil
	}
	ok, err := s.client.SIsMember(ctx, s.containersKey(), p).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check container %s: %w", p, err)
	}
	return ok, nil
}

// List returns the refs stored below container, sorted.
func (s *Store) List(ctx context.Context, container string) ([]asset.Ref, error) {
	ok, err := s.ContainerExists(ctx, container)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrNotFound, container)
	}
	paths, err := s.client.HGetAll(ctx, s.pathsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", container, err)
	}
	var refs []asset.Ref
	for ref, p := range paths {
		if asset.Within(p, container) {
			refs = append(refs, asset.Ref(ref))
		}
	}
	slices.Sort(refs)
	return refs, nil
}

// Delete removes ref.
func (s *Store) Delete(ctx context.Context, ref asset.Ref) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.assetKey(ref))
		pipe.HDel(ctx, s.pathsKey(), string(ref))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", ref, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, ref)
	}
	return nil
}

// DeleteContainer removes p, its subcontainers and every asset whose ref
// lies below p.
func (s *Store) DeleteContainer(ctx context.Context, p string) error {
	if err := asset.CheckPath(p); err != nil {
		return err
	}
	ok, err := s.ContainerExists(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", asset.ErrNotFound, p)
	}

	containers, err := s.client.SMembers(ctx, s.containersKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to delete container %s: %w", p, err)
	}
	var refs []string
	iter := s.client.Scan(ctx, 0, s.assetKey(asset.Ref(p))+"/*", 0).Iterator()
	for iter.Next(ctx) {
		refs = append(refs, strings.TrimPrefix(iter.Val(), s.assetKey("")))
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", p, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range containers {
			if c == p || asset.Within(c, p) {
				pipe.SRem(ctx, s.containersKey(), c)
			}
		}
		for _, ref := range refs {
			pipe.Del(ctx, s.assetKey(asset.Ref(ref)))
			pipe.HDel(ctx, s.pathsKey(), ref)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete container %s: %w", p, err)
	}
	return nil
}

// Persist checks the connection; writes are already durable in Redis.
func (s *Store) Persist(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to persist: %w", err)
	}
	return nil
}
