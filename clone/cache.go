// Package clone memoizes the asset duplicates of one run.
package clone

import "github.com/veilkit/obfuscator/asset"

// Pair is one source asset and the clone that replaced it.
type Pair struct {
	Source asset.Ref
	Target asset.Ref
}

// Cache maps (kind, source) to the clone created for it during a run.
// Each source is cloned at most once; every later request reads through.
// A Cache is not safe for concurrent use.
type Cache struct {
	kinds map[asset.Kind]*bucket
}

type bucket struct {
	targets map[asset.Ref]asset.Ref
	order   []asset.Ref
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{kinds: make(map[asset.Kind]*bucket)}
}

// Get returns the clone recorded for src.
func (c *Cache) Get(kind asset.Kind, src asset.Ref) (asset.Ref, bool) {
	b, ok := c.kinds[kind]
	if !ok {
		return "", false
	}
	dst, ok := b.targets[src]
	return dst, ok
}

// Put records dst as the clone of src. A second Put for the same source
// keeps the first mapping and returns it.
func (c *Cache) Put(kind asset.Kind, src, dst asset.Ref) asset.Ref {
	b, ok := c.kinds[kind]
	if !ok {
		b = &bucket{targets: make(map[asset.Ref]asset.Ref)}
		c.kinds[kind] = b
	}
	if existing, ok := b.targets[src]; ok {
		return existing
	}
	b.targets[src] = dst
	b.order = append(b.order, src)
	return dst
}

// Entries returns the pairs recorded for kind in insertion order.
func (c *Cache) Entries(kind asset.Kind) []Pair {
	b, ok := c.kinds[kind]
	if !ok {
		return nil
	}
	out := make([]Pair, 0, len(b.order))
	for _, src := range b.order {
		out = append(out, Pair{Source: src, Target: b.targets[src]})
	}
	return out
}

// Len returns the number of clones recorded for kind.
func (c *Cache) Len(kind asset.Kind) int {
	if b, ok := c.kinds[kind]; ok {
		return len(b.order)
	}
	return 0
}

// Counts returns the number of clones per kind.
func (c *Cache) Counts() map[asset.Kind]int {
	out := make(map[asset.Kind]int, len(c.kinds))
	for kind, b := range c.kinds {
		out[kind] = len(b.order)
	}
	return out
}
