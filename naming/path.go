package naming

import "strings"

// PathSeparator separates hierarchy path segments.
const PathSeparator = "/"

// PathRewriter rewrites hierarchy paths through the Transforms namespace.
type PathRewriter struct {
	table     *Table
	enabled   bool
	preserved map[string]struct{}
}

// NewPathRewriter creates a rewriter. When enabled is false the rewriter
// returns every path unchanged. Paths whose first segment is in preserved
// name a subtree that the hierarchy phase left alone and are kept as is.
func NewPathRewriter(table *Table, enabled bool, preserved []string) *PathRewriter {
	p := make(map[string]struct{}, len(preserved))
	for _, name := range preserved {
		p[name] = struct{}{}
	}
	return &PathRewriter{table: table, enabled: enabled, preserved: p}
}

// Rewrite maps every segment of path to its established opaque name.
//
// ok is false if a segment has no established name. The returned path is
// then a freshly minted token that links to nothing, and the caller is
// expected to report the inconsistency.
func (p *PathRewriter) Rewrite(path string) (rewritten string, ok bool) {
	if path == "" || !p.enabled {
		return path, true
	}

	segments := strings.Split(path, PathSeparator)
	if _, keep := p.preserved[segments[0]]; keep {
		return path, true
	}

	for i, segment := range segments {
		if segment == "" {
			continue
		}
		opaque, found := p.table.TryGet(Transforms, segment)
		if !found {
			return p.table.Minter().Mint(), false
		}
		segments[i] = opaque
	}
	return strings.Join(segments, PathSeparator), true
}

// Preserved reports whether path lies in a preserved subtree.
func (p *PathRewriter) Preserved(path string) bool {
	first, _, _ := strings.Cut(path, PathSeparator)
	_, ok := p.preserved[first]
	return ok && path != ""
}
