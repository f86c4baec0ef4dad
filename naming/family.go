package naming

import "sort"

// ParameterResolver resolves behavior-graph parameter names for one run.
//
// A name is renamed only when parameter obfuscation is enabled, the name is
// not reserved, and the caller selected it. Every name passed to Resolve is
// recorded as seen, renamed or not, so that exposed parameters nobody
// references can be reported later.
type ParameterResolver struct {
	table    *Table
	enabled  bool
	selected map[string]struct{}
	seen     map[string]struct{}
}

// NewParameterResolver creates a resolver backed by table.
func NewParameterResolver(table *Table, enabled bool, selected []string) *ParameterResolver {
	sel := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		sel[name] = struct{}{}
	}
	return &ParameterResolver{
		table:    table,
		enabled:  enabled,
		selected: sel,
		seen:     make(map[string]struct{}),
	}
}

// Selectable reports whether name would be renamed by Resolve.
func (r *ParameterResolver) Selectable(name string) bool {
	if !r.enabled || name == "" || IsReserved(name) {
		return false
	}
	_, ok := r.selected[name]
	return ok
}

// Resolve returns the opaque name of a parameter.
//
// Family members share one opaque base regardless of which member is
// resolved first: the base is minted once in the ParameterBases namespace
// and each member appends its own suffix.
func (r *ParameterResolver) Resolve(name string) string {
	if name == "" {
		return name
	}
	r.seen[name] = struct{}{}

	if !r.Selectable(name) {
		return name
	}
	if opaque, ok := r.table.TryGet(Parameters, name); ok {
		return opaque
	}

	base, suffix := SplitFamily(name)
	opaqueBase := r.table.Intern(ParameterBases, base)
	return r.table.Resolve(Parameters, name, func() string {
		return opaqueBase + suffix
	})
}

// Lookup returns the opaque name of an already resolved parameter without
// resolving it.
func (r *ParameterResolver) Lookup(name string) (string, bool) {
	return r.table.TryGet(Parameters, name)
}

// FamilyBase returns the opaque base already established for base.
func (r *ParameterResolver) FamilyBase(base string) (string, bool) {
	return r.table.TryGet(ParameterBases, base)
}

// ResolveFamilyBase returns the opaque base a physics module should use for
// its base parameter name. An established family base is reused. Otherwise a
// base is minted only if the plain name or one of its companions is
// selectable; if none is, base is returned unchanged with ok false.
func (r *ParameterResolver) ResolveFamilyBase(base string) (string, bool) {
	if base == "" {
		return base, false
	}
	if opaque, ok := r.FamilyBase(base); ok {
		return opaque, true
	}

	eligible := r.Selectable(base)
	for _, suffix := range FamilySuffixes {
		if eligible {
			break
		}
		eligible = r.Selectable(base + suffix)
	}
	if !eligible {
		return base, false
	}
	return r.table.Intern(ParameterBases, base), true
}

// Seen reports whether Resolve was called with name.
func (r *ParameterResolver) Seen(name string) bool {
	_, ok := r.seen[name]
	return ok
}

// SeenNames returns every name passed to Resolve, sorted.
func (r *ParameterResolver) SeenNames() []string {
	out := make([]string, 0, len(r.seen))
	for name := range r.seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
