package naming

// Namespace is an independent identifier space of a Table.
type Namespace string

const (
	// Transforms holds hierarchy node names.
	Transforms Namespace = "transforms"

	// Parameters holds full behavior-graph parameter names.
	Parameters Namespace = "parameters"

	// ParameterBases holds the shared opaque base of each parameter family.
	ParameterBases Namespace = "parameter-bases"

	// BlendShapes holds mesh shape-key names.
	BlendShapes Namespace = "blend-shapes"
)

// Entry is one source name and the opaque name it resolved to.
type Entry struct {
	Source string
	Opaque string
}

// Table memoizes source name to opaque name per namespace for one run.
// It is not safe for concurrent use.
type Table struct {
	minter Minter
	spaces map[Namespace]*space
}

type space struct {
	names map[string]string
	order []string
}

// NewTable creates an empty table. A nil minter falls back to UUIDMinter.
func NewTable(minter Minter) *Table {
	if minter == nil {
		minter = UUIDMinter{}
	}
	return &Table{
		minter: minter,
		spaces: make(map[Namespace]*space),
	}
}

// Minter returns the minter used by Intern.
func (t *Table) Minter() Minter {
	return t.minter
}

// Resolve returns the opaque name of name in ns, storing mint() on first use.
// An empty name resolves to itself.
func (t *Table) Resolve(ns Namespace, name string, mint func() string) string {
	if name == "" {
		return name
	}

	s := t.space(ns)
	if opaque, ok := s.names[name]; ok {
		return opaque
	}

	opaque := mint()
	s.names[name] = opaque
	s.order = append(s.order, name)
	return opaque
}

// Intern is Resolve using the table's minter.
func (t *Table) Intern(ns Namespace, name string) string {
	return t.Resolve(ns, name, t.minter.Mint)
}

// TryGet returns the already established opaque name of name in ns.
func (t *Table) TryGet(ns Namespace, name string) (string, bool) {
	s, ok := t.spaces[ns]
	if !ok {
		return "", false
	}
	opaque, ok := s.names[name]
	return opaque, ok
}

// Len returns the number of names resolved in ns.
func (t *Table) Len(ns Namespace) int {
	if s, ok := t.spaces[ns]; ok {
		return len(s.order)
	}
	return 0
}

// Entries returns the resolved names of ns in first-use order.
func (t *Table) Entries(ns Namespace) []Entry {
	s, ok := t.spaces[ns]
	if !ok {
		return nil
	}
	out := make([]Entry, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, Entry{Source: name, Opaque: s.names[name]})
	}
	return out
}

func (t *Table) space(ns Namespace) *space {
	s, ok := t.spaces[ns]
	if !ok {
		s = &space{names: make(map[string]string)}
		t.spaces[ns] = s
	}
	return s
}
