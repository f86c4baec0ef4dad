package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scene is a set of root nodes, as stored in a scene file.
type Scene struct {
	Roots []*Node `yaml:"roots"`
}

// Load reads a YAML scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML scene document.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	s.Roots = dropNil(s.Roots)
	for _, root := range s.Roots {
		root.Walk(func(n *Node) bool {
			n.prune()
			return true
		})
	}
	return &s, nil
}

// prune drops the null list entries a YAML document may hold.
func (n *Node) prune() {
	n.Children = dropNil(n.Children)
	n.PhysBones = dropNil(n.PhysBones)
	n.ContactReceivers = dropNil(n.ContactReceivers)
	n.AudioSources = dropNil(n.AudioSources)
}

func dropNil[T any](in []*T) []*T {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, v := range in {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Save writes s as YAML to path.
func (s *Scene) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene file %s: %w", path, err)
	}
	return nil
}

// Root returns the first root called name.
func (s *Scene) Root(name string) *Node {
	for _, r := range s.Roots {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// RemoveRoots drops every root for which drop returns true and returns how
// many were removed.
func (s *Scene) RemoveRoots(drop func(*Node) bool) int {
	kept := s.Roots[:0]
	removed := 0
	for _, r := range s.Roots {
		if drop(r) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(s.Roots); i++ {
		s.Roots[i] = nil
	}
	s.Roots = kept
	return removed
}
