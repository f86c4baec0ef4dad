package scene

import "slices"

// Clone returns a deep copy of n's subtree. Asset refs are copied by value;
// the assets themselves are shared until the obfuscator replaces them. Nil
// children and nil component entries are dropped.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Name:     n.Name,
		Disabled: n.Disabled,
	}
	if n.Children != nil {
		out.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child != nil {
				out.Children = append(out.Children, child.Clone())
			}
		}
	}

	if d := n.Descriptor; d != nil {
		out.Descriptor = &Descriptor{
			BaseLayers:           slices.Clone(d.BaseLayers),
			SpecialLayers:        slices.Clone(d.SpecialLayers),
			ExpressionParameters: d.ExpressionParameters,
			ExpressionsMenu:      d.ExpressionsMenu,
			VisemeBlendShapes:    slices.Clone(d.VisemeBlendShapes),
			VisemeMesh:           d.VisemeMesh,
		}
	}
	if a := n.Animator; a != nil {
		c := *a
		out.Animator = &c
	}
	if r := n.SkinnedMeshRenderer; r != nil {
		out.SkinnedMeshRenderer = &SkinnedMeshRenderer{Mesh: r.Mesh, Materials: slices.Clone(r.Materials)}
	}
	if f := n.MeshFilter; f != nil {
		c := *f
		out.MeshFilter = &c
	}
	if r := n.MeshRenderer; r != nil {
		out.MeshRenderer = &MeshRenderer{Materials: slices.Clone(r.Materials)}
	}
	if p := n.ParticleSystem; p != nil {
		out.ParticleSystem = &ParticleSystem{
			ShapeMesh:    p.ShapeMesh,
			RendererMesh: p.RendererMesh,
			Materials:    slices.Clone(p.Materials),
		}
	}
	out.PhysBones = clonePtrs(n.PhysBones)
	out.ContactReceivers = clonePtrs(n.ContactReceivers)
	if c := n.Camera; c != nil {
		cc := *c
		out.Camera = &cc
	}
	out.AudioSources = clonePtrs(n.AudioSources)
	if m := n.Marker; m != nil {
		mc := &Marker{}
		if m.Config != nil {
			mc.Config = m.Config.Clone()
		}
		out.Marker = mc
	}
	return out
}

func clonePtrs[T any](in []*T) []*T {
	if in == nil {
		return nil
	}
	out := make([]*T, 0, len(in))
	for _, v := range in {
		if v == nil {
			continue
		}
		c := *v
		out = append(out, &c)
	}
	return out
}
