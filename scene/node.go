// Package scene models the subject hierarchy handed to the obfuscator: a
// tree of named nodes carrying the components that reference assets.
package scene

import (
	"strings"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/config"
)

// Armature marker convention: a top-level child whose name starts with
// ArmaturePrefix and whose first child is named ArmatureFirstChild.
const (
	ArmaturePrefix     = "Armature"
	ArmatureFirstChild = "Hips"
)

// PreservedNames are top-level nodes kept intact when name preservation is
// enabled, so external face animation data keeps matching them.
var PreservedNames = []string{"Body"}

// IsPreservedName reports whether name is in PreservedNames.
func IsPreservedName(name string) bool {
	for _, p := range PreservedNames {
		if p == name {
			return true
		}
	}
	return false
}

// Node is one element of the hierarchy.
type Node struct {
	Name     string  `yaml:"name"`
	Disabled bool    `yaml:"disabled,omitempty"`
	Children []*Node `yaml:"children,omitempty"`

	Descriptor          *Descriptor          `yaml:"descriptor,omitempty"`
	Animator            *Animator            `yaml:"animator,omitempty"`
	SkinnedMeshRenderer *SkinnedMeshRenderer `yaml:"skinned_mesh_renderer,omitempty"`
	MeshFilter          *MeshFilter          `yaml:"mesh_filter,omitempty"`
	MeshRenderer        *MeshRenderer        `yaml:"mesh_renderer,omitempty"`
	ParticleSystem      *ParticleSystem      `yaml:"particle_system,omitempty"`
	PhysBones           []*PhysBone          `yaml:"phys_bones,omitempty"`
	ContactReceivers    []*ContactReceiver   `yaml:"contact_receivers,omitempty"`
	Camera              *Camera              `yaml:"camera,omitempty"`
	AudioSources        []*AudioSource       `yaml:"audio_sources,omitempty"`
	Marker              *Marker              `yaml:"marker,omitempty"`
}

// PlayableLayer binds a controller to one of the runtime's animation slots.
type PlayableLayer struct {
	Type       string    `yaml:"type"`
	Controller asset.Ref `yaml:"controller,omitempty"`
	IsDefault  bool      `yaml:"is_default,omitempty"`
}

// Descriptor is the root component that declares the subject to the runtime.
type Descriptor struct {
	BaseLayers           []PlayableLayer `yaml:"base_layers,omitempty"`
	SpecialLayers        []PlayableLayer `yaml:"special_layers,omitempty"`
	ExpressionParameters asset.Ref       `yaml:"expression_parameters,omitempty"`
	ExpressionsMenu      asset.Ref       `yaml:"expressions_menu,omitempty"`
	VisemeBlendShapes    []string        `yaml:"viseme_blend_shapes,omitempty"`

	// VisemeMesh is the mesh whose shape keys VisemeBlendShapes name.
	VisemeMesh asset.Ref `yaml:"viseme_mesh,omitempty"`
}

// Animator plays a controller on the node's subtree using a rig avatar.
type Animator struct {
	Avatar     asset.Ref `yaml:"avatar,omitempty"`
	Controller asset.Ref `yaml:"controller,omitempty"`
}

// SkinnedMeshRenderer draws a deformable mesh.
type SkinnedMeshRenderer struct {
	Mesh      asset.Ref   `yaml:"mesh,omitempty"`
	Materials []asset.Ref `yaml:"materials,omitempty"`
}

// MeshFilter holds the mesh drawn by a MeshRenderer on the same node.
type MeshFilter struct {
	Mesh asset.Ref `yaml:"mesh,omitempty"`
}

// MeshRenderer draws a static mesh.
type MeshRenderer struct {
	Materials []asset.Ref `yaml:"materials,omitempty"`
}

// ParticleSystem emits particles from a shape mesh and may render meshes.
type ParticleSystem struct {
	ShapeMesh    asset.Ref   `yaml:"shape_mesh,omitempty"`
	RendererMesh asset.Ref   `yaml:"renderer_mesh,omitempty"`
	Materials    []asset.Ref `yaml:"materials,omitempty"`
}

// PhysBone simulates a chain of bones. Parameter is the family base of the
// parameters it drives (Parameter+"_IsGrabbed", Parameter+"_Angle", ...).
type PhysBone struct {
	Parameter string `yaml:"parameter,omitempty"`
}

// ContactReceiver drives Parameter when touched.
type ContactReceiver struct {
	Parameter string `yaml:"parameter,omitempty"`
}

// Camera renders into TargetTexture when set.
type Camera struct {
	TargetTexture asset.Ref `yaml:"target_texture,omitempty"`
}

// AudioSource plays Clip.
type AudioSource struct {
	Clip asset.Ref `yaml:"clip,omitempty"`
}

// Marker is the obfuscator's own control component. It stores the
// configuration chosen for the subject and is stripped from output.
type Marker struct {
	Config *config.Config `yaml:"config,omitempty"`
}

// Walk visits n and its descendants depth-first, parents first. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Child returns the direct child called name.
func (n *Node) Child(name string) *Node {
	for _, child := range n.Children {
		if child != nil && child.Name == name {
			return child
		}
	}
	return nil
}

// Find resolves a slash-delimited path relative to n.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, segment := range strings.Split(path, "/") {
		if cur = cur.Child(segment); cur == nil {
			return nil
		}
	}
	return cur
}

// Armatures returns the direct children of n that follow the armature
// marker convention.
func (n *Node) Armatures() []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child == nil || !strings.HasPrefix(child.Name, ArmaturePrefix) || len(child.Children) == 0 {
			continue
		}
		if first := child.Children[0]; first != nil && first.Name == ArmatureFirstChild {
			out = append(out, child)
		}
	}
	return out
}

// Count returns the number of nodes in n's subtree, n included.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node) bool {
		total++
		return true
	})
	return total
}
