package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilkit/obfuscator/config"
)

const sampleScene = `
roots:
  - name: Avatar
    descriptor:
      base_layers:
        - type: base
          controller: Assets/Locomotion.controller
      expression_parameters: Assets/Params.asset
      viseme_blend_shapes: [vrc.v_sil, vrc.v_aa]
    animator:
      avatar: Assets/AvatarRig.asset
    marker:
      config:
        obfuscate_audio: false
        preserve_special_leaf_names: true
    children:
      - name: Armature
        children:
          - name: Hips
            children:
              - name: Spine
                phys_bones:
                  - parameter: Tail
      - name: Body
        skinned_mesh_renderer:
          mesh: Assets/Body.asset
          materials: [Assets/Skin.mat]
  - name: Lamp
`

func parseSample(t *testing.T) *Scene {
	t.Helper()
	s, err := Parse([]byte(sampleScene))
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := parseSample(t)
	require.Len(t, s.Roots, 2)

	root := s.Root("Avatar")
	require.NotNil(t, root)
	require.NotNil(t, root.Descriptor)
	assert.Equal(t, "Assets/Locomotion.controller", string(root.Descriptor.BaseLayers[0].Controller))
	assert.Equal(t, []string{"vrc.v_sil", "vrc.v_aa"}, root.Descriptor.VisemeBlendShapes)
	require.NotNil(t, root.Marker)
	assert.False(t, root.Marker.Config.ObfuscateAudio)
	assert.True(t, root.Marker.Config.PreserveSpecialLeafNames)
	assert.True(t, root.Marker.Config.ObfuscateHierarchyLabels, "unset keys keep defaults")
	assert.Equal(t, 5, root.Count())
	assert.Nil(t, s.Root("Missing"))
}

func TestFind(t *testing.T) {
	root := parseSample(t).Root("Avatar")

	spine := root.Find("Armature/Hips/Spine")
	require.NotNil(t, spine)
	require.Len(t, spine.PhysBones, 1)
	assert.Equal(t, "Tail", spine.PhysBones[0].Parameter)

	assert.Nil(t, root.Find("Armature/Chest"))
	assert.Equal(t, root.Child("Body"), root.Find("Body"))
}

func TestArmatures(t *testing.T) {
	tests := []struct {
		name     string
		children []*Node
		want     int
	}{
		{
			name:     "single",
			children: []*Node{{Name: "Armature", Children: []*Node{{Name: "Hips"}}}},
			want:     1,
		},
		{
			name:     "prefix match",
			children: []*Node{{Name: "Armature.001", Children: []*Node{{Name: "Hips"}}}},
			want:     1,
		},
		{
			name:     "first child must be hips",
			children: []*Node{{Name: "Armature", Children: []*Node{{Name: "Root"}, {Name: "Hips"}}}},
			want:     0,
		},
		{
			name:     "no children",
			children: []*Node{{Name: "Armature"}},
			want:     0,
		},
		{
			name: "two markers",
			children: []*Node{
				{Name: "Armature", Children: []*Node{{Name: "Hips"}}},
				{Name: "ArmatureB", Children: []*Node{{Name: "Hips"}}},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Node{Name: "Root", Children: tt.children}
			assert.Len(t, n.Armatures(), tt.want)
		})
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	root := parseSample(t).Root("Avatar")

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return n.Name != "Armature"
	})
	assert.Equal(t, []string{"Avatar", "Armature", "Body"}, visited)
}

func TestCloneIsDeep(t *testing.T) {
	root := parseSample(t).Root("Avatar")
	c := root.Clone()

	require.Equal(t, root, c)

	c.Name = "Copy"
	c.Find("Armature/Hips/Spine").PhysBones[0].Parameter = "Ears"
	c.Child("Body").SkinnedMeshRenderer.Materials[0] = "Assets/Other.mat"
	c.Descriptor.VisemeBlendShapes[0] = "x"
	c.Marker.Config.ObfuscateAudio = true

	assert.Equal(t, "Avatar", root.Name)
	assert.Equal(t, "Tail", root.Find("Armature/Hips/Spine").PhysBones[0].Parameter)
	assert.Equal(t, "Assets/Skin.mat", string(root.Child("Body").SkinnedMeshRenderer.Materials[0]))
	assert.Equal(t, "vrc.v_sil", root.Descriptor.VisemeBlendShapes[0])
	assert.False(t, root.Marker.Config.ObfuscateAudio)
}

func TestParseDropsNullEntries(t *testing.T) {
	s, err := Parse([]byte(`
roots:
  - null
  - name: Avatar
    phys_bones: [null, {parameter: Tail}]
    contact_receivers: [null]
    audio_sources: [null]
    children:
      - null
      - name: Body
`))
	require.NoError(t, err)

	require.Len(t, s.Roots, 1)
	root := s.Roots[0]
	require.Len(t, root.PhysBones, 1)
	assert.Equal(t, "Tail", root.PhysBones[0].Parameter)
	assert.Empty(t, root.ContactReceivers)
	assert.Empty(t, root.AudioSources)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Body", root.Children[0].Name)
}

func TestCloneDropsNil(t *testing.T) {
	root := &Node{
		Name:             "Avatar",
		Children:         []*Node{nil, {Name: "Body"}},
		PhysBones:        []*PhysBone{nil, {Parameter: "Tail"}},
		ContactReceivers: []*ContactReceiver{nil},
		AudioSources:     []*AudioSource{nil},
	}

	var c *Node
	require.NotPanics(t, func() { c = root.Clone() })
	require.Len(t, c.Children, 1)
	assert.Equal(t, "Body", c.Children[0].Name)
	assert.Equal(t, []*PhysBone{{Parameter: "Tail"}}, c.PhysBones)
	assert.Empty(t, c.ContactReceivers)
	assert.Empty(t, c.AudioSources)
}

func TestRemoveRoots(t *testing.T) {
	s := parseSample(t)
	s.Roots = append(s.Roots, &Node{Name: "Avatar_Obfuscated"})

	removed := s.RemoveRoots(func(n *Node) bool { return n.Name != "Avatar" })
	assert.Equal(t, 2, removed)
	require.Len(t, s.Roots, 1)
	assert.Equal(t, "Avatar", s.Roots[0].Name)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	s := &Scene{Roots: []*Node{{
		Name:   "Avatar",
		Marker: &Marker{Config: config.Default()},
		Children: []*Node{
			{Name: "Cam", Camera: &Camera{TargetTexture: "Assets/RT.asset"}},
		},
	}}}
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestIsPreservedName(t *testing.T) {
	assert.True(t, IsPreservedName("Body"))
	assert.False(t, IsPreservedName("body"))
}
