package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/obferr"
	"github.com/veilkit/obfuscator/scene"
	"github.com/veilkit/obfuscator/store/memstore"
)

const (
	refAvatar asset.Ref = "Assets/Avatar.asset"
	refMesh   asset.Ref = "Assets/Body.mesh"
	refSkin   asset.Ref = "Assets/Skin.mat"
	refFX     asset.Ref = "Assets/FX.controller"
	refBuilt  asset.Ref = "Resources/unity_builtin_extra/Default-Material"
)

func newSubject() *scene.Node {
	return &scene.Node{
		Name: "Avatar",
		Descriptor: &scene.Descriptor{
			BaseLayers: []scene.PlayableLayer{{Type: "fx", Controller: refFX}},
		},
		Animator: &scene.Animator{Avatar: refAvatar, Controller: refFX},
		Children: []*scene.Node{
			{Name: "Armature", Children: []*scene.Node{{Name: "Hips"}}},
			{
				Name: "Body",
				SkinnedMeshRenderer: &scene.SkinnedMeshRenderer{
					Mesh:      refMesh,
					Materials: []asset.Ref{refSkin, refSkin},
				},
			},
		},
	}
}

func newStore(t *testing.T) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	put := func(info asset.Info, a asset.Asset) {
		require.NoError(t, s.Put(ctx, info, a))
	}
	put(asset.Info{Ref: refAvatar, Path: string(refAvatar)}, &asset.Avatar{Name: "Avatar", Valid: true})
	put(asset.Info{Ref: refMesh, Path: string(refMesh)}, &asset.Mesh{Name: "Body"})
	put(asset.Info{Ref: refSkin, Path: string(refSkin)}, &asset.Material{Name: "Skin"})
	put(asset.Info{Ref: refFX, Path: string(refFX)}, &asset.Controller{Name: "FX"})
	put(asset.Info{Ref: refBuilt, Path: string(refBuilt), BuiltIn: true}, &asset.Material{Name: "Default-Material"})
	require.NoError(t, s.CreateContainer(ctx, "Assets"))
	return s
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		healthy   bool
		degraded  bool
		unhealthy bool
	}{
		{"healthy", Healthy("ok"), true, false, false},
		{"degraded", Degraded("slow", nil), false, true, false},
		{"unhealthy", Unhealthy("down", map[string]any{"code": 1}), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.healthy, tt.status.IsHealthy())
			assert.Equal(t, tt.degraded, tt.status.IsDegraded())
			assert.Equal(t, tt.unhealthy, tt.status.IsUnhealthy())
		})
	}
}

func TestSubjectCheck(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		status := SubjectCheck(newSubject())
		assert.True(t, status.IsHealthy(), status.Message)
	})

	tests := []struct {
		name   string
		mutate func(n *scene.Node) *scene.Node
		code   string
	}{
		{
			name:   "nil subject",
			mutate: func(*scene.Node) *scene.Node { return nil },
			code:   obferr.CodeMissingComponent,
		},
		{
			name: "no descriptor",
			mutate: func(n *scene.Node) *scene.Node {
				n.Descriptor = nil
				return n
			},
			code: obferr.CodeMissingComponent,
		},
		{
			name: "no armature",
			mutate: func(n *scene.Node) *scene.Node {
				n.Children = n.Children[1:]
				return n
			},
			code: obferr.CodeMissingArmature,
		},
		{
			name: "two armatures",
			mutate: func(n *scene.Node) *scene.Node {
				n.Children = append(n.Children, &scene.Node{
					Name:     "Armature.001",
					Children: []*scene.Node{{Name: "Hips"}},
				})
				return n
			},
			code: obferr.CodeMultipleArmatures,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := SubjectCheck(tt.mutate(newSubject()))
			require.True(t, status.IsUnhealthy())
			assert.Equal(t, tt.code, status.Details["code"])
		})
	}
}

func TestReferences(t *testing.T) {
	refs := References(newSubject())
	assert.Equal(t, []asset.Ref{refFX, refAvatar, refMesh, refSkin}, refs)
}

func TestReferenceCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("all found", func(t *testing.T) {
		status := ReferenceCheck(ctx, newStore(t), newSubject())
		assert.True(t, status.IsHealthy(), status.Message)
		assert.Contains(t, status.Message, "4")
	})

	t.Run("missing", func(t *testing.T) {
		subject := newSubject()
		subject.Children[1].SkinnedMeshRenderer.Mesh = "Assets/Gone.mesh"

		status := ReferenceCheck(ctx, newStore(t), subject)
		require.True(t, status.IsUnhealthy())
		assert.Equal(t, []string{"Assets/Gone.mesh"}, status.Details["missing"])
	})

	t.Run("built-in", func(t *testing.T) {
		subject := newSubject()
		subject.Children[1].SkinnedMeshRenderer.Materials = []asset.Ref{refBuilt}

		status := ReferenceCheck(ctx, newStore(t), subject)
		require.True(t, status.IsDegraded())
		assert.Equal(t, []string{string(refBuilt)}, status.Details["unchanged"])
	})

	t.Run("nil subject", func(t *testing.T) {
		assert.True(t, ReferenceCheck(ctx, newStore(t), nil).IsUnhealthy())
	})
}

func TestOutputCheck(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.CreateContainer(ctx, "Assets/Obfuscated"))

	tests := []struct {
		name      string
		container string
		healthy   bool
	}{
		{"exists", "Assets/Obfuscated", true},
		{"creatable", "Obfuscated", true},
		{"creatable nested", "Assets/Out", true},
		{"missing parent", "Missing/Out", false},
		{"invalid", "../Out", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := OutputCheck(ctx, s, tt.container)
			assert.Equal(t, tt.healthy, status.IsHealthy(), status.Message)
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		checks []Status
		want   string
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{Healthy("a"), Healthy("b")}, StatusHealthy},
		{"one degraded", []Status{Healthy("a"), Degraded("b", nil)}, StatusDegraded},
		{"unhealthy wins", []Status{Degraded("a", nil), Unhealthy("b", nil), Healthy("c")}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(tt.checks...).Status)
		})
	}

	t.Run("failed checks listed", func(t *testing.T) {
		got := Combine(Unhealthy("", nil), Unhealthy("subject invalid", nil))
		assert.Equal(t, []string{"unnamed check", "subject invalid"}, got.Details["failed_checks"])
		assert.Equal(t, 2, got.Details["unhealthy"])
	})
}
