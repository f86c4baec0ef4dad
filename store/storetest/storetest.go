// Package storetest checks asset.Store implementations against the behavior
// the obfuscator relies on.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/store"
)

// Run runs the suite. open must return an empty store for every call.
func Run(t *testing.T, open func(t *testing.T) store.Seeder) {
	t.Helper()

	t.Run("put stat load", func(t *testing.T) { testPutStatLoad(t, open(t)) })
	t.Run("save", func(t *testing.T) { testSave(t, open(t)) })
	t.Run("create", func(t *testing.T) { testCreate(t, open(t)) })
	t.Run("duplicate", func(t *testing.T) { testDuplicate(t, open(t)) })
	t.Run("containers", func(t *testing.T) { testContainers(t, open(t)) })
	t.Run("list and delete", func(t *testing.T) { testListDelete(t, open(t)) })
	t.Run("canceled context", func(t *testing.T) { testCanceled(t, open(t)) })
}

// Material returns a small fixture document.
func Material(name string) *asset.Material {
	return &asset.Material{
		Name:     name,
		Shader:   "Standard",
		Textures: []asset.TextureSlot{{Property: "_MainTex", Texture: "Assets/Skin.png"}},
	}
}

func testPutStatLoad(t *testing.T, s store.Seeder) {
	ctx := context.Background()
	ref := asset.Ref("Assets/Skin.mat")
	require.NoError(t, s.Put(ctx, asset.Info{Ref: ref, Path: "Assets/Skin.mat"}, Material("Skin")))

	info, err := s.Stat(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, asset.Info{Ref: ref, Kind: asset.KindMaterial, Name: "Skin", Path: "Assets/Skin.mat"}, info)

	first, err := asset.LoadAs[*asset.Material](ctx, s, ref)
	require.NoError(t, err)
	assert.Equal(t, Material("Skin"), first)

	first.Name = "changed"
	second, err := asset.LoadAs[*asset.Material](ctx, s, ref)
	require.NoError(t, err)
	assert.Equal(t, "Skin", second.Name, "loads must not alias")

	_, err = asset.LoadAs[*asset.Mesh](ctx, s, ref)
	assert.ErrorIs(t, err, asset.ErrKindMismatch)

	_, err = s.Stat(ctx, "Assets/Missing.mat")
	assert.ErrorIs(t, err, asset.ErrNotFound)
	_, err = s.Load(ctx, "Assets/Missing.mat")
	assert.ErrorIs(t, err, asset.ErrNotFound)
}

func testSave(t *testing.T, s store.Seeder) {
	ctx := context.Background()
	ref := asset.Ref("Assets/Skin.mat")
	require.NoError(t, s.Put(ctx, asset.Info{Ref: ref, Path: string(ref)}, Material("Skin")))

	m := Material("Renamed")
	m.Textures = nil
	require.NoError(t, s.Save(ctx, ref, m))

	got, err := asset.LoadAs[*asset.Material](ctx, s, ref)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	info, err := s.Stat(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", info.Name)

	assert.ErrorIs(t, s.Save(ctx, ref, &asset.Mesh{Name: "x"}), asset.ErrKindMismatch)
	assert.ErrorIs(t, s.Save(ctx, "Assets/Missing.mat", m), asset.ErrNotFound)
}

func testCreate(t *testing.T, s store.Seeder) {
	ctx := context.Background()

	_, err := s.Create(ctx, "Out/tok.mat", Material("Skin"))
	assert.ErrorIs(t, err, asset.ErrNoContainer)

	require.NoError(t, s.CreateContainer(ctx, "Out"))
	ref, err := s.Create(ctx, "Out/tok.mat", Material("Skin"))
	require.NoError(t, err)
	assert.Equal(t, asset.Ref("Out/tok.mat"), ref)

	info, err := s.Stat(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "tok", info.Name)
	assert.Equal(t, "Out/tok.mat", info.Path)

	got, err := asset.LoadAs[*asset.Material](ctx, s, ref)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Name)

	_, err = s.Create(ctx, "Out/tok.mat", Material("Skin"))
	assert.ErrorIs(t, err, asset.ErrExists)

	_, err = s.Create(ctx, "Out/../tok.mat", Material("Skin"))
	assert.ErrorIs(t, err, asset.ErrInvalidPath)
}

func testDuplicate(t *testing.T, s store.Seeder) {
	ctx := context.Background()
	src := asset.Ref("Assets/Body.asset")
	mesh := &asset.Mesh{Name: "Body", VertexCount: 3, BlendShapes: []asset.BlendShape{{Name: "smile"}}}
	require.NoError(t, s.Put(ctx, asset.Info{Ref: src, Path: string(src), Unreadable: true}, mesh))
	require.NoError(t, s.Put(ctx, asset.Info{Ref: "builtin:Cube", Path: "Resources/unity_builtin_extra", BuiltIn: true}, &asset.Mesh{Name: "Cube"}))
	require.NoError(t, s.Put(ctx, asset.Info{Ref: "memory:1"}, &asset.Mesh{Name: "Generated"}))
	require.NoError(t, s.CreateContainer(ctx, "Out"))

	dst, err := s.Duplicate(ctx, src, "Out/tok.asset")
	require.NoError(t, err)
	assert.Equal(t, asset.Ref("Out/tok.asset"), dst)

	info, err := s.Stat(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, asset.Info{Ref: dst, Kind: asset.KindMesh, Name: "tok", Path: "Out/tok.asset", Unreadable: true}, info)

	copied, err := asset.LoadAs[*asset.Mesh](ctx, s, dst)
	require.NoError(t, err)
	assert.Equal(t, "tok", copied.Name)
	assert.Equal(t, mesh.BlendShapes, copied.BlendShapes)

	orig, err := asset.LoadAs[*asset.Mesh](ctx, s, src)
	require.NoError(t, err)
	assert.Equal(t, "Body", orig.Name, "source untouched")

	_, err = s.Duplicate(ctx, "builtin:Cube", "Out/cube.asset")
	assert.ErrorIs(t, err, asset.ErrNotDuplicable)
	_, err = s.Duplicate(ctx, "memory:1", "Out/gen.asset")
	assert.ErrorIs(t, err, asset.ErrNotDuplicable)
	_, err = s.Duplicate(ctx, "Assets/Missing.asset", "Out/x.asset")
	assert.ErrorIs(t, err, asset.ErrNotFound)
	_, err = s.Duplicate(ctx, src, "Out/tok.asset")
	assert.ErrorIs(t, err, asset.ErrExists)
	_, err = s.Duplicate(ctx, src, "Missing/tok.asset")
	assert.ErrorIs(t, err, asset.ErrNoContainer)
}

func testContainers(t *testing.T, s store.Seeder) {
	ctx := context.Background()

	ok, err := s.ContainerExists(ctx, "Obfuscated")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.CreateContainer(ctx, "Obfuscated/run"), asset.ErrNoContainer)
	require.NoError(t, s.CreateContainer(ctx, "Obfuscated"))
	require.NoError(t, s.CreateContainer(ctx, "Obfuscated"))
	require.NoError(t, s.CreateContainer(ctx, "Obfuscated/run"))

	ok, err = s.ContainerExists(ctx, "Obfuscated/run")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ContainerExists(ctx, "")
	require.NoError(t, err)
	assert.True(t, ok, "root always exists")
}

func testListDelete(t *testing.T, s store.Seeder) {
	ctx := context.Background()
	require.NoError(t, s.CreateContainer(ctx, "Out"))
	require.NoError(t, s.CreateContainer(ctx, "Out/b"))
	require.NoError(t, s.CreateContainer(ctx, "Out/a"))
	require.NoError(t, s.CreateContainer(ctx, "Other"))
	for _, p := range []string{"Out/b/2.mat", "Out/a/1.mat", "Out/0.mat", "Other/3.mat"} {
		_, err := s.Create(ctx, p, Material("x"))
		require.NoError(t, err)
	}

	refs, err := s.List(ctx, "Out")
	require.NoError(t, err)
	assert.Equal(t, []asset.Ref{"Out/0.mat", "Out/a/1.mat", "Out/b/2.mat"}, refs)

	_, err = s.List(ctx, "Missing")
	assert.ErrorIs(t, err, asset.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "Out/0.mat"))
	assert.ErrorIs(t, s.Delete(ctx, "Out/0.mat"), asset.ErrNotFound)

	require.NoError(t, s.DeleteContainer(ctx, "Out"))
	ok, err := s.ContainerExists(ctx, "Out/a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = s.Stat(ctx, "Out/a/1.mat")
	assert.ErrorIs(t, err, asset.ErrNotFound)
	assert.ErrorIs(t, s.DeleteContainer(ctx, "Out"), asset.ErrNotFound)

	refs, err = s.List(ctx, "Other")
	require.NoError(t, err)
	assert.Equal(t, []asset.Ref{"Other/3.mat"}, refs)

	require.NoError(t, s.Persist(ctx))
	refs, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []asset.Ref{"Other/3.mat"}, refs)
}

func testCanceled(t *testing.T, s store.Seeder) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Stat(ctx, "Assets/Skin.mat")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.CreateContainer(ctx, "Out"), context.Canceled)
}
