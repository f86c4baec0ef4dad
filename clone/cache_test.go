package clone

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veilkit/obfuscator/asset"
)

func TestCache(t *testing.T) {
	c := New()

	_, ok := c.Get(asset.KindMesh, "Assets/Body.mesh")
	assert.False(t, ok)

	assert.Equal(t, asset.Ref("out/1.asset"), c.Put(asset.KindMesh, "Assets/Body.mesh", "out/1.asset"))
	assert.Equal(t, asset.Ref("out/1.asset"), c.Put(asset.KindMesh, "Assets/Body.mesh", "out/2.asset"), "first clone wins")

	got, ok := c.Get(asset.KindMesh, "Assets/Body.mesh")
	assert.True(t, ok)
	assert.Equal(t, asset.Ref("out/1.asset"), got)

	_, ok = c.Get(asset.KindMaterial, "Assets/Body.mesh")
	assert.False(t, ok, "kinds are separate")

	c.Put(asset.KindMesh, "Assets/Hair.mesh", "out/3.asset")
	c.Put(asset.KindMaterial, "Assets/Skin.mat", "out/4.mat")

	assert.Equal(t, 2, c.Len(asset.KindMesh))
	assert.Equal(t, 0, c.Len(asset.KindAudioClip))
	assert.Equal(t, []Pair{
		{Source: "Assets/Body.mesh", Target: "out/1.asset"},
		{Source: "Assets/Hair.mesh", Target: "out/3.asset"},
	}, c.Entries(asset.KindMesh))
	assert.Nil(t, c.Entries(asset.KindTexture))
	assert.Equal(t, map[asset.Kind]int{asset.KindMesh: 2, asset.KindMaterial: 1}, c.Counts())
}
