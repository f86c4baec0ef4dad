package asset

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecKeepsNestedMotions(t *testing.T) {
	ctrl := &Controller{
		Name:       "FX",
		Parameters: []Parameter{{Name: "Toggle", Type: ParameterBool}},
		Layers: []Layer{{
			Name: "Base",
			StateMachine: &StateMachine{
				ID:   1,
				Name: "Base",
				States: []*State{{
					ID:   2,
					Name: "Idle",
					Motion: Motion{Inline: &BlendTree{
						Name:           "Blend",
						BlendParameter: "Toggle",
						Children: []ChildMotion{
							{Motion: Motion{Clip: "Assets/On.anim"}},
							{Motion: Motion{Inline: &BlendTree{Name: "Nested"}}},
						},
					}},
				}},
			},
		}},
	}

	data, err := Marshal(ctrl)
	require.NoError(t, err)

	kind, err := PeekKind(data)
	require.NoError(t, err)
	assert.Equal(t, KindController, kind)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, ctrl, decoded)
}

func TestUnmarshalUnknownKind(t *testing.T) {
	body, err := cbor.Marshal(map[string]string{"name": "x"})
	require.NoError(t, err)
	data, err := cbor.Marshal(envelope{Kind: "shader", Body: body})
	require.NoError(t, err)

	_, err = Unmarshal(data)
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = Unmarshal([]byte{0xff, 0x00})
	assert.Error(t, err)

	_, err = Marshal(nil)
	assert.Error(t, err)
}

func TestRename(t *testing.T) {
	data, err := Marshal(&Material{Name: "Skin", Shader: "Standard"})
	require.NoError(t, err)

	renamed, err := Rename(data, "0123")
	require.NoError(t, err)

	a, err := Unmarshal(renamed)
	require.NoError(t, err)
	assert.Equal(t, &Material{Name: "0123", Shader: "Standard"}, a)
}

func TestNew(t *testing.T) {
	for _, kind := range Kinds {
		a := New(kind)
		require.NotNil(t, a, kind)
		assert.Equal(t, kind, a.AssetKind())
		assert.True(t, kind.Valid())
	}
	assert.Nil(t, New("shader"))
	assert.False(t, Kind("shader").Valid())
}

func TestPathRules(t *testing.T) {
	tests := []struct {
		kind   Kind
		source string
		want   string
	}{
		{KindController, "Assets/FX.controller", ".controller"},
		{KindAnimationClip, "Assets/Wave.anim", ".anim"},
		{KindAvatarMask, "Assets/Hands.mask", ".mask"},
		{KindMaterial, "Assets/Skin.mat", ".mat"},
		{KindTexture, "Assets/Skin.png", ".png"},
		{KindAudioClip, "Assets/Beep.wav", ".wav"},
		{KindTexture, "", ""},
		{KindMesh, "Assets/Body.fbx", ".asset"},
		{KindMenu, "Assets/Menu.asset", ".asset"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind)+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.kind, tt.source))
		})
	}

	assert.True(t, IsBuiltInPath("Library/unity default resources"))
	assert.True(t, IsBuiltInPath("Resources/unity_builtin_extra"))
	assert.False(t, IsBuiltInPath("Assets/Skin.mat"))

	assert.True(t, IsProxyClip("Packages/sdk/ProxyAnim/proxy_stand_still.anim"))
	assert.False(t, IsProxyClip("Assets/Wave.anim"))

	assert.Equal(t, "abc", NameFromPath("Obfuscated/run/abc.controller"))
	assert.Equal(t, "abc", NameFromPath("abc"))
	assert.Equal(t, "Obfuscated/run/abc.mat", JoinPath("Obfuscated", "run", "abc.mat"))
}

func TestMotionIsZero(t *testing.T) {
	assert.True(t, Motion{}.IsZero())
	assert.False(t, Motion{Clip: "a.anim"}.IsZero())
	assert.False(t, Motion{Tree: "a.asset"}.IsZero())
	assert.False(t, Motion{Inline: &BlendTree{}}.IsZero())
}

func TestStorePaths(t *testing.T) {
	assert.Equal(t, "", ParentPath("Obfuscated"))
	assert.Equal(t, "Obfuscated", ParentPath("Obfuscated/abc"))
	assert.Equal(t, "Obfuscated/abc", ParentPath("Obfuscated/abc/tok.anim"))

	assert.True(t, Within("Obfuscated/abc/tok.anim", "Obfuscated"))
	assert.True(t, Within("Assets/x.mat", ""))
	assert.False(t, Within("ObfuscatedX/tok.anim", "Obfuscated"))
	assert.False(t, Within("Obfuscated", "Obfuscated"))

	tests := []struct {
		path  string
		valid bool
	}{
		{"Assets/Body.asset", true},
		{"Obfuscated", true},
		{"", false},
		{"/etc/passwd", false},
		{"Assets//Body.asset", false},
		{"Assets/../Body.asset", false},
		{"../outside", false},
		{"Assets/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckPath(tt.path)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPath)
			}
		})
	}
}
