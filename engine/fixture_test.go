package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/scene"
	"github.com/veilkit/obfuscator/store/memstore"
)

// Fixture refs.
const (
	refAvatar     asset.Ref = "Assets/Avatar.asset"
	refBodyMesh   asset.Ref = "Assets/Body.mesh"
	refSkin       asset.Ref = "Assets/Skin.mat"
	refAlt        asset.Ref = "Assets/Alt.mat"
	refSkinTex    asset.Ref = "Assets/Skin.png"
	refRenderTex  asset.Ref = "Assets/Mirror.renderTexture"
	refIcon       asset.Ref = "Assets/Icon.png"
	refBeep       asset.Ref = "Assets/Beep.wav"
	refFX         asset.Ref = "Assets/FX.controller"
	refProp       asset.Ref = "Assets/Prop.controller"
	refMask       asset.Ref = "Assets/Face.mask"
	refSmile      asset.Ref = "Assets/Smile.anim"
	refProxy      asset.Ref = "Assets/ProxyAnim/proxy_stand.anim"
	refTree       asset.Ref = "Assets/Locomotion.asset"
	refParams     asset.Ref = "Assets/Params.asset"
	refMenu       asset.Ref = "Assets/Menu.asset"
	refSubMenu    asset.Ref = "Assets/SubMenu.asset"
	refDefaultMat asset.Ref = "Resources/unity_builtin_extra/Default-Material"
)

// fixture is a complete subject with every asset it references seeded into
// an in-memory store.
type fixture struct {
	store   *memstore.Store
	subject *scene.Node
	cfg     *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	put := func(ref asset.Ref, a asset.Asset) {
		require.NoError(t, s.Put(ctx, asset.Info{Ref: ref, Path: string(ref)}, a))
	}

	put(refAvatar, &asset.Avatar{
		Name:  "Avatar",
		Valid: true,
		Human: true,
		Skeleton: []asset.SkeletonBone{
			{Name: "Avatar"},
			{Name: "Armature"},
			{Name: "Hips"},
			{Name: "Chest"},
		},
		HumanBones: []asset.HumanBone{
			{BoneName: "Hips", HumanName: "Hips"},
			{BoneName: "Chest", HumanName: "Chest"},
		},
	})
	put(refBodyMesh, &asset.Mesh{
		Name:        "Body",
		VertexCount: 8,
		BlendShapes: []asset.BlendShape{{Name: "Smile"}, {Name: "vrc.v_aa"}},
	})
	put(refSkin, &asset.Material{
		Name:     "Skin",
		Shader:   "Standard",
		Textures: []asset.TextureSlot{{Property: "_MainTex", Texture: refSkinTex}},
	})
	put(refAlt, &asset.Material{
		Name:     "Alt",
		Shader:   "Standard",
		Textures: []asset.TextureSlot{{Property: "_MainTex", Texture: refSkinTex}},
	})
	put(refSkinTex, &asset.Texture{Name: "Skin", Width: 4, Height: 4})
	put(refRenderTex, &asset.Texture{Name: "Mirror", Width: 64, Height: 64, RenderTarget: true})
	put(refIcon, &asset.Texture{Name: "Icon", Width: 2, Height: 2})
	put(refBeep, &asset.AudioClip{Name: "Beep", Channels: 1, Frequency: 44100})
	put(refMask, &asset.AvatarMask{
		Name: "Face",
		Transforms: []asset.MaskTransform{
			{Path: "", Active: true},
			{Path: "Armature/Hips", Active: false},
			{Path: "Body", Active: true},
		},
	})
	put(refSmile, &asset.AnimationClip{
		Name:   "Smile",
		Length: 1,
		Curves: []asset.Curve{
			{Path: "Body", Type: "SkinnedMeshRenderer", Property: "blendShape.Smile"},
			{Path: "Armature/Hips/Chest", Type: "Transform", Property: "m_LocalScale.x"},
			{Path: "", Type: "Animator", Property: "Smile"},
			{Path: "", Type: "Animator", Property: "MotionTime"},
		},
		ObjectCurves: []asset.ObjectCurve{{
			Path:     "Body",
			Type:     "SkinnedMeshRenderer",
			Property: "m_Materials.Array.data[0]",
			Keys:     []asset.ObjectKeyframe{{Value: refAlt, ValueKind: asset.KindMaterial}},
		}},
	})
	require.NoError(t, s.Put(ctx, asset.Info{Ref: refProxy, Path: string(refProxy)}, &asset.AnimationClip{Name: "proxy_stand"}))
	put(refTree, &asset.BlendTree{
		Name:           "Locomotion",
		BlendType:      "simple_1d",
		BlendParameter: "Smile",
		Children: []asset.ChildMotion{
			{Motion: asset.Motion{Clip: refSmile}, Threshold: 0},
			{Motion: asset.Motion{Clip: refProxy}, Threshold: 1},
			{Motion: asset.Motion{Tree: refTree}, DirectBlendParameter: "Nose_IsGrabbed"},
		},
	})
	put(refFX, &asset.Controller{
		Name: "FX",
		Parameters: []asset.Parameter{
			{Name: "Smile", Type: asset.ParameterFloat},
			{Name: "Nose_IsGrabbed", Type: asset.ParameterBool},
			{Name: "GestureLeft", Type: asset.ParameterInt},
		},
		Layers: []asset.Layer{{
			Name:   "Face",
			Weight: 1,
			Mask:   refMask,
			StateMachine: &asset.StateMachine{
				ID:   1,
				Name: "Face",
				EntryTransitions: []asset.Transition{{
					Destination: 2,
					Conditions:  []asset.Condition{{Mode: asset.ConditionIf, Parameter: "Nose_IsGrabbed"}},
				}},
				States: []*asset.State{
					{
						ID:             2,
						Name:           "Smiling",
						Motion:         asset.Motion{Clip: refSmile},
						SpeedParameter: "Smile",
						Transitions: []asset.Transition{{
							Conditions: []asset.Condition{{Mode: asset.ConditionEquals, Parameter: "GestureLeft", Threshold: 3}},
						}},
						Behaviours: []asset.Behaviour{
							{ParameterDriver: &asset.ParameterDriver{Entries: []asset.DriverEntry{
								{Type: "copy", Name: "Smile", Source: "Nose_IsGrabbed"},
							}}},
							{PlayAudio: &asset.PlayAudio{SourcePath: "Speaker", ParameterName: "Smile", Clips: []asset.Ref{refBeep}}},
						},
					},
					{ID: 3, Name: "Walking", Motion: asset.Motion{Tree: refTree}},
					{ID: 4, Name: "Walking Again", Motion: asset.Motion{Tree: refTree}},
					{
						ID:   5,
						Name: "Blending",
						Motion: asset.Motion{Inline: &asset.BlendTree{
							Name:           "Inline",
							BlendParameter: "Smile",
							Children:       []asset.ChildMotion{{Motion: asset.Motion{Clip: refProxy}}},
						}},
					},
				},
			},
		}},
	})
	put(refProp, &asset.Controller{
		Name:       "Prop",
		Parameters: []asset.Parameter{{Name: "Smile", Type: asset.ParameterFloat}},
		Layers: []asset.Layer{{
			Name:         "Spin",
			StateMachine: &asset.StateMachine{ID: 1, Name: "Spin", States: []*asset.State{{ID: 2, Name: "Spin", Motion: asset.Motion{Clip: refSmile}}}},
		}},
	})
	put(refParams, &asset.ExpressionParameters{
		Name: "Params",
		Parameters: []asset.ExpressionParameter{
			{Name: "Smile", ValueType: asset.ParameterFloat, Synced: true},
			{Name: "Nose_IsGrabbed", ValueType: asset.ParameterBool, Synced: true},
			{Name: "Unused", ValueType: asset.ParameterBool, Synced: true},
		},
	})
	put(refMenu, &asset.ExpressionsMenu{
		Name: "Menu",
		Controls: []asset.Control{
			{Name: "Smile", Type: asset.ControlRadialPuppet, SubParameters: []string{"Smile"}, Icon: refIcon},
			{Name: "More", Type: asset.ControlSubMenu, SubMenu: refSubMenu},
			{Name: "Stale", Type: asset.ControlToggle, Parameter: "Nose_IsGrabbed", SubMenu: refSubMenu},
		},
	})
	put(refSubMenu, &asset.ExpressionsMenu{
		Name: "SubMenu",
		Controls: []asset.Control{
			{Name: "Back", Type: asset.ControlSubMenu, SubMenu: refMenu, Icon: refIcon},
		},
	})
	require.NoError(t, s.Put(ctx, asset.Info{Ref: refDefaultMat, Path: string(refDefaultMat), BuiltIn: true}, &asset.Material{Name: "Default-Material"}))

	cfg := config.Default()
	cfg.ExposedParameters.SelectedParameterNames = []string{"Smile", "Nose_IsGrabbed", "Unused"}

	return &fixture{store: s, subject: subject(), cfg: cfg}
}

func subject() *scene.Node {
	return &scene.Node{
		Name: "Avatar",
		Descriptor: &scene.Descriptor{
			BaseLayers: []scene.PlayableLayer{
				{Type: "base", IsDefault: true},
				{Type: "fx", Controller: refFX},
			},
			SpecialLayers:        []scene.PlayableLayer{{Type: "sitting", IsDefault: true}},
			ExpressionParameters: refParams,
			ExpressionsMenu:      refMenu,
			VisemeBlendShapes:    []string{"vrc.v_aa", "vrc.v_missing"},
		},
		Animator: &scene.Animator{Avatar: refAvatar, Controller: refFX},
		Marker:   &scene.Marker{Config: config.Default()},
		Children: []*scene.Node{
			{
				Name: "Armature",
				Children: []*scene.Node{{
					Name: "Hips",
					Children: []*scene.Node{{
						Name: "Chest",
						Children: []*scene.Node{{
							Name:      "Nose",
							PhysBones: []*scene.PhysBone{{Parameter: "Nose"}},
						}},
					}},
				}},
			},
			{
				Name:                "Body",
				SkinnedMeshRenderer: &scene.SkinnedMeshRenderer{Mesh: refBodyMesh, Materials: []asset.Ref{refSkin}},
				ContactReceivers:    []*scene.ContactReceiver{{Parameter: "Smile"}},
			},
			{
				Name:                "Face",
				SkinnedMeshRenderer: &scene.SkinnedMeshRenderer{Mesh: refBodyMesh, Materials: []asset.Ref{refSkin, refAlt}},
			},
			{Name: "Speaker", AudioSources: []*scene.AudioSource{{Clip: refBeep}}},
			{Name: "Mirror", Camera: &scene.Camera{TargetTexture: refRenderTex}},
			{
				Name:     "Prop",
				Animator: &scene.Animator{Controller: refProp},
			},
		},
	}
}

// load reads a document from the fixture store.
func load[T asset.Asset](t *testing.T, f *fixture, ref asset.Ref) T {
	t.Helper()
	doc, err := asset.LoadAs[T](context.Background(), f.store, ref)
	require.NoError(t, err)
	return doc
}
