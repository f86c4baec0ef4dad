package asset

// Asset is implemented by every asset document.
type Asset interface {
	AssetKind() Kind
	AssetName() string
	SetAssetName(name string)
}

// Vec3 is a 3-component vector.
type Vec3 [3]float32

// Quat is a rotation quaternion (x, y, z, w).
type Quat [4]float32

// Mesh is a geometry asset with optional shape keys.
type Mesh struct {
	Name        string       `cbor:"name" yaml:"name"`
	VertexCount int          `cbor:"vertex_count" yaml:"vertex_count"`
	BlendShapes []BlendShape `cbor:"blend_shapes,omitempty" yaml:"blend_shapes,omitempty"`
}

// BlendShape is a named shape key.
type BlendShape struct {
	Name   string            `cbor:"name" yaml:"name"`
	Frames []BlendShapeFrame `cbor:"frames,omitempty" yaml:"frames,omitempty"`
}

// BlendShapeFrame is one weighted frame of a shape key.
type BlendShapeFrame struct {
	Weight        float32 `cbor:"weight" yaml:"weight"`
	DeltaVertices []Vec3  `cbor:"delta_vertices,omitempty" yaml:"delta_vertices,omitempty"`
	DeltaNormals  []Vec3  `cbor:"delta_normals,omitempty" yaml:"delta_normals,omitempty"`
	DeltaTangents []Vec3  `cbor:"delta_tangents,omitempty" yaml:"delta_tangents,omitempty"`
}

// Material binds a shader to textures.
type Material struct {
	Name     string        `cbor:"name" yaml:"name"`
	Shader   string        `cbor:"shader" yaml:"shader"`
	Textures []TextureSlot `cbor:"textures,omitempty" yaml:"textures,omitempty"`
}

// TextureSlot is one texture property of a material.
type TextureSlot struct {
	Property string `cbor:"property" yaml:"property"`
	Texture  Ref    `cbor:"texture,omitempty" yaml:"texture,omitempty"`
}

// Texture is an image or render target.
type Texture struct {
	Name         string `cbor:"name" yaml:"name"`
	Width        int    `cbor:"width" yaml:"width"`
	Height       int    `cbor:"height" yaml:"height"`
	RenderTarget bool   `cbor:"render_target,omitempty" yaml:"render_target,omitempty"`
	Data         []byte `cbor:"data,omitempty" yaml:"data,omitempty"`
}

// AudioClip is a sound asset.
type AudioClip struct {
	Name      string `cbor:"name" yaml:"name"`
	Channels  int    `cbor:"channels" yaml:"channels"`
	Frequency int    `cbor:"frequency" yaml:"frequency"`
	Data      []byte `cbor:"data,omitempty" yaml:"data,omitempty"`
}

// Keyframe is one key of a float curve.
type Keyframe struct {
	Time  float32 `cbor:"time" yaml:"time"`
	Value float32 `cbor:"value" yaml:"value"`
}

// Curve animates a float property of the node at Path. An empty Path binds
// to the animator itself, where Property names a behavior-graph parameter.
type Curve struct {
	Path     string     `cbor:"path" yaml:"path"`
	Type     string     `cbor:"type" yaml:"type"`
	Property string     `cbor:"property" yaml:"property"`
	Keys     []Keyframe `cbor:"keys,omitempty" yaml:"keys,omitempty"`
}

// ObjectKeyframe is one key of an object reference curve.
type ObjectKeyframe struct {
	Time      float32 `cbor:"time" yaml:"time"`
	Value     Ref     `cbor:"value,omitempty" yaml:"value,omitempty"`
	ValueKind Kind    `cbor:"value_kind,omitempty" yaml:"value_kind,omitempty"`
}

// ObjectCurve swaps object references (materials, sprites) over time.
type ObjectCurve struct {
	Path     string           `cbor:"path" yaml:"path"`
	Type     string           `cbor:"type" yaml:"type"`
	Property string           `cbor:"property" yaml:"property"`
	Keys     []ObjectKeyframe `cbor:"keys,omitempty" yaml:"keys,omitempty"`
}

// BlendShapePropertyPrefix prefixes curve properties that drive shape keys.
const BlendShapePropertyPrefix = "blendShape."

// AnimationClip is a set of curves.
type AnimationClip struct {
	Name         string        `cbor:"name" yaml:"name"`
	Length       float32       `cbor:"length" yaml:"length"`
	Curves       []Curve       `cbor:"curves,omitempty" yaml:"curves,omitempty"`
	ObjectCurves []ObjectCurve `cbor:"object_curves,omitempty" yaml:"object_curves,omitempty"`
}

// Motion is what a state or blend-tree child plays: a clip, a standalone
// blend tree asset, or a blend tree embedded in its controller.
type Motion struct {
	Clip   Ref        `cbor:"clip,omitempty" yaml:"clip,omitempty"`
	Tree   Ref        `cbor:"tree,omitempty" yaml:"tree,omitempty"`
	Inline *BlendTree `cbor:"inline,omitempty" yaml:"inline,omitempty"`
}

// IsZero reports whether m plays nothing.
func (m Motion) IsZero() bool {
	return m.Clip.IsZero() && m.Tree.IsZero() && m.Inline == nil
}

// ChildMotion is one child of a blend tree.
type ChildMotion struct {
	Motion               Motion  `cbor:"motion" yaml:"motion"`
	Threshold            float32 `cbor:"threshold" yaml:"threshold"`
	DirectBlendParameter string  `cbor:"direct_blend_parameter,omitempty" yaml:"direct_blend_parameter,omitempty"`
}

// BlendTree blends child motions by parameters.
type BlendTree struct {
	Name            string        `cbor:"name" yaml:"name"`
	BlendType       string        `cbor:"blend_type" yaml:"blend_type"`
	BlendParameter  string        `cbor:"blend_parameter,omitempty" yaml:"blend_parameter,omitempty"`
	BlendParameterY string        `cbor:"blend_parameter_y,omitempty" yaml:"blend_parameter_y,omitempty"`
	Children        []ChildMotion `cbor:"children,omitempty" yaml:"children,omitempty"`
}

// MaskTransform enables or disables one hierarchy path in a mask.
type MaskTransform struct {
	Path   string `cbor:"path" yaml:"path"`
	Active bool   `cbor:"active" yaml:"active"`
}

// AvatarMask restricts a layer to part of the hierarchy.
type AvatarMask struct {
	Name       string          `cbor:"name" yaml:"name"`
	Transforms []MaskTransform `cbor:"transforms,omitempty" yaml:"transforms,omitempty"`
}

// Parameter types of a controller.
const (
	ParameterFloat   = "float"
	ParameterInt     = "int"
	ParameterBool    = "bool"
	ParameterTrigger = "trigger"
)

// Parameter is a named controller input.
type Parameter struct {
	Name    string  `cbor:"name" yaml:"name"`
	Type    string  `cbor:"type" yaml:"type"`
	Default float32 `cbor:"default,omitempty" yaml:"default,omitempty"`
}

// Condition modes of a transition.
const (
	ConditionIf       = "if"
	ConditionIfNot    = "if_not"
	ConditionGreater  = "greater"
	ConditionLess     = "less"
	ConditionEquals   = "equals"
	ConditionNotEqual = "not_equal"
)

// Condition gates a transition on a parameter.
type Condition struct {
	Mode      string  `cbor:"mode" yaml:"mode"`
	Parameter string  `cbor:"parameter" yaml:"parameter"`
	Threshold float32 `cbor:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Transition moves to the state or state machine with ID Destination.
// Zero means exit.
type Transition struct {
	Destination int64       `cbor:"destination,omitempty" yaml:"destination,omitempty"`
	Duration    float32     `cbor:"duration,omitempty" yaml:"duration,omitempty"`
	Conditions  []Condition `cbor:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// DriverEntry is one operation of a parameter driver.
type DriverEntry struct {
	Type   string  `cbor:"type" yaml:"type"`
	Name   string  `cbor:"name" yaml:"name"`
	Source string  `cbor:"source,omitempty" yaml:"source,omitempty"`
	Value  float32 `cbor:"value,omitempty" yaml:"value,omitempty"`
}

// ParameterDriver sets parameters when its state is entered.
type ParameterDriver struct {
	LocalOnly bool          `cbor:"local_only,omitempty" yaml:"local_only,omitempty"`
	Entries   []DriverEntry `cbor:"entries,omitempty" yaml:"entries,omitempty"`
}

// PlayAudio plays clips on the audio source at SourcePath.
type PlayAudio struct {
	SourcePath    string `cbor:"source_path,omitempty" yaml:"source_path,omitempty"`
	ParameterName string `cbor:"parameter_name,omitempty" yaml:"parameter_name,omitempty"`
	Clips         []Ref  `cbor:"clips,omitempty" yaml:"clips,omitempty"`
}

// Behaviour is a script attached to a state or state machine. Exactly one
// field is set; Other keeps behaviours the obfuscator does not rewrite.
type Behaviour struct {
	ParameterDriver *ParameterDriver `cbor:"parameter_driver,omitempty" yaml:"parameter_driver,omitempty"`
	PlayAudio       *PlayAudio       `cbor:"play_audio,omitempty" yaml:"play_audio,omitempty"`
	Other           string           `cbor:"other,omitempty" yaml:"other,omitempty"`
}

// State plays a motion.
type State struct {
	ID                   int64        `cbor:"id" yaml:"id"`
	Name                 string       `cbor:"name" yaml:"name"`
	Motion               Motion       `cbor:"motion" yaml:"motion"`
	Speed                float32      `cbor:"speed,omitempty" yaml:"speed,omitempty"`
	SpeedParameter       string       `cbor:"speed_parameter,omitempty" yaml:"speed_parameter,omitempty"`
	CycleOffsetParameter string       `cbor:"cycle_offset_parameter,omitempty" yaml:"cycle_offset_parameter,omitempty"`
	MirrorParameter      string       `cbor:"mirror_parameter,omitempty" yaml:"mirror_parameter,omitempty"`
	TimeParameter        string       `cbor:"time_parameter,omitempty" yaml:"time_parameter,omitempty"`
	Transitions          []Transition `cbor:"transitions,omitempty" yaml:"transitions,omitempty"`
	Behaviours           []Behaviour  `cbor:"behaviours,omitempty" yaml:"behaviours,omitempty"`
}

// StateMachine groups states and nested state machines.
type StateMachine struct {
	ID                  int64           `cbor:"id" yaml:"id"`
	Name                string          `cbor:"name" yaml:"name"`
	DefaultState        int64           `cbor:"default_state,omitempty" yaml:"default_state,omitempty"`
	EntryTransitions    []Transition    `cbor:"entry_transitions,omitempty" yaml:"entry_transitions,omitempty"`
	AnyStateTransitions []Transition    `cbor:"any_state_transitions,omitempty" yaml:"any_state_transitions,omitempty"`
	Behaviours          []Behaviour     `cbor:"behaviours,omitempty" yaml:"behaviours,omitempty"`
	States              []*State        `cbor:"states,omitempty" yaml:"states,omitempty"`
	StateMachines       []*StateMachine `cbor:"state_machines,omitempty" yaml:"state_machines,omitempty"`
}

// Layer is one layer of a controller.
type Layer struct {
	Name         string        `cbor:"name" yaml:"name"`
	Weight       float32       `cbor:"weight" yaml:"weight"`
	Mask         Ref           `cbor:"mask,omitempty" yaml:"mask,omitempty"`
	StateMachine *StateMachine `cbor:"state_machine,omitempty" yaml:"state_machine,omitempty"`
}

// Controller is a behavior graph.
type Controller struct {
	Name       string      `cbor:"name" yaml:"name"`
	Parameters []Parameter `cbor:"parameters,omitempty" yaml:"parameters,omitempty"`
	Layers     []Layer     `cbor:"layers,omitempty" yaml:"layers,omitempty"`
}

// Menu control types.
const (
	ControlButton         = "button"
	ControlToggle         = "toggle"
	ControlSubMenu        = "sub_menu"
	ControlTwoAxisPuppet  = "two_axis_puppet"
	ControlFourAxisPuppet = "four_axis_puppet"
	ControlRadialPuppet   = "radial_puppet"
)

// Control is one entry of an expressions menu. Its Name is the label shown
// to users and is kept.
type Control struct {
	Name          string   `cbor:"name" yaml:"name"`
	Type          string   `cbor:"type" yaml:"type"`
	Parameter     string   `cbor:"parameter,omitempty" yaml:"parameter,omitempty"`
	SubParameters []string `cbor:"sub_parameters,omitempty" yaml:"sub_parameters,omitempty"`
	Value         float32  `cbor:"value,omitempty" yaml:"value,omitempty"`
	Icon          Ref      `cbor:"icon,omitempty" yaml:"icon,omitempty"`
	SubMenu       Ref      `cbor:"sub_menu,omitempty" yaml:"sub_menu,omitempty"`
}

// ExpressionsMenu is the exposed control surface.
type ExpressionsMenu struct {
	Name     string    `cbor:"name" yaml:"name"`
	Controls []Control `cbor:"controls,omitempty" yaml:"controls,omitempty"`
}

// ExpressionParameter is one exposed, synced parameter.
type ExpressionParameter struct {
	Name      string  `cbor:"name" yaml:"name"`
	ValueType string  `cbor:"value_type" yaml:"value_type"`
	Default   float32 `cbor:"default,omitempty" yaml:"default,omitempty"`
	Saved     bool    `cbor:"saved,omitempty" yaml:"saved,omitempty"`
	Synced    bool    `cbor:"synced,omitempty" yaml:"synced,omitempty"`
}

// ExpressionParameters is the list of exposed parameters.
type ExpressionParameters struct {
	Name       string                `cbor:"name" yaml:"name"`
	Parameters []ExpressionParameter `cbor:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// SkeletonBone is one bone of a rig by node name.
type SkeletonBone struct {
	Name     string `cbor:"name" yaml:"name"`
	Position Vec3   `cbor:"position" yaml:"position"`
	Rotation Quat   `cbor:"rotation" yaml:"rotation"`
	Scale    Vec3   `cbor:"scale" yaml:"scale"`
}

// HumanBone maps a node name to a humanoid bone.
type HumanBone struct {
	BoneName  string `cbor:"bone_name" yaml:"bone_name"`
	HumanName string `cbor:"human_name" yaml:"human_name"`
}

// HumanDescription holds the humanoid tuning values of a rig.
type HumanDescription struct {
	ArmStretch        float32 `cbor:"arm_stretch" yaml:"arm_stretch"`
	LegStretch        float32 `cbor:"leg_stretch" yaml:"leg_stretch"`
	UpperArmTwist     float32 `cbor:"upper_arm_twist" yaml:"upper_arm_twist"`
	LowerArmTwist     float32 `cbor:"lower_arm_twist" yaml:"lower_arm_twist"`
	UpperLegTwist     float32 `cbor:"upper_leg_twist" yaml:"upper_leg_twist"`
	LowerLegTwist     float32 `cbor:"lower_leg_twist" yaml:"lower_leg_twist"`
	FeetSpacing       float32 `cbor:"feet_spacing" yaml:"feet_spacing"`
	HasTranslationDoF bool    `cbor:"has_translation_dof" yaml:"has_translation_dof"`
}

// Avatar is the rig descriptor of an animator. It embeds node names by
// value and must be rebuilt after the hierarchy is renamed.
type Avatar struct {
	Name        string           `cbor:"name" yaml:"name"`
	Valid       bool             `cbor:"valid" yaml:"valid"`
	Human       bool             `cbor:"human" yaml:"human"`
	Skeleton    []SkeletonBone   `cbor:"skeleton,omitempty" yaml:"skeleton,omitempty"`
	HumanBones  []HumanBone      `cbor:"human_bones,omitempty" yaml:"human_bones,omitempty"`
	Description HumanDescription `cbor:"description" yaml:"description"`
}

func (*Mesh) AssetKind() Kind                 { return KindMesh }
func (*Material) AssetKind() Kind             { return KindMaterial }
func (*Texture) AssetKind() Kind              { return KindTexture }
func (*AudioClip) AssetKind() Kind            { return KindAudioClip }
func (*AnimationClip) AssetKind() Kind        { return KindAnimationClip }
func (*BlendTree) AssetKind() Kind            { return KindBlendTree }
func (*AvatarMask) AssetKind() Kind           { return KindAvatarMask }
func (*Controller) AssetKind() Kind           { return KindController }
func (*ExpressionsMenu) AssetKind() Kind      { return KindMenu }
func (*ExpressionParameters) AssetKind() Kind { return KindParameters }
func (*Avatar) AssetKind() Kind               { return KindAvatar }

func (a *Mesh) AssetName() string                 { return a.Name }
func (a *Material) AssetName() string             { return a.Name }
func (a *Texture) AssetName() string              { return a.Name }
func (a *AudioClip) AssetName() string            { return a.Name }
func (a *AnimationClip) AssetName() string        { return a.Name }
func (a *BlendTree) AssetName() string            { return a.Name }
func (a *AvatarMask) AssetName() string           { return a.Name }
func (a *Controller) AssetName() string           { return a.Name }
func (a *ExpressionsMenu) AssetName() string      { return a.Name }
func (a *ExpressionParameters) AssetName() string { return a.Name }
func (a *Avatar) AssetName() string               { return a.Name }

func (a *Mesh) SetAssetName(name string)                 { a.Name = name }
func (a *Material) SetAssetName(name string)             { a.Name = name }
func (a *Texture) SetAssetName(name string)              { a.Name = name }
func (a *AudioClip) SetAssetName(name string)            { a.Name = name }
func (a *AnimationClip) SetAssetName(name string)        { a.Name = name }
func (a *BlendTree) SetAssetName(name string)            { a.Name = name }
func (a *AvatarMask) SetAssetName(name string)           { a.Name = name }
func (a *Controller) SetAssetName(name string)           { a.Name = name }
func (a *ExpressionsMenu) SetAssetName(name string)      { a.Name = name }
func (a *ExpressionParameters) SetAssetName(name string) { a.Name = name }
func (a *Avatar) SetAssetName(name string)               { a.Name = name }

// New returns an empty document of kind, or nil for an unknown kind.
func New(kind Kind) Asset {
	switch kind {
	case KindMesh:
		return &Mesh{}
	case KindMaterial:
		return &Material{}
	case KindTexture:
		return &Texture{}
	case KindAudioClip:
		return &AudioClip{}
	case KindAnimationClip:
		return &AnimationClip{}
	case KindBlendTree:
		return &BlendTree{}
	case KindAvatarMask:
		return &AvatarMask{}
	case KindController:
		return &Controller{}
	case KindMenu:
		return &ExpressionsMenu{}
	case KindParameters:
		return &ExpressionParameters{}
	case KindAvatar:
		return &Avatar{}
	}
	return nil
}
