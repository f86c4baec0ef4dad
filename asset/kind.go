package asset

import (
	"fmt"
	"path"
	"strings"
)

// Kind identifies the type of an asset document.
type Kind string

// Asset kinds.
const (
	KindMesh          Kind = "mesh"
	KindMaterial      Kind = "material"
	KindTexture       Kind = "texture"
	KindAudioClip     Kind = "audio"
	KindAnimationClip Kind = "clip"
	KindBlendTree     Kind = "blendtree"
	KindAvatarMask    Kind = "mask"
	KindController    Kind = "controller"
	KindMenu          Kind = "menu"
	KindParameters    Kind = "parameters"
	KindAvatar        Kind = "avatar"
)

// Kinds lists every asset kind.
var Kinds = []Kind{
	KindMesh,
	KindMaterial,
	KindTexture,
	KindAudioClip,
	KindAnimationClip,
	KindBlendTree,
	KindAvatarMask,
	KindController,
	KindMenu,
	KindParameters,
	KindAvatar,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Ref is an opaque handle to an asset. The zero value means "no asset".
type Ref string

// IsZero reports whether r is empty.
func (r Ref) IsZero() bool {
	return r == ""
}

func (r Ref) String() string {
	return string(r)
}

// Info describes a stored asset without loading it.
type Info struct {
	Ref  Ref    `json:"ref" yaml:"ref"`
	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`

	// Path is the storage path. Empty for assets that only exist in memory.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// BuiltIn marks assets shipped with the host engine.
	BuiltIn bool `json:"built_in,omitempty" yaml:"built_in,omitempty"`

	// Unreadable marks assets whose content cannot be read back (meshes
	// imported without read access).
	Unreadable bool `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
}

// ProxyClipMarker identifies animation clips provided by the host runtime
// as placeholders. They are referenced as is and never cloned.
const ProxyClipMarker = "ProxyAnim/proxy_"

// IsProxyClip reports whether storagePath points at a host proxy clip.
func IsProxyClip(storagePath string) bool {
	return strings.Contains(storagePath, ProxyClipMarker)
}

// builtInMarkers are storage path fragments of host built-in resources.
var builtInMarkers = []string{
	"unity default resources",
	"unity_builtin",
}

// IsBuiltInPath reports whether storagePath points into host built-in resources.
func IsBuiltInPath(storagePath string) bool {
	for _, marker := range builtInMarkers {
		if strings.Contains(storagePath, marker) {
			return true
		}
	}
	return false
}

// Extension returns the file extension used for a clone of kind. Textures
// and audio clips keep the extension of their source so the host can
// re-import them.
func Extension(kind Kind, sourcePath string) string {
	switch kind {
	case KindController:
		return ".controller"
	case KindAnimationClip:
		return ".anim"
	case KindAvatarMask:
		return ".mask"
	case KindMaterial:
		return ".mat"
	case KindTexture, KindAudioClip:
		return path.Ext(sourcePath)
	default:
		return ".asset"
	}
}

// JoinPath joins container and name with the store path separator.
func JoinPath(elem ...string) string {
	return path.Join(elem...)
}

// ParentPath returns the container of p. Top-level paths return "", the
// store root.
func ParentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Within reports whether p lies below container. Every path lies below the
// store root "".
func Within(p, container string) bool {
	if container == "" {
		return true
	}
	return strings.HasPrefix(p, container+"/")
}

// CheckPath rejects paths a store cannot hold: empty, absolute, unclean or
// escaping the store root.
func CheckPath(p string) error {
	switch {
	case p == "":
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	case strings.HasPrefix(p, "/"):
		return fmt.Errorf("%w: %q is absolute", ErrInvalidPath, p)
	case path.Clean(p) != p:
		return fmt.Errorf("%w: %q is not clean", ErrInvalidPath, p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return fmt.Errorf("%w: %q escapes the store", ErrInvalidPath, p)
	}
	return nil
}
