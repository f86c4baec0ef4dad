package engine

import (
	"context"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/naming"
	"github.com/veilkit/obfuscator/obferr"
	"github.com/veilkit/obfuscator/scene"
)

// cloneMesh clones a mesh. Shape keys are renamed when shape key
// obfuscation is on, unless a preserved renderer draws the mesh.
func (r *run) cloneMesh(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindMesh, src, func(ctx context.Context, dst asset.Ref) error {
		if _, keep := r.keptShapes[src]; keep || !r.cfg.ShapeKeysEnabled() {
			return nil
		}
		r.renamedShapes[src] = struct{}{}
		return edit(ctx, r, dst, func(m *asset.Mesh) error {
			for i := range m.BlendShapes {
				m.BlendShapes[i].Name = r.names.Intern(naming.BlendShapes, m.BlendShapes[i].Name)
			}
			return nil
		})
	})
}

// shapesRenamed reports whether the clone of the source mesh src had its
// shape keys renamed.
func (r *run) shapesRenamed(src asset.Ref) bool {
	_, ok := r.renamedShapes[src]
	return ok
}

// cloneMaterial clones a material. Its textures are handled by the
// textures phase once every material has been collected.
func (r *run) cloneMaterial(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindMaterial, src, nil)
}

func (r *run) cloneTexture(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindTexture, src, nil)
}

func (r *run) cloneAudioClip(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindAudioClip, src, nil)
}

// rebuildAvatar creates a new rig avatar for the animator on n from the
// renamed hierarchy. Avatars embed node names by value, so the source cannot
// simply be duplicated.
func (r *run) rebuildAvatar(ctx context.Context, n *scene.Node, src asset.Ref) (asset.Ref, error) {
	const op = "phase." + PhaseAvatars

	av, err := load[*asset.Avatar](ctx, r, src)
	if err != nil {
		return "", err
	}
	if !av.Valid {
		return "", obferr.Newf(op, obferr.CodeInvalidAvatar, "avatar %q is invalid", av.Name).WithRef(string(src))
	}

	var built *asset.Avatar
	if av.Human {
		built = r.humanAvatar(n, av)
		scope := n
		if armature := r.armatures[n]; armature != nil {
			scope = armature
		}
		if missing := missingBone(scope, built); missing != "" {
			return "", obferr.Newf(op, obferr.CodeInvalidAvatar, "rebuilt avatar %q has no node for bone %q", av.Name, missing).WithRef(string(src))
		}
	} else {
		built = genericAvatar(n)
	}

	dst, err := r.store.Create(ctx, r.outputPath(asset.KindAvatar, ""), built)
	if err != nil {
		return "", obferr.Newf(op, obferr.CodeStoreFailed, "cannot store rebuilt avatar %q", av.Name).WithRef(string(src)).WithCause(err)
	}
	r.clones.Put(asset.KindAvatar, src, dst)
	r.metrics.cloned(ctx, asset.KindAvatar)
	return dst, nil
}

// humanAvatar maps every bone of av onto the renamed hierarchy. The first
// skeleton bone is the animator's own node.
func (r *run) humanAvatar(n *scene.Node, av *asset.Avatar) *asset.Avatar {
	out := &asset.Avatar{
		Name:        av.Name,
		Valid:       true,
		Human:       true,
		Description: av.Description,
		Skeleton:    make([]asset.SkeletonBone, len(av.Skeleton)),
		HumanBones:  make([]asset.HumanBone, len(av.HumanBones)),
	}
	present := nodeNames(r.root)
	for i, bone := range av.Skeleton {
		if i == 0 {
			bone.Name = n.Name
		} else {
			bone.Name = r.boneName(present, bone.Name)
		}
		out.Skeleton[i] = bone
	}
	for i, bone := range av.HumanBones {
		bone.BoneName = r.boneName(present, bone.BoneName)
		out.HumanBones[i] = bone
	}
	return out
}

// boneName maps a source bone name onto the renamed hierarchy. Names still
// present there (preserved subtrees, hierarchy renaming off) are kept. Bones
// with no node get a fresh token that is not recorded, so paths into them
// stay unresolved.
func (r *run) boneName(present map[string]struct{}, name string) string {
	if _, ok := present[name]; ok {
		return name
	}
	if opaque, ok := r.nodeName(name); ok {
		return opaque
	}
	return r.mint()
}

func nodeNames(n *scene.Node) map[string]struct{} {
	out := make(map[string]struct{})
	n.Walk(func(node *scene.Node) bool {
		out[node.Name] = struct{}{}
		return true
	})
	return out
}

// genericAvatar builds a non-humanoid avatar with one bone per node below n.
func genericAvatar(n *scene.Node) *asset.Avatar {
	out := &asset.Avatar{Name: n.Name, Valid: true}
	n.Walk(func(node *scene.Node) bool {
		out.Skeleton = append(out.Skeleton, asset.SkeletonBone{
			Name:     node.Name,
			Rotation: asset.Quat{0, 0, 0, 1},
			Scale:    asset.Vec3{1, 1, 1},
		})
		return true
	})
	return out
}

// missingBone returns the first human bone of av that names no node in the
// subtree of n.
func missingBone(n *scene.Node, av *asset.Avatar) string {
	present := nodeNames(n)
	for _, bone := range av.HumanBones {
		if _, ok := present[bone.BoneName]; !ok {
			return bone.BoneName
		}
	}
	return ""
}
