package engine

import (
	"context"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/naming"
	"github.com/veilkit/obfuscator/obferr"
	"github.com/veilkit/obfuscator/scene"
)

// Phase names, as reported to ProgressFunc and used in span names.
const (
	PhaseDuplicate   = "duplicate"
	PhaseHierarchy   = "hierarchy"
	PhaseAvatars     = "avatars"
	PhaseMeshes      = "meshes"
	PhaseMaterials   = "materials"
	PhaseGraphs      = "graphs"
	PhaseExpressions = "expressions"
	PhaseTextures    = "textures"
	PhaseAudio       = "audio"
	PhaseFinalize    = "finalize"
)

type phase struct {
	name     string
	progress float64
	enabled  func(cfg *config.Config) bool
	run      func(ctx context.Context, r *run) error
}

var phases = []phase{
	{name: PhaseDuplicate, progress: 0, run: duplicateRoot},
	{name: PhaseHierarchy, progress: 0.1, run: renameHierarchy},
	{name: PhaseAvatars, progress: 0.2, run: rebuildAvatars},
	{
		name: PhaseMeshes, progress: 0.3, run: cloneMeshes,
		enabled: func(cfg *config.Config) bool { return cfg.Meshes.Enabled },
	},
	{
		name: PhaseMaterials, progress: 0.4, run: cloneMaterials,
		enabled: func(cfg *config.Config) bool { return cfg.Materials.Enabled },
	},
	{name: PhaseGraphs, progress: 0.5, run: cloneGraphs},
	{
		name: PhaseExpressions, progress: 0.7, run: cloneExpressions,
		enabled: func(cfg *config.Config) bool { return cfg.ExposedParameters.Enabled },
	},
	{
		name: PhaseTextures, progress: 0.8, run: cloneTextures,
		enabled: (*config.Config).TexturesEnabled,
	},
	{
		name: PhaseAudio, progress: 0.9, run: cloneAudio,
		enabled: func(cfg *config.Config) bool { return cfg.ObfuscateAudio },
	},
	{name: PhaseFinalize, progress: 1, run: finalize},
}

// Phases returns the phase names in execution order.
func Phases() []string {
	names := make([]string, len(phases))
	for i, ph := range phases {
		names[i] = ph.name
	}
	return names
}

// Check reports the first structural problem of subject that would abort a
// run, without touching any store.
func Check(subject *scene.Node) error {
	if err := checkComponents(subject); err != nil {
		return err
	}
	_, _, err := collectAnimators(subject)
	return err
}

func checkComponents(subject *scene.Node) error {
	const op = "phase." + PhaseDuplicate
	switch {
	case subject == nil:
		return obferr.New(op, obferr.CodeMissingComponent, "no subject given")
	case subject.Descriptor == nil:
		return obferr.New(op, obferr.CodeMissingComponent, "subject has no descriptor")
	case subject.Animator == nil:
		return obferr.New(op, obferr.CodeMissingComponent, "subject has no animator")
	case subject.Animator.Avatar.IsZero():
		return obferr.New(op, obferr.CodeMissingComponent, "subject animator has no avatar")
	}
	return nil
}

// collectAnimators returns the nodes of root carrying an animator, parents
// first, with the armature marker below each. The root animator must have
// exactly one armature; the others at most one.
func collectAnimators(root *scene.Node) ([]*scene.Node, map[*scene.Node]*scene.Node, error) {
	const op = "phase." + PhaseDuplicate

	var (
		animators []*scene.Node
		err       error
	)
	armatures := make(map[*scene.Node]*scene.Node)
	root.Walk(func(n *scene.Node) bool {
		if err != nil || n.Animator == nil {
			return err == nil
		}
		found := n.Armatures()
		switch {
		case len(found) > 1:
			err = obferr.Newf(op, obferr.CodeMultipleArmatures, "node %q has %d armatures", n.Name, len(found))
		case len(found) == 1:
			armatures[n] = found[0]
		case n == root:
			err = obferr.New(op, obferr.CodeMissingArmature, "armature not found")
		}
		animators = append(animators, n)
		return err == nil
	})
	if err != nil {
		return nil, nil, err
	}
	return animators, armatures, nil
}

func duplicateRoot(ctx context.Context, r *run) error {
	const op = "phase." + PhaseDuplicate

	src := r.source
	if err := checkComponents(src); err != nil {
		return err
	}

	root := src.Clone()
	animators, armatures, err := collectAnimators(root)
	if err != nil {
		return err
	}
	r.animators = animators
	r.armatures = armatures

	r.token = r.mint()
	r.folder = asset.JoinPath(r.outputRoot, r.token)
	r.logger = r.logger.With("run", r.token)

	exists, err := r.store.ContainerExists(ctx, r.outputRoot)
	if err != nil {
		return obferr.New(op, obferr.CodeStoreFailed, "cannot check output container").WithCause(err)
	}
	if !exists {
		if err := r.store.CreateContainer(ctx, r.outputRoot); err != nil {
			return obferr.New(op, obferr.CodeStoreFailed, "cannot create output container").WithRef(r.outputRoot).WithCause(err)
		}
	}
	if err := r.store.CreateContainer(ctx, r.folder); err != nil {
		return obferr.New(op, obferr.CodeStoreFailed, "cannot create run folder").WithRef(r.folder).WithCause(err)
	}

	root.Name = r.token + RootSuffix
	root.Disabled = false
	src.Disabled = true
	r.root = root
	return nil
}

func renameHierarchy(_ context.Context, r *run) error {
	if !r.cfg.ObfuscateHierarchyLabels {
		return nil
	}
	var rename func(n *scene.Node)
	rename = func(n *scene.Node) {
		n.Name = r.names.Intern(naming.Transforms, n.Name)
		for _, child := range n.Children {
			rename(child)
		}
	}
	for _, child := range r.root.Children {
		if r.preservedNode(child.Name) {
			continue
		}
		rename(child)
	}
	return nil
}

func rebuildAvatars(ctx context.Context, r *run) error {
	for _, n := range r.animators {
		src := n.Animator.Avatar
		if src.IsZero() {
			continue
		}
		if dst, ok := r.clones.Get(asset.KindAvatar, src); ok {
			n.Animator.Avatar = dst
			continue
		}
		dst, err := r.rebuildAvatar(ctx, n, src)
		if err != nil {
			return err
		}
		n.Animator.Avatar = dst
	}
	return nil
}

func cloneMeshes(ctx context.Context, r *run) error {
	nodes := r.nodes()
	if r.cfg.PreserveSpecialLeafNames {
		for _, n := range nodes {
			if smr := n.SkinnedMeshRenderer; smr != nil && r.preservedNode(n.Name) && !smr.Mesh.IsZero() {
				r.keptShapes[smr.Mesh] = struct{}{}
			}
		}
	}

	for _, n := range nodes {
		if smr := n.SkinnedMeshRenderer; smr != nil {
			dst, err := r.cloneMesh(ctx, smr.Mesh)
			if err != nil {
				return err
			}
			smr.Mesh = dst
		}
		if mf := n.MeshFilter; mf != nil {
			dst, err := r.cloneMesh(ctx, mf.Mesh)
			if err != nil {
				return err
			}
			mf.Mesh = dst
		}
		if ps := n.ParticleSystem; ps != nil {
			var err error
			if ps.ShapeMesh, err = r.cloneMesh(ctx, ps.ShapeMesh); err != nil {
				return err
			}
			if ps.RendererMesh, err = r.cloneMesh(ctx, ps.RendererMesh); err != nil {
				return err
			}
		}
	}
	return rewriteVisemes(ctx, r)
}

// rewriteVisemes renames the descriptor's viseme shape keys along with the
// mesh that carries them. Without a declared viseme mesh, the mesh drawn by
// the top-level preserved-name node (the face body) is assumed.
func rewriteVisemes(ctx context.Context, r *run) error {
	d := r.root.Descriptor
	src := d.VisemeMesh
	if src.IsZero() {
		for _, child := range r.source.Children {
			if scene.IsPreservedName(child.Name) && child.SkinnedMeshRenderer != nil {
				src = child.SkinnedMeshRenderer.Mesh
				break
			}
		}
	} else {
		dst, err := r.cloneMesh(ctx, src)
		if err != nil {
			return err
		}
		d.VisemeMesh = dst
	}

	if !src.IsZero() && !r.shapesRenamed(src) {
		return nil
	}
	for i, name := range d.VisemeBlendShapes {
		if opaque, ok := r.names.TryGet(naming.BlendShapes, name); ok {
			d.VisemeBlendShapes[i] = opaque
		}
	}
	return nil
}

func cloneMaterials(ctx context.Context, r *run) error {
	for _, n := range r.nodes() {
		var lists [][]asset.Ref
		if smr := n.SkinnedMeshRenderer; smr != nil {
			lists = append(lists, smr.Materials)
		}
		if mr := n.MeshRenderer; mr != nil {
			lists = append(lists, mr.Materials)
		}
		if ps := n.ParticleSystem; ps != nil {
			lists = append(lists, ps.Materials)
		}
		for _, mats := range lists {
			for i, m := range mats {
				dst, err := r.cloneMaterial(ctx, m)
				if err != nil {
					return err
				}
				mats[i] = dst
			}
		}
	}
	return nil
}

func cloneTextures(ctx context.Context, r *run) error {
	for _, pair := range r.clones.Entries(asset.KindMaterial) {
		err := edit(ctx, r, pair.Target, func(m *asset.Material) error {
			for i, slot := range m.Textures {
				dst, err := r.cloneTexture(ctx, slot.Texture)
				if err != nil {
					return err
				}
				m.Textures[i].Texture = dst
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	for _, n := range r.nodes() {
		if cam := n.Camera; cam != nil {
			dst, err := r.cloneTexture(ctx, cam.TargetTexture)
			if err != nil {
				return err
			}
			cam.TargetTexture = dst
		}
	}
	return nil
}

func cloneAudio(ctx context.Context, r *run) error {
	for _, n := range r.nodes() {
		for _, src := range n.AudioSources {
			dst, err := r.cloneAudioClip(ctx, src.Clip)
			if err != nil {
				return err
			}
			src.Clip = dst
		}
	}
	return nil
}

func finalize(ctx context.Context, r *run) error {
	r.root.Walk(func(n *scene.Node) bool {
		n.Marker = nil
		return true
	})
	if err := r.store.Persist(ctx); err != nil {
		return obferr.New("phase."+PhaseFinalize, obferr.CodeStoreFailed, "cannot persist store").WithCause(err)
	}
	return nil
}

// playableLayers returns pointers to every playable layer of the descriptor.
func playableLayers(d *scene.Descriptor) []*scene.PlayableLayer {
	out := make([]*scene.PlayableLayer, 0, len(d.BaseLayers)+len(d.SpecialLayers))
	for i := range d.BaseLayers {
		out = append(out, &d.BaseLayers[i])
	}
	for i := range d.SpecialLayers {
		out = append(out, &d.SpecialLayers[i])
	}
	return out
}
