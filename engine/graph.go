package engine

import (
	"context"
	"strings"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/naming"
	"github.com/veilkit/obfuscator/obferr"
)

// cloneGraphs clones the controllers of the playable layers and of every
// animator below the root.
func cloneGraphs(ctx context.Context, r *run) error {
	rootAnimator := r.root.Animator
	rootReplaced := false

	for _, layer := range playableLayers(r.root.Descriptor) {
		if layer.Controller.IsZero() {
			continue
		}
		dst, err := r.cloneController(ctx, layer.Controller)
		if err != nil {
			return err
		}
		if rootAnimator.Controller == layer.Controller {
			rootAnimator.Controller = dst
			rootReplaced = true
		}
		layer.Controller = dst
	}

	if !rootAnimator.Controller.IsZero() && !rootReplaced {
		r.warn(ctx, obferr.Diagnostic{
			Code:    obferr.DiagForeignController,
			Message: "root animator controller is not one of the playable layers and was left unchanged",
			Ref:     string(rootAnimator.Controller),
		})
	}

	for _, n := range r.animators {
		if n == r.root || n.Animator.Controller.IsZero() {
			continue
		}
		dst, err := r.cloneController(ctx, n.Animator.Controller)
		if err != nil {
			return err
		}
		n.Animator.Controller = dst
	}
	return nil
}

// cloneController clones a behavior graph with everything it references.
// Layer, state machine and state names carry no references and always get
// fresh names.
func (r *run) cloneController(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindController, src, func(ctx context.Context, dst asset.Ref) error {
		return edit(ctx, r, dst, func(c *asset.Controller) error {
			for i := range c.Parameters {
				c.Parameters[i].Name = r.params.Resolve(c.Parameters[i].Name)
			}
			for i := range c.Layers {
				layer := &c.Layers[i]
				layer.Name = r.mint()

				mask, err := r.cloneMask(ctx, layer.Mask)
				if err != nil {
					return err
				}
				layer.Mask = mask

				if err := r.walkStateMachine(ctx, dst, layer.StateMachine); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (r *run) walkStateMachine(ctx context.Context, owner asset.Ref, sm *asset.StateMachine) error {
	if sm == nil {
		return nil
	}
	sm.Name = r.mint()
	r.rewriteTransitions(sm.EntryTransitions)
	r.rewriteTransitions(sm.AnyStateTransitions)
	if err := r.rewriteBehaviours(ctx, owner, sm.Behaviours); err != nil {
		return err
	}
	for _, state := range sm.States {
		if err := r.walkState(ctx, owner, state); err != nil {
			return err
		}
	}
	for _, child := range sm.StateMachines {
		if err := r.walkStateMachine(ctx, owner, child); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) walkState(ctx context.Context, owner asset.Ref, s *asset.State) error {
	if s == nil {
		return nil
	}
	s.Name = r.mint()
	s.CycleOffsetParameter = r.params.Resolve(s.CycleOffsetParameter)
	s.MirrorParameter = r.params.Resolve(s.MirrorParameter)
	s.SpeedParameter = r.params.Resolve(s.SpeedParameter)
	s.TimeParameter = r.params.Resolve(s.TimeParameter)
	r.rewriteTransitions(s.Transitions)
	if err := r.rewriteBehaviours(ctx, owner, s.Behaviours); err != nil {
		return err
	}
	return r.rewriteMotion(ctx, &s.Motion)
}

func (r *run) rewriteTransitions(transitions []asset.Transition) {
	for i := range transitions {
		conds := transitions[i].Conditions
		for j := range conds {
			conds[j].Parameter = r.params.Resolve(conds[j].Parameter)
		}
	}
}

func (r *run) rewriteBehaviours(ctx context.Context, owner asset.Ref, behaviours []asset.Behaviour) error {
	for _, b := range behaviours {
		if d := b.ParameterDriver; d != nil {
			for i := range d.Entries {
				d.Entries[i].Name = r.params.Resolve(d.Entries[i].Name)
				d.Entries[i].Source = r.params.Resolve(d.Entries[i].Source)
			}
		}
		if a := b.PlayAudio; a != nil {
			a.SourcePath = r.rewritePath(ctx, a.SourcePath, owner)
			a.ParameterName = r.params.Resolve(a.ParameterName)
			if r.cfg.ObfuscateAudio {
				for i, clip := range a.Clips {
					dst, err := r.cloneAudioClip(ctx, clip)
					if err != nil {
						return err
					}
					a.Clips[i] = dst
				}
			}
		}
	}
	return nil
}

// rewriteMotion points m at the clones of its clip or standalone tree, or
// rewrites its embedded tree in place.
func (r *run) rewriteMotion(ctx context.Context, m *asset.Motion) error {
	var err error
	switch {
	case m.Inline != nil:
		err = r.rewriteBlendTree(ctx, m.Inline)
	case !m.Tree.IsZero():
		m.Tree, err = r.cloneBlendTree(ctx, m.Tree)
	case !m.Clip.IsZero():
		m.Clip, err = r.cloneClip(ctx, m.Clip)
	}
	return err
}

// cloneBlendTree clones a standalone blend tree. Trees shared by several
// states or nested in each other are cloned once.
func (r *run) cloneBlendTree(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindBlendTree, src, func(ctx context.Context, dst asset.Ref) error {
		return edit(ctx, r, dst, func(t *asset.BlendTree) error {
			return r.rewriteBlendTree(ctx, t)
		})
	})
}

func (r *run) rewriteBlendTree(ctx context.Context, t *asset.BlendTree) error {
	t.Name = r.mint()
	t.BlendParameter = r.params.Resolve(t.BlendParameter)
	t.BlendParameterY = r.params.Resolve(t.BlendParameterY)
	for i := range t.Children {
		child := &t.Children[i]
		if err := r.rewriteMotion(ctx, &child.Motion); err != nil {
			return err
		}
		child.DirectBlendParameter = r.params.Resolve(child.DirectBlendParameter)
	}
	return nil
}

// cloneClip clones an animation clip and rebinds its curves to the renamed
// hierarchy, shape keys and parameters.
func (r *run) cloneClip(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindAnimationClip, src, func(ctx context.Context, dst asset.Ref) error {
		return edit(ctx, r, dst, func(clip *asset.AnimationClip) error {
			for i := range clip.Curves {
				r.rebindCurve(ctx, dst, &clip.Curves[i])
			}
			for i := range clip.ObjectCurves {
				if err := r.rebindObjectCurve(ctx, dst, &clip.ObjectCurves[i]); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (r *run) rebindCurve(ctx context.Context, owner asset.Ref, c *asset.Curve) {
	if c.Path == "" {
		// Animator curves drive parameters; only already renamed ones are
		// rebound, the rest are properties of the animator itself.
		if opaque, ok := r.params.Lookup(c.Property); ok {
			c.Property = opaque
		}
		return
	}
	if r.paths.Preserved(c.Path) {
		return
	}
	target := r.source.Find(c.Path)
	c.Path = r.rewritePath(ctx, c.Path, owner)

	shape, ok := strings.CutPrefix(c.Property, asset.BlendShapePropertyPrefix)
	if !ok || !r.cfg.ShapeKeysEnabled() {
		return
	}
	if target != nil && target.SkinnedMeshRenderer != nil && !r.shapesRenamed(target.SkinnedMeshRenderer.Mesh) {
		// The renderer's mesh kept its shape key names.
		return
	}
	c.Property = asset.BlendShapePropertyPrefix + r.names.Intern(naming.BlendShapes, shape)
}

func (r *run) rebindObjectCurve(ctx context.Context, owner asset.Ref, c *asset.ObjectCurve) error {
	if c.Path == "" || r.paths.Preserved(c.Path) {
		return nil
	}
	c.Path = r.rewritePath(ctx, c.Path, owner)
	if !r.cfg.Materials.Enabled {
		return nil
	}
	for i := range c.Keys {
		if c.Keys[i].ValueKind != asset.KindMaterial {
			continue
		}
		dst, err := r.cloneMaterial(ctx, c.Keys[i].Value)
		if err != nil {
			return err
		}
		c.Keys[i].Value = dst
	}
	return nil
}

// cloneMask clones an avatar mask and rewrites its transform paths.
func (r *run) cloneMask(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindAvatarMask, src, func(ctx context.Context, dst asset.Ref) error {
		return edit(ctx, r, dst, func(m *asset.AvatarMask) error {
			for i := range m.Transforms {
				p := m.Transforms[i].Path
				if p == "" || r.paths.Preserved(p) {
					continue
				}
				m.Transforms[i].Path = r.rewritePath(ctx, p, dst)
			}
			return nil
		})
	})
}
