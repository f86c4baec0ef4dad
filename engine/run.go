package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/clone"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/naming"
	"github.com/veilkit/obfuscator/obferr"
	"github.com/veilkit/obfuscator/scene"
)

// run is the state of one obfuscation. It is created by Run, threaded
// through every phase and discarded afterwards.
type run struct {
	store   asset.Store
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics

	outputRoot string
	token      string
	folder     string

	source *scene.Node
	root   *scene.Node

	// animators are the nodes of root carrying an Animator, parents first,
	// with the armature marker found below each of them.
	animators []*scene.Node
	armatures map[*scene.Node]*scene.Node

	names   *naming.Table
	params  *naming.ParameterResolver
	paths   *naming.PathRewriter
	clones  *clone.Cache
	skipped map[asset.Ref]struct{}
	diags   *obferr.Collector

	// keptShapes holds the source meshes drawn by a preserved renderer;
	// renamedShapes the source meshes whose clone got opaque shape keys.
	keptShapes    map[asset.Ref]struct{}
	renamedShapes map[asset.Ref]struct{}
}

func newRun(p *Pipeline, store asset.Store, subject *scene.Node, cfg *config.Config) *run {
	logger := p.logger.With("component", "engine", "subject", subject.Name)
	names := naming.NewTable(p.minter)

	var preserved []string
	if cfg.PreserveSpecialLeafNames {
		preserved = scene.PreservedNames
	}

	return &run{
		store:      store,
		cfg:        cfg,
		logger:     logger,
		metrics:    p.metrics,
		outputRoot: p.outputRoot,
		source:     subject,
		armatures:  make(map[*scene.Node]*scene.Node),
		names:      names,
		params:     naming.NewParameterResolver(names, cfg.ParametersEnabled(), cfg.ExposedParameters.SelectedParameterNames),
		paths:      naming.NewPathRewriter(names, cfg.ObfuscateHierarchyLabels, preserved),
		clones:     clone.New(),
		skipped:    make(map[asset.Ref]struct{}),
		diags:      obferr.NewCollector(logger),

		keptShapes:    make(map[asset.Ref]struct{}),
		renamedShapes: make(map[asset.Ref]struct{}),
	}
}

func (r *run) mint() string {
	return r.names.Minter().Mint()
}

// warn records a recoverable condition.
func (r *run) warn(ctx context.Context, d obferr.Diagnostic) {
	r.diags.Report(ctx, d)
	r.metrics.warned(ctx, d.Code)
}

// nodes returns every node of the working copy, root included.
func (r *run) nodes() []*scene.Node {
	var out []*scene.Node
	r.root.Walk(func(n *scene.Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// preservedNode reports whether a top-level node name is kept intact.
func (r *run) preservedNode(name string) bool {
	return r.cfg.PreserveSpecialLeafNames && scene.IsPreservedName(name)
}

// nodeName maps a source node name to its name in the renamed hierarchy.
// ok is false for names the hierarchy rename never saw.
func (r *run) nodeName(name string) (string, bool) {
	if !r.cfg.ObfuscateHierarchyLabels || r.preservedNode(name) {
		return name, true
	}
	return r.names.TryGet(naming.Transforms, name)
}

// rewritePath rewrites a hierarchy path referenced by the asset at ref.
func (r *run) rewritePath(ctx context.Context, path string, ref asset.Ref) string {
	out, ok := r.paths.Rewrite(path)
	if !ok {
		r.warn(ctx, obferr.Diagnostic{
			Code:    obferr.DiagUnresolvedPath,
			Message: "path does not resolve in the renamed hierarchy; replaced by an unlinked name",
			Ref:     string(ref),
			Subject: path,
		})
	}
	return out
}

// outputPath returns a fresh path in the run folder for a clone of kind.
func (r *run) outputPath(kind asset.Kind, sourcePath string) string {
	return asset.JoinPath(r.folder, r.mint()+asset.Extension(kind, sourcePath))
}

// duplicable reports whether the store can copy the asset described by info.
func duplicable(info asset.Info) bool {
	return info.Path != "" && !info.BuiltIn && !info.Unreadable && !asset.IsBuiltInPath(info.Path)
}

// rewriteFunc rewrites the content of a freshly duplicated asset.
type rewriteFunc func(ctx context.Context, dst asset.Ref) error

// obtain returns the clone of src, creating it on first request.
//
// Zero refs stay zero. Assets the store cannot duplicate are returned
// unchanged with one warning per ref. The mapping is recorded before
// rewrite runs, so rewrites that reach src again through a cycle get the
// clone instead of recursing.
func (r *run) obtain(ctx context.Context, kind asset.Kind, src asset.Ref, rewrite rewriteFunc) (asset.Ref, error) {
	if src.IsZero() {
		return src, nil
	}
	if dst, ok := r.clones.Get(kind, src); ok {
		return dst, nil
	}
	if _, ok := r.skipped[src]; ok {
		return src, nil
	}

	op := "clone." + string(kind)
	info, err := r.store.Stat(ctx, src)
	if err != nil {
		return "", obferr.New(op, obferr.CodeLoadFailed, "cannot read asset").WithRef(string(src)).WithCause(err)
	}
	if info.Kind != kind {
		return "", obferr.Newf(op, obferr.CodeLoadFailed, "asset is a %s", info.Kind).WithRef(string(src))
	}
	if kind == asset.KindAnimationClip && asset.IsProxyClip(info.Path) {
		return src, nil
	}
	if !duplicable(info) {
		r.skip(ctx, info)
		return src, nil
	}

	dst, err := r.store.Duplicate(ctx, src, r.outputPath(kind, info.Path))
	if errors.Is(err, asset.ErrNotDuplicable) {
		r.skip(ctx, info)
		return src, nil
	}
	if err != nil {
		return "", obferr.New(op, obferr.CodeDuplicateFailed, "cannot duplicate asset").WithRef(string(src)).WithCause(err)
	}
	r.clones.Put(kind, src, dst)
	r.metrics.cloned(ctx, kind)

	if rewrite != nil {
		if err := rewrite(ctx, dst); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func (r *run) skip(ctx context.Context, info asset.Info) {
	r.skipped[info.Ref] = struct{}{}
	r.warn(ctx, obferr.Diagnostic{
		Code:    obferr.DiagNotDuplicable,
		Message: fmt.Sprintf("%s %q cannot be obfuscated and is left unchanged", info.Kind, info.Name),
		Ref:     string(info.Ref),
	})
}

// load loads a required document.
func load[T asset.Asset](ctx context.Context, r *run, ref asset.Ref) (T, error) {
	doc, err := asset.LoadAs[T](ctx, r.store, ref)
	if err != nil {
		var zero T
		return zero, obferr.New("load", obferr.CodeLoadFailed, "cannot load asset").WithRef(string(ref)).WithCause(err)
	}
	return doc, nil
}

// edit loads the document at ref, applies fn and saves it.
func edit[T asset.Asset](ctx context.Context, r *run, ref asset.Ref, fn func(doc T) error) error {
	doc, err := load[T](ctx, r, ref)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := r.store.Save(ctx, ref, doc); err != nil {
		return obferr.New("save", obferr.CodeStoreFailed, "cannot save asset").WithRef(string(ref)).WithCause(err)
	}
	return nil
}
