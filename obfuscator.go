package obfuscator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/config"
	"github.com/veilkit/obfuscator/engine"
	"github.com/veilkit/obfuscator/naming"
	"github.com/veilkit/obfuscator/scene"
)

// Result describes a completed run.
type Result = engine.Result

// Obfuscator runs obfuscations against one asset store and manages the
// output they leave behind. It is safe for concurrent use.
type Obfuscator struct {
	store    asset.Store
	pipeline *engine.Pipeline
	logger   *slog.Logger
}

// New creates an Obfuscator writing to store.
func New(store asset.Store, opts ...Option) (*Obfuscator, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	p, err := engine.New(o.engineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return &Obfuscator{
		store:    store,
		pipeline: p,
		logger:   o.logger.With("component", "obfuscator"),
	}, nil
}

// Store returns the asset store the Obfuscator writes to.
func (o *Obfuscator) Store() asset.Store {
	return o.store
}

// OutputRoot returns the container holding run folders.
func (o *Obfuscator) OutputRoot() string {
	return o.pipeline.OutputRoot()
}

// Obfuscate produces an obfuscated copy of subject. A nil cfg uses the
// configuration stored in the subject's marker, or config.Default() if it
// has none.
func (o *Obfuscator) Obfuscate(ctx context.Context, subject *scene.Node, cfg *config.Config) (*Result, error) {
	if cfg == nil && subject != nil && subject.Marker != nil && subject.Marker.Config != nil {
		cfg = subject.Marker.Config
	}
	return o.pipeline.Run(ctx, o.store, subject, cfg)
}

// ObfuscateScene obfuscates the root called name and adds the result to the
// scene's roots.
func (o *Obfuscator) ObfuscateScene(ctx context.Context, s *scene.Scene, name string, cfg *config.Config) (*Result, error) {
	subject := s.Root(name)
	if subject == nil {
		return nil, fmt.Errorf("%w: %s", ErrSubjectNotFound, name)
	}
	res, err := o.Obfuscate(ctx, subject, cfg)
	if err != nil {
		return nil, err
	}
	s.Roots = append(s.Roots, res.Root)
	return res, nil
}

// ListParameters returns the parameter names declared by the controllers of
// subject's playable layers, sorted and without reserved names. These are
// the names a configuration may select.
func (o *Obfuscator) ListParameters(ctx context.Context, subject *scene.Node) ([]string, error) {
	if subject == nil || subject.Descriptor == nil {
		return nil, fmt.Errorf("%w: subject has no descriptor", ErrMissingComponent)
	}

	d := subject.Descriptor
	seen := make(map[string]struct{})
	for _, layers := range [][]scene.PlayableLayer{d.BaseLayers, d.SpecialLayers} {
		for _, layer := range layers {
			if layer.Controller.IsZero() {
				continue
			}
			c, err := asset.LoadAs[*asset.Controller](ctx, o.store, layer.Controller)
			if err != nil {
				return nil, fmt.Errorf("failed to load controller %s: %w", layer.Controller, err)
			}
			for _, p := range c.Parameters {
				if p.Name != "" && !naming.IsReserved(p.Name) {
					seen[p.Name] = struct{}{}
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RefreshSelection drops selected parameter names that subject no longer
// declares and returns them.
func (o *Obfuscator) RefreshSelection(ctx context.Context, subject *scene.Node, cfg *config.Config) ([]string, error) {
	available, err := o.ListParameters(ctx, subject)
	if err != nil {
		return nil, err
	}
	return cfg.SanitizeSelection(available), nil
}

// ClearAll deletes every run folder.
func (o *Obfuscator) ClearAll(ctx context.Context) error {
	root := o.OutputRoot()
	exists, err := o.store.ContainerExists(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", root, err)
	}
	if !exists {
		return nil
	}
	if err := o.store.DeleteContainer(ctx, root); err != nil {
		return fmt.Errorf("failed to delete %s: %w", root, err)
	}
	o.logger.InfoContext(ctx, "cleared all obfuscated assets", "container", root)
	return nil
}

// ClearScene deletes the run folders of the obfuscated roots in s and
// returns how many folders were removed. The roots stay in the scene; see
// RemoveObfuscatedRoots.
func (o *Obfuscator) ClearScene(ctx context.Context, s *scene.Scene) (int, error) {
	removed := 0
	for _, root := range s.Roots {
		token := engine.TokenOf(root.Name)
		if token == "" {
			continue
		}
		folder := asset.JoinPath(o.OutputRoot(), token)
		exists, err := o.store.ContainerExists(ctx, folder)
		if err != nil {
			return removed, fmt.Errorf("failed to check %s: %w", folder, err)
		}
		if !exists {
			continue
		}
		if err := o.store.DeleteContainer(ctx, folder); err != nil {
			return removed, fmt.Errorf("failed to delete %s: %w", folder, err)
		}
		removed++
		o.logger.InfoContext(ctx, "cleared obfuscated assets", "container", folder)
	}
	return removed, nil
}

// RemoveObfuscatedRoots removes every obfuscated root from s and returns how
// many were removed.
func RemoveObfuscatedRoots(s *scene.Scene) int {
	return s.RemoveRoots(func(n *scene.Node) bool {
		return IsObfuscatedName(n.Name)
	})
}

// IsObfuscatedName reports whether name is the name of an obfuscated root.
func IsObfuscatedName(name string) bool {
	return engine.IsObfuscatedName(name)
}
