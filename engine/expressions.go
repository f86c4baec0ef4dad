package engine

import (
	"context"
	"fmt"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/obferr"
)

// cloneExpressions clones the exposed parameter list and menu, then points
// physics modules and contacts at the renamed parameters. It runs after the
// graphs so that every parameter a graph uses has been seen.
func cloneExpressions(ctx context.Context, r *run) error {
	d := r.root.Descriptor

	params, err := r.obtain(ctx, asset.KindParameters, d.ExpressionParameters, func(ctx context.Context, dst asset.Ref) error {
		return edit(ctx, r, dst, func(list *asset.ExpressionParameters) error {
			for i := range list.Parameters {
				p := &list.Parameters[i]
				if !r.params.Seen(p.Name) {
					r.warn(ctx, obferr.Diagnostic{
						Code:    obferr.DiagUnusedParameter,
						Message: fmt.Sprintf("exposed parameter %q is not used by any behavior graph", p.Name),
						Ref:     string(dst),
						Subject: p.Name,
					})
				}
				p.Name = r.params.Resolve(p.Name)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	d.ExpressionParameters = params

	menu, err := r.cloneMenu(ctx, d.ExpressionsMenu)
	if err != nil {
		return err
	}
	d.ExpressionsMenu = menu

	if !r.cfg.ParametersEnabled() {
		return nil
	}
	for _, n := range r.nodes() {
		for _, pb := range n.PhysBones {
			if opaque, ok := r.params.ResolveFamilyBase(pb.Parameter); ok {
				pb.Parameter = opaque
			}
		}
		for _, cr := range n.ContactReceivers {
			cr.Parameter = r.params.Resolve(cr.Parameter)
		}
	}
	return nil
}

// cloneMenu clones a menu and its submenus. Control labels are kept; the
// parameters they drive are renamed.
func (r *run) cloneMenu(ctx context.Context, src asset.Ref) (asset.Ref, error) {
	return r.obtain(ctx, asset.KindMenu, src, func(ctx context.Context, dst asset.Ref) error {
		return edit(ctx, r, dst, func(m *asset.ExpressionsMenu) error {
			for i := range m.Controls {
				c := &m.Controls[i]
				c.Parameter = r.params.Resolve(c.Parameter)
				for j, sub := range c.SubParameters {
					c.SubParameters[j] = r.params.Resolve(sub)
				}

				if r.cfg.TexturesEnabled() {
					icon, err := r.cloneTexture(ctx, c.Icon)
					if err != nil {
						return err
					}
					c.Icon = icon
				}

				if c.Type != asset.ControlSubMenu {
					c.SubMenu = ""
					continue
				}
				sub, err := r.cloneMenu(ctx, c.SubMenu)
				if err != nil {
					return err
				}
				c.SubMenu = sub
			}
			return nil
		})
	})
}
