package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/engine"
	"github.com/veilkit/obfuscator/obferr"
	"github.com/veilkit/obfuscator/scene"
)

// Health status constants represent the outcome of a check.
const (
	// StatusHealthy indicates nothing stands in the way of a run.
	StatusHealthy = "healthy"

	// StatusDegraded indicates a run will succeed with warnings.
	StatusDegraded = "degraded"

	// StatusUnhealthy indicates a run would fail.
	StatusUnhealthy = "unhealthy"
)

// Status is the result of a check.
type Status struct {
	// Status is the current health state (healthy, degraded, or unhealthy).
	Status string `json:"status" yaml:"status"`

	// Message provides a human-readable description of the health status.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Details contains additional diagnostic information.
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (h Status) IsHealthy() bool {
	return h.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (h Status) IsDegraded() bool {
	return h.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (h Status) IsUnhealthy() bool {
	return h.Status == StatusUnhealthy
}

// Healthy creates a healthy status.
func Healthy(message string) Status {
	return Status{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded status with optional details.
func Degraded(message string, details map[string]any) Status {
	return Status{Status: StatusDegraded, Message: message, Details: details}
}

// Unhealthy creates an unhealthy status with optional details.
func Unhealthy(message string, details map[string]any) Status {
	return Status{Status: StatusUnhealthy, Message: message, Details: details}
}

// SubjectCheck verifies that subject has a descriptor, an animator with a
// rig avatar, and exactly one armature.
//
// Example:
//
//	status := health.SubjectCheck(sc.Root("Avatar"))
//	if status.IsUnhealthy() {
//	    log.Fatal(status.Message)
//	}
func SubjectCheck(subject *scene.Node) Status {
	if err := engine.Check(subject); err != nil {
		details := map[string]any{"error": err.Error()}
		if code := obferr.CodeOf(err); code != "" {
			details["code"] = code
		}
		return Unhealthy("subject cannot be obfuscated", details)
	}
	return Healthy(fmt.Sprintf("subject '%s' is valid", subject.Name))
}

// ReferenceCheck verifies that every asset referenced directly by the
// hierarchy of subject exists in store. Assets reached only through other
// assets (clips of a controller, textures of a material) are not followed.
//
// Missing assets make the check unhealthy. Assets the store cannot
// duplicate make it degraded, since the run leaves them unchanged.
func ReferenceCheck(ctx context.Context, store asset.Store, subject *scene.Node) Status {
	if subject == nil {
		return Unhealthy("subject cannot be nil", nil)
	}

	var missing, unchanged []string
	checked := 0
	for _, ref := range References(subject) {
		info, err := store.Stat(ctx, ref)
		switch {
		case errors.Is(err, asset.ErrNotFound):
			missing = append(missing, string(ref))
		case err != nil:
			return Unhealthy("failed to read asset store", map[string]any{
				"ref":   string(ref),
				"error": err.Error(),
			})
		case info.BuiltIn || info.Unreadable || info.Path == "" || asset.IsBuiltInPath(info.Path):
			unchanged = append(unchanged, string(ref))
		}
		checked++
	}

	if len(missing) > 0 {
		return Unhealthy(fmt.Sprintf("%d referenced asset(s) missing", len(missing)), map[string]any{
			"checked": checked,
			"missing": missing,
		})
	}
	if len(unchanged) > 0 {
		return Degraded(fmt.Sprintf("%d referenced asset(s) will be left unchanged", len(unchanged)), map[string]any{
			"checked":   checked,
			"unchanged": unchanged,
		})
	}
	return Healthy(fmt.Sprintf("all %d referenced asset(s) found", checked))
}

// References returns the distinct asset refs held by the components of
// subject's hierarchy, in hierarchy order.
func References(subject *scene.Node) []asset.Ref {
	var out []asset.Ref
	seen := make(map[asset.Ref]struct{})
	add := func(refs ...asset.Ref) {
		for _, ref := range refs {
			if ref.IsZero() {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}

	subject.Walk(func(n *scene.Node) bool {
		if d := n.Descriptor; d != nil {
			for _, layers := range [][]scene.PlayableLayer{d.BaseLayers, d.SpecialLayers} {
				for _, layer := range layers {
					add(layer.Controller)
				}
			}
			add(d.ExpressionParameters, d.ExpressionsMenu, d.VisemeMesh)
		}
		if a := n.Animator; a != nil {
			add(a.Avatar, a.Controller)
		}
		if smr := n.SkinnedMeshRenderer; smr != nil {
			add(smr.Mesh)
			add(smr.Materials...)
		}
		if mf := n.MeshFilter; mf != nil {
			add(mf.Mesh)
		}
		if mr := n.MeshRenderer; mr != nil {
			add(mr.Materials...)
		}
		if ps := n.ParticleSystem; ps != nil {
			add(ps.ShapeMesh, ps.RendererMesh)
			add(ps.Materials...)
		}
		if cam := n.Camera; cam != nil {
			add(cam.TargetTexture)
		}
		for _, src := range n.AudioSources {
			add(src.Clip)
		}
		return true
	})
	return out
}

// OutputCheck verifies that the output container exists, or that its parent
// does so it can be created.
func OutputCheck(ctx context.Context, store asset.Store, container string) Status {
	if err := asset.CheckPath(container); err != nil {
		return Unhealthy(fmt.Sprintf("invalid output container '%s'", container), map[string]any{
			"error": err.Error(),
		})
	}

	exists, err := store.ContainerExists(ctx, container)
	if err != nil {
		return Unhealthy("failed to read asset store", map[string]any{"error": err.Error()})
	}
	if exists {
		return Healthy(fmt.Sprintf("output container '%s' exists", container))
	}

	parent := asset.ParentPath(container)
	if ok, err := store.ContainerExists(ctx, parent); err != nil || !ok {
		return Unhealthy(fmt.Sprintf("output container '%s' cannot be created", container), map[string]any{
			"parent": parent,
		})
	}
	return Healthy(fmt.Sprintf("output container '%s' will be created", container))
}

// Combine aggregates multiple health checks into a single status.
// The result follows this priority:
//   - If any check is unhealthy, the result is unhealthy
//   - If any check is degraded (and none unhealthy), the result is degraded
//   - If all checks are healthy, the result is healthy
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthyChecks = append(unhealthyChecks, msg)
		case StatusDegraded:
			degradedChecks = append(degradedChecks, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthyChecks) > 0 {
		return Unhealthy(
			fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			},
		)
	}

	if len(degradedChecks) > 0 {
		return Degraded(
			fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			},
		)
	}

	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
