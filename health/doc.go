// Package health provides preflight checks for obfuscation runs.
//
// The checks report whether a run is likely to succeed before any asset is
// cloned: whether the subject is structurally valid, whether the assets its
// hierarchy references exist, and whether the output container can be
// created.
//
// # Health Check Functions
//
//   - SubjectCheck: Verify the subject has the components and armature a run needs
//   - ReferenceCheck: Verify every asset referenced by the hierarchy exists
//   - OutputCheck: Verify the output container exists or can be created
//   - Combine: Aggregate multiple health checks into a single status
//
// # Usage Example
//
//	overall := health.Combine(
//	    health.SubjectCheck(subject),
//	    health.ReferenceCheck(ctx, store, subject),
//	    health.OutputCheck(ctx, store, "Obfuscated"),
//	)
//	if overall.IsUnhealthy() {
//	    log.Printf("Preflight failed: %s", overall.Message)
//	    log.Printf("Details: %+v", overall.Details)
//	}
//
// # Health Status Priority
//
// When combining health checks with Combine(), the result follows this priority:
//
//   - Unhealthy: If any check is unhealthy, the combined result is unhealthy
//   - Degraded: If any check is degraded (and none unhealthy), the result is degraded
//   - Healthy: If all checks are healthy, the result is healthy
//
// A degraded reference check means the run will succeed but leave some
// assets unchanged, for example built-in materials.
package health
