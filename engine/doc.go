// Package engine runs one obfuscation of a subject hierarchy.
//
// A Pipeline owns the long-lived collaborators (logger, tracer, meter,
// minter). Every call to Run creates a fresh run context holding the name
// table, the parameter resolver, the path rewriter and the clone cache, so
// concurrent runs on different subjects never share identifiers.
//
// # Phases
//
// Run executes a fixed sequence. Each phase reads tables filled by the ones
// before it:
//
//  1. duplicate: validate the subject, copy it, create the run folder
//  2. hierarchy: rename every node below the copy
//  3. avatars: rebuild rig avatars from the renamed hierarchy
//  4. meshes: clone meshes and rename shape keys
//  5. materials: clone renderer materials
//  6. graphs: clone behavior graphs with their clips, blend trees and masks
//  7. expressions: clone exposed parameters and menus, rebase physics modules
//  8. textures: clone textures of cloned materials and camera targets
//  9. audio: clone audio source clips
//  10. finalize: strip marker components and persist the store
//
// Phases 4, 5, 7, 8 and 9 are skipped when the configuration disables their
// category.
//
// # Errors
//
// Fatal conditions abort the run with an *obferr.Error. Assets written
// before the failure are left in the run folder for a later clear. Recoverable
// conditions become diagnostics on the Result and are logged at Warn.
//
// # Telemetry
//
// Each run and each phase gets a span. The counters obfuscator.clones and
// obfuscator.warnings and the histogram obfuscator.run.duration are recorded
// through the configured meter. Both default to no-op providers.
package engine
