// Package obferr provides the two error tiers of an obfuscation run.
//
// Fatal conditions are returned as *Error values and unwind the whole run.
// They carry a standard code, the operation that failed and, when known, the
// asset reference involved. Matching works with errors.Is against the
// sentinel values of this package:
//
//	if errors.Is(err, obferr.ErrMissingArmature) {
//	    // subject has no armature marker
//	}
//
// Recoverable conditions never unwind the run. They are recorded as
// Diagnostic values by a Collector, which also writes them to a slog.Logger
// at warning level, and are returned to the caller with the run result.
package obferr
