package obfuscator

import (
	"errors"
	"io"
	"log/slog"

	"github.com/veilkit/obfuscator/obferr"
)

// Sentinel errors returned by the Obfuscator.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrSubjectNotFound indicates the named root is not in the scene.
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrNilStore indicates New was called without an asset store.
	ErrNilStore = errors.New("asset store is required")
)

// Fatal run errors, re-exported from obferr so callers of this package do not
// need to import it. Match them with errors.Is; use obferr.CodeOf to get the
// code of any error returned by Obfuscate.
var (
	ErrMissingComponent  = obferr.ErrMissingComponent
	ErrMissingArmature   = obferr.ErrMissingArmature
	ErrMultipleArmatures = obferr.ErrMultipleArmatures
	ErrDuplicateFailed   = obferr.ErrDuplicateFailed
	ErrLoadFailed        = obferr.ErrLoadFailed
	ErrInvalidAvatar     = obferr.ErrInvalidAvatar
	ErrInvalidConfig     = obferr.ErrInvalidConfig
	ErrStoreFailed       = obferr.ErrStoreFailed
)

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements to ensure
// cleanup errors are not silently ignored.
//
// The name parameter should describe the resource being closed (e.g., "asset
// store", "redis client"). If logger is nil, slog.Default() is used.
//
// Example usage:
//
//	defer obfuscator.CloseWithLog(fs, logger, "asset store")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
