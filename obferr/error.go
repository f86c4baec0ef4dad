package obferr

import (
	"fmt"
	"strings"
)

// Standard codes for fatal run errors.
const (
	// CodeMissingComponent indicates the subject lacks a required component
	// (descriptor, animator, rig avatar).
	CodeMissingComponent = "MISSING_COMPONENT"

	// CodeMissingArmature indicates the root animator has no armature marker node.
	CodeMissingArmature = "MISSING_ARMATURE"

	// CodeMultipleArmatures indicates more than one armature marker below one animator.
	CodeMultipleArmatures = "MULTIPLE_ARMATURES"

	// CodeDuplicateFailed indicates the store could not duplicate a required asset.
	CodeDuplicateFailed = "DUPLICATE_FAILED"

	// CodeLoadFailed indicates a required asset could not be loaded or had the wrong kind.
	CodeLoadFailed = "LOAD_FAILED"

	// CodeInvalidAvatar indicates a rig avatar that is invalid or could not be rebuilt.
	CodeInvalidAvatar = "INVALID_AVATAR"

	// CodeInvalidConfig indicates a configuration that cannot be used for a run.
	CodeInvalidConfig = "INVALID_CONFIG"

	// CodeStoreFailed indicates any other store failure (container creation, save, persist).
	CodeStoreFailed = "STORE_FAILED"
)

// Sentinels for errors.Is matching by code.
var (
	ErrMissingComponent  = &Error{Code: CodeMissingComponent}
	ErrMissingArmature   = &Error{Code: CodeMissingArmature}
	ErrMultipleArmatures = &Error{Code: CodeMultipleArmatures}
	ErrDuplicateFailed   = &Error{Code: CodeDuplicateFailed}
	ErrLoadFailed        = &Error{Code: CodeLoadFailed}
	ErrInvalidAvatar     = &Error{Code: CodeInvalidAvatar}
	ErrInvalidConfig     = &Error{Code: CodeInvalidConfig}
	ErrStoreFailed       = &Error{Code: CodeStoreFailed}
)

// Error is a fatal error raised during an obfuscation run.
type Error struct {
	// Op is the operation that failed (e.g. "clone.controller", "phase.duplicate").
	Op string

	// Code is one of the Code* constants.
	Code string

	// Message is a human-readable description.
	Message string

	// Ref is the asset reference involved, if any.
	Ref string

	// Cause is the underlying error.
	Cause error
}

// New creates a fatal error.
func New(op, code, message string) *Error {
	return &Error{Op: op, Code: code, Message: message}
}

// Newf creates a fatal error with a formatted message.
func Newf(op, code, format string, args ...any) *Error {
	return New(op, code, fmt.Sprintf(format, args...))
}

// WithRef attaches the asset reference and returns the same error for chaining.
func (e *Error) WithRef(ref string) *Error {
	e.Ref = ref
	return e
}

// WithCause attaches the underlying error and returns the same error for chaining.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// Error formats the error as "obfuscator [op/code]: message (ref): cause".
func (e *Error) Error() string {
	var parts []string

	head := fmt.Sprintf("obfuscator [%s/%s]", e.Op, e.Code)
	if e.Op == "" {
		head = fmt.Sprintf("obfuscator [%s]", e.Code)
	}
	parts = append(parts, head)

	if e.Message != "" {
		msg := e.Message
		if e.Ref != "" {
			msg = fmt.Sprintf("%s (%s)", msg, e.Ref)
		}
		parts = append(parts, msg)
	}

	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, and by operation when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
