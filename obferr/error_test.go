package obferr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "code only",
			err:  &Error{Code: CodeMissingComponent},
			want: "obfuscator [MISSING_COMPONENT]",
		},
		{
			name: "op and message",
			err:  New("phase.duplicate", CodeMissingComponent, "descriptor is missing"),
			want: "obfuscator [phase.duplicate/MISSING_COMPONENT]: descriptor is missing",
		},
		{
			name: "with ref and cause",
			err: New("clone.controller", CodeDuplicateFailed, "duplicate failed").
				WithRef("Assets/FX.controller").
				WithCause(errors.New("disk full")),
			want: "obfuscator [clone.controller/DUPLICATE_FAILED]: duplicate failed (Assets/FX.controller): disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	cause := errors.New("boom")
	err := New("clone.mesh", CodeDuplicateFailed, "duplicate failed").WithCause(cause)
	wrapped := fmt.Errorf("run: %w", err)

	assert.True(t, errors.Is(wrapped, ErrDuplicateFailed))
	assert.True(t, errors.Is(wrapped, cause))
	assert.False(t, errors.Is(wrapped, ErrLoadFailed))
	assert.True(t, errors.Is(wrapped, &Error{Op: "clone.mesh", Code: CodeDuplicateFailed}))
	assert.False(t, errors.Is(wrapped, &Error{Op: "clone.clip", Code: CodeDuplicateFailed}))

	var target *Error
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "clone.mesh", target.Op)
	assert.Equal(t, CodeDuplicateFailed, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(cause))
}

func TestCollector(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	c := NewCollector(logger)

	c.Report(context.Background(), Diagnostic{Code: DiagNotDuplicable, Message: "mesh cannot be obfuscated", Ref: "builtin:Cube"})
	c.Report(context.Background(), Diagnostic{Code: DiagUnresolvedPath, Message: "path does not resolve", Subject: "Armature/Gone"})
	c.Report(context.Background(), Diagnostic{Code: DiagNotDuplicable, Message: "texture cannot be obfuscated", Ref: "builtin:Default"})

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Count(DiagNotDuplicable))
	assert.Equal(t, 1, c.Count(DiagUnresolvedPath))
	assert.Equal(t, 0, c.Count(DiagUnusedParameter))

	items := c.Items()
	items[0].Code = "changed"
	assert.Equal(t, DiagNotDuplicable, c.Items()[0].Code, "Items must return a copy")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "ref=builtin:Cube")
	assert.Contains(t, out, "subject=Armature/Gone")
}

func TestDiagnosticString(t *testing.T) {
	assert.Equal(t, "UNUSED_PARAMETER: unused (Toggle)",
		Diagnostic{Code: DiagUnusedParameter, Message: "unused", Subject: "Toggle"}.String())
	assert.Equal(t, "NOT_DUPLICABLE: skipped (a.mat)",
		Diagnostic{Code: DiagNotDuplicable, Message: "skipped", Ref: "a.mat"}.String())
	assert.Equal(t, "X: y", Diagnostic{Code: "X", Message: "y"}.String())
}
