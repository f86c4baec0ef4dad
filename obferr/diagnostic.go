package obferr

import (
	"context"
	"fmt"
	"log/slog"
)

// Codes for recoverable diagnostics.
const (
	// DiagNotDuplicable marks an asset that was left unchanged because it is
	// built in, unreadable, or has no storage path.
	DiagNotDuplicable = "NOT_DUPLICABLE"

	// DiagUnresolvedPath marks a hierarchy path that no longer resolves in the
	// renamed hierarchy and was replaced by an unlinked token.
	DiagUnresolvedPath = "UNRESOLVED_PATH"

	// DiagUnusedParameter marks an exposed parameter that no behavior graph references.
	DiagUnusedParameter = "UNUSED_PARAMETER"

	// DiagForeignController marks a root animator controller that is not one of
	// the playable layers and therefore was not replaced.
	DiagForeignController = "FOREIGN_CONTROLLER"
)

// Diagnostic is a recoverable condition reported during a run.
type Diagnostic struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`

	// Ref is the asset reference involved, if any.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`

	// Subject names the entity involved when it is not an asset
	// (a hierarchy path, a parameter name).
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
}

func (d Diagnostic) String() string {
	switch {
	case d.Ref != "" && d.Subject != "":
		return fmt.Sprintf("%s: %s (%s, %s)", d.Code, d.Message, d.Ref, d.Subject)
	case d.Ref != "":
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Ref)
	case d.Subject != "":
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Subject)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Collector accumulates diagnostics for one run and logs each one.
type Collector struct {
	logger *slog.Logger
	items  []Diagnostic
}

// NewCollector creates a collector that logs through logger.
// A nil logger falls back to slog.Default().
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Report records d and logs it at warning level.
func (c *Collector) Report(ctx context.Context, d Diagnostic) {
	c.items = append(c.items, d)

	attrs := []any{"code", d.Code}
	if d.Ref != "" {
		attrs = append(attrs, "ref", d.Ref)
	}
	if d.Subject != "" {
		attrs = append(attrs, "subject", d.Subject)
	}
	c.logger.WarnContext(ctx, d.Message, attrs...)
}

// Items returns the recorded diagnostics in report order.
func (c *Collector) Items() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many diagnostics with the given code were recorded.
func (c *Collector) Count(code string) int {
	n := 0
	for _, d := range c.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.items)
}
