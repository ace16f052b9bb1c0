// Package logging centralizes slog construction for the application.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/strandkit/strand/pkg/schema"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout results/JSON output).
// It standardizes common keys (e.g., "error" -> "err") and never prints
// secret-valued attributes.
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter builds the same logger over an arbitrary sink.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			// Secret values never reach a sink.
			if _, ok := a.Value.Any().(schema.Secret); ok {
				a.Value = slog.StringValue("[redacted]")
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
