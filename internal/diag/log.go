package diag

import (
	"io"
	"log/slog"
)

// NewLogger returns a structured logger writing text-handler records to w.
// Every pipeline stage that wants leveled diagnostics (as opposed to the
// single first-violation Diagnostic returned to its caller) takes a
// *slog.Logger rather than reaching for a package-global, injecting the
// writer the same way every stage injects its Stdout/Stderr rather than
// writing to os.Stdout directly.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard is a logger that drops every record; stages default to it when no
// logger is supplied so that nil checks never leak into call sites.
var Discard = slog.New(slog.NewTextHandler(io.Discard, nil))
