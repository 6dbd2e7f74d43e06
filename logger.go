package debugdraw

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false so callers skip
// building attributes.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

// SetLogger routes diagnostics of debugdraw and its sub-packages to l.
// A nil logger restores the silent default.
//
// Levels:
//   - [slog.LevelDebug]: buffer growth, program creation, per-frame stats
//   - [slog.LevelInfo]: renderer creation, device selection
//   - [slog.LevelWarn]: failures while releasing GPU resources
//
// Example:
//
//	debugdraw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//	    &slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger installed with SetLogger. It never returns nil
// and is safe for concurrent use.
func Logger() *slog.Logger {
	if l := active.Load(); l != nil {
		return l
	}
	return silent
}
