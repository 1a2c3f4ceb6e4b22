package viewer

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while a frame is running on another goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for viewer and its sub-packages.
// By default viewer produces no log output.
//
// Pass nil to restore the silent default.
//
// Log levels used by viewer:
//   - [slog.LevelDebug]: per-frame diagnostics (renderer init, scene sharing)
//   - [slog.LevelInfo]: lifecycle events (timer query strategy, GPU stats disabled)
//   - [slog.LevelWarn]: non-fatal issues (unsupported pointer reprojection)
//
// Example:
//
//	viewer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by viewer.
// Host integrations (integration/glfwhost, integration/ebitenhost) call this
// to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
