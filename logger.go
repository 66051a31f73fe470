package glscene

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/glscene/program"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while another goroutine renders.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for glscene and its sub-packages.
// By default glscene produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by glscene:
//   - [slog.LevelDebug]: shader compiles, vertex-array recording, buffer uploads
//   - [slog.LevelInfo]: root and backend lifecycle
//   - [slog.LevelWarn]: dropped nodes, unresolved attributes and uniforms
//
// Example:
//
//	glscene.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	program.SetLogger(l)
}

// Logger returns the current logger used by glscene.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger hands l to dev if the device logs on its own.
func propagateLogger(dev any, l *slog.Logger) {
	if ls, ok := dev.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
