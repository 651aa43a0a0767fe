package svgdist

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/svgdist/raster"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with measurements.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for svgdist and the raster backends.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by svgdist:
//   - [slog.LevelDebug]: per-stage timings, raster and mask sizes
//   - [slog.LevelInfo]: backend selection
//   - [slog.LevelWarn]: rendering approximations (even-odd fills on the
//     vector backend, paint servers drawn as solid paint)
//
// Example:
//
//	svgdist.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	raster.SetLogger(l)
}

// Logger returns the current logger used by svgdist.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
