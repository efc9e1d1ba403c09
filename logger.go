package graphview

import (
	"log/slog"

	"github.com/gogpu/graphview/config"
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/internal/logx"
	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/graphview/render"
	"github.com/gogpu/graphview/scheduler"
)

var logger logx.Handle

// SetLogger configures the logger for graphview and all its sub-packages.
// By default, graphview produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by graphview:
//   - [slog.LevelDebug]: buffer growth, completed update rounds
//   - [slog.LevelInfo]: lifecycle events (device ready, config reloaded)
//   - [slog.LevelWarn]: failed update tasks, rejected config reloads
//   - [slog.LevelError]: panicking update tasks, failed uploads
//
// Example:
//
//	graphview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	l = logger.Load()

	gpu.SetLogger(l)
	pipeline.SetLogger(l)
	render.SetLogger(l)
	scheduler.SetLogger(l)
	config.SetLogger(l)
}

// Logger returns the current logger used by graphview.
func Logger() *slog.Logger {
	return logger.Load()
}
