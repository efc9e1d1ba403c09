// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"log/slog"

	"github.com/gogpu/graphview/internal/logx"
)

var logger logx.Handle

// SetLogger sets the logger for the gpu package.
// Pass nil to disable logging.
func SetLogger(l *slog.Logger) { logger.Store(l) }

// slogger returns the current package logger.
func slogger() *slog.Logger { return logger.Load() }
