// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import (
	"log/slog"

	"github.com/gogpu/graphview/internal/logx"
)

var logger logx.Handle

// SetLogger sets the logger for the scheduler package.
// Pass nil to disable logging.
func SetLogger(l *slog.Logger) { logger.Store(l) }

func slogger() *slog.Logger { return logger.Load() }
