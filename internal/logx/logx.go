// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package logx holds the slog plumbing shared by graphview sub-packages.
//
// Every package that logs keeps one Handle. The root package propagates the
// logger configured with graphview.SetLogger into each handle, so there is a
// single configuration point without import cycles.
package logx

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

// Nop returns a logger that discards all output.
func Nop() *slog.Logger { return slog.New(nopHandler{}) }

// Handle stores a package logger. The zero value logs nothing.
// Handle is safe for concurrent use.
type Handle struct {
	ptr atomic.Pointer[slog.Logger]
}

// Load returns the current logger, never nil.
func (h *Handle) Load() *slog.Logger {
	if l := h.ptr.Load(); l != nil {
		return l
	}
	return nopLogger
}

// Store replaces the logger. A nil logger restores silent behavior.
func (h *Handle) Store(l *slog.Logger) {
	if l == nil {
		l = nopLogger
	}
	h.ptr.Store(l)
}

var nopLogger = Nop()
