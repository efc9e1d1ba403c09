// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("parallel: task panicked: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Future is the pending result of one task.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Done reports whether the task has finished. It never blocks.
func (f *Future) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Err returns the task error. It is nil until Done reports true.
func (f *Future) Err() error {
	if !f.Done() {
		return nil
	}
	return f.err
}

// Wait blocks until the task finishes or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Group is the combined future of several tasks.
type Group struct {
	futures []*Future
}

// Len returns the number of tasks in the group.
func (g *Group) Len() int { return len(g.futures) }

// Done reports whether every task has finished. It never blocks.
func (g *Group) Done() bool {
	for _, f := range g.futures {
		if !f.Done() {
			return false
		}
	}
	return true
}

// Errs returns the error of each task, index-aligned with the submitted
// tasks. Unfinished tasks report nil.
func (g *Group) Errs() []error {
	out := make([]error, len(g.futures))
	for i, f := range g.futures {
		out[i] = f.Err()
	}
	return out
}

// Wait blocks until every task finishes or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	for _, f := range g.futures {
		select {
		case <-f.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
