// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import "time"

// Observer receives scheduler events. Implementations are called from the
// render goroutine.
type Observer interface {
	// Frame is called at the end of every frame.
	Frame(info FrameInfo)

	// Round is called once per finished round with its wall time, measured
	// until the frame that noticed completion.
	Round(elapsed time.Duration, failures int)

	// Update is called for every task of a finished round.
	Update(name string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Frame(FrameInfo)                     {}
func (nopObserver) Round(time.Duration, int)            {}
func (nopObserver) Update(string, time.Duration, error) {}
