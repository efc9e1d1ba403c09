// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/input"
	"github.com/gogpu/graphview/layers"
	"github.com/gogpu/graphview/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records calls from the render goroutine in order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeUpdater struct {
	name  string
	calls atomic.Int64
	fn    func(ctx context.Context) error
}

func (u *fakeUpdater) Name() string { return u.name }

func (u *fakeUpdater) Update(ctx context.Context) error {
	u.calls.Add(1)
	if u.fn != nil {
		return u.fn(ctx)
	}
	return nil
}

type fakeRenderer struct {
	name    string
	layers  []layers.Layer
	j       *journal
	updated int
	err     error
}

var _ render.Renderer = (*fakeRenderer)(nil)

func (r *fakeRenderer) Name() string           { return r.name }
func (r *fakeRenderer) Layers() []layers.Layer { return r.layers }
func (r *fakeRenderer) Destroy()               {}

func (r *fakeRenderer) WorldUpdated() error {
	r.updated++
	r.j.add("promote " + r.name)
	return r.err
}

func (r *fakeRenderer) Render(l layers.Layer, _ gpu.DrawEncoder) {
	r.j.add("draw " + r.name + " " + l.String())
}

type countingObserver struct {
	frames   int
	rounds   int
	failures int
	updates  map[string]int
}

func (o *countingObserver) Frame(FrameInfo) { o.frames++ }

func (o *countingObserver) Round(_ time.Duration, failures int) {
	o.rounds++
	o.failures += failures
}

func (o *countingObserver) Update(name string, _ time.Duration, _ error) {
	if o.updates == nil {
		o.updates = make(map[string]int)
	}
	o.updates[name]++
}

// untilPromoted runs frames until one promotes.
func untilPromoted(t *testing.T, s *Scheduler, enc gpu.DrawEncoder) FrameInfo {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info := s.Frame(enc); info.Promoted {
			return info
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no round was promoted")
	return FrameInfo{}
}

func closeScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	t.Cleanup(func() { _ = s.Close(time.Second) })
}

// =============================================================================
// Frame Tests
// =============================================================================

func TestScheduler_FirstFrameDispatchesWithoutPromotion(t *testing.T) {
	j := &journal{}
	u := &fakeUpdater{name: "nodes"}
	r := &fakeRenderer{name: "nodes", layers: []layers.Layer{layers.NodesUnselected}, j: j}
	s := New([]Updater{u}, []render.Renderer{r})
	closeScheduler(t, s)

	info := s.Frame(&gpu.Recorder{})
	assert.False(t, info.Promoted)
	assert.True(t, info.Dispatched)
	assert.Equal(t, UpdateInFlight, info.State)
	assert.Equal(t, 1, info.Draws)
	assert.Zero(t, r.updated)

	info = untilPromoted(t, s, &gpu.Recorder{})
	assert.True(t, info.Dispatched, "the promoting frame starts the next round")
	assert.Equal(t, 1, r.updated)
	assert.Equal(t, uint64(1), s.Stats().Rounds)
	assert.GreaterOrEqual(t, u.calls.Load(), int64(1))
}

func TestScheduler_PromotesOncePerRound(t *testing.T) {
	j := &journal{}
	release := make(chan struct{})
	u := &fakeUpdater{name: "slow", fn: func(context.Context) error {
		<-release
		return nil
	}}
	r := &fakeRenderer{name: "r", layers: []layers.Layer{layers.Overlay}, j: j}
	s := New([]Updater{u}, []render.Renderer{r})
	closeScheduler(t, s)

	s.Frame(&gpu.Recorder{})
	require.Eventually(t, func() bool { return u.calls.Load() == 1 }, time.Second, time.Millisecond)

	// Frames keep drawing while the round is stuck, without re-dispatch.
	for range 4 {
		s.Frame(&gpu.Recorder{})
	}
	assert.Equal(t, int64(1), u.calls.Load())
	assert.Zero(t, r.updated)
	assert.Equal(t, uint64(5), s.Stats().StaleFrames)

	close(release)
	untilPromoted(t, s, &gpu.Recorder{})
	assert.Equal(t, 1, r.updated)
}

func TestScheduler_DrawOrderFollowsLayers(t *testing.T) {
	j := &journal{}
	nodes := &fakeRenderer{name: "nodes", layers: []layers.Layer{layers.NodesUnselected, layers.NodesSelected}, j: j}
	edges := &fakeRenderer{name: "edges", layers: []layers.Layer{layers.EdgesUnselected, layers.EdgesSelected}, j: j}
	s := New(nil, []render.Renderer{nodes, edges})
	closeScheduler(t, s)

	s.Frame(&gpu.Recorder{})
	assert.Equal(t, []string{
		"draw edges edges-unselected",
		"draw nodes nodes-unselected",
		"draw edges edges-selected",
		"draw nodes nodes-selected",
	}, j.all())
}

func TestScheduler_InputBeforePromotion(t *testing.T) {
	j := &journal{}
	r := &fakeRenderer{name: "r", layers: []layers.Layer{layers.NodesSelected}, j: j}

	q := input.NewQueue()
	chain := &input.Chain{}
	chain.Add(input.ListenerFunc(func(ev input.Event) bool {
		j.add("input")
		return false
	}))
	s := New([]Updater{&fakeUpdater{name: "u"}}, []render.Renderer{r}, WithInput(q, chain))
	closeScheduler(t, s)

	s.Frame(&gpu.Recorder{})
	require.NoError(t, s.round.Wait(context.Background()))

	q.Push(input.ResizeEvent(10, 10))
	info := s.Frame(&gpu.Recorder{})
	require.True(t, info.Promoted)
	assert.Equal(t, 1, info.Events)

	got := j.all()
	assert.Equal(t, []string{"draw r nodes-selected", "input", "promote r", "draw r nodes-selected"}, got)
}

// =============================================================================
// Failure Tests
// =============================================================================

func TestScheduler_FailuresAreIsolated(t *testing.T) {
	j := &journal{}
	ok := &fakeUpdater{name: "ok"}
	failing := &fakeUpdater{name: "failing", fn: func(context.Context) error { return errors.New("boom") }}
	panicking := &fakeUpdater{name: "panicking", fn: func(context.Context) error { panic("kaboom") }}
	r := &fakeRenderer{name: "r", layers: []layers.Layer{layers.Overlay}, j: j}
	obs := &countingObserver{}

	s := New([]Updater{ok, failing, panicking}, []render.Renderer{r}, WithObserver(obs))
	closeScheduler(t, s)

	s.Frame(&gpu.Recorder{})
	untilPromoted(t, s, &gpu.Recorder{})

	assert.Equal(t, 1, r.updated, "a failed round still promotes the healthy pipelines")
	assert.Equal(t, uint64(2), s.Stats().Failures)
	assert.Equal(t, 1, obs.rounds)
	assert.Equal(t, 2, obs.failures)
	assert.Equal(t, map[string]int{"ok": 1, "failing": 1, "panicking": 1}, obs.updates)
	assert.Equal(t, int(s.Stats().Frames), obs.frames)
}

func TestScheduler_UploadErrorDoesNotStopFrame(t *testing.T) {
	j := &journal{}
	bad := &fakeRenderer{name: "bad", layers: []layers.Layer{layers.EdgesUnselected}, j: j, err: errors.New("upload")}
	good := &fakeRenderer{name: "good", layers: []layers.Layer{layers.NodesUnselected}, j: j}
	s := New([]Updater{&fakeUpdater{name: "u"}}, []render.Renderer{bad, good})
	closeScheduler(t, s)

	s.Frame(&gpu.Recorder{})
	info := untilPromoted(t, s, &gpu.Recorder{})
	assert.Equal(t, 2, info.Draws)
	assert.Equal(t, 1, good.updated)
}

// =============================================================================
// Pool and Close Tests
// =============================================================================

func TestPoolSize(t *testing.T) {
	tests := []struct {
		n, limit, want int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{3, 4, 3},
		{4, 4, 4},
		{9, 4, 4},
		{9, 2, 2},
	}
	for _, tt := range tests {
		if got := PoolSize(tt.n, tt.limit); got != tt.want {
			t.Errorf("PoolSize(%d, %d) = %d, want %d", tt.n, tt.limit, got, tt.want)
		}
	}
}

func TestScheduler_Workers(t *testing.T) {
	us := make([]Updater, 6)
	for i := range us {
		us[i] = &fakeUpdater{name: "u"}
	}
	s := New(us, nil)
	closeScheduler(t, s)
	assert.Equal(t, MaxWorkers, s.Workers())

	s2 := New(us, nil, WithMaxWorkers(2))
	closeScheduler(t, s2)
	assert.Equal(t, 2, s2.Workers())
}

func TestScheduler_CloseTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	u := &fakeUpdater{name: "stuck", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}
	s := New([]Updater{u}, nil)
	s.Frame(&gpu.Recorder{})
	<-started

	err := s.Close(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrCloseTimeout)
	assert.ErrorIs(t, s.Close(time.Second), ErrClosed)
}

func TestScheduler_NoDispatchAfterClose(t *testing.T) {
	u := &fakeUpdater{name: "u"}
	s := New([]Updater{u}, nil)
	require.NoError(t, s.Close(time.Second))

	info := s.Frame(&gpu.Recorder{})
	assert.False(t, info.Dispatched)
	assert.Zero(t, u.calls.Load())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{UpdateInFlight, "update-in-flight"},
		{UpdateComplete, "update-complete"},
		{State(7), "State(7)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State.String() = %q, want %q", got, tt.want)
		}
	}
}
