// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolClosed is reported by futures of tasks submitted after Close.
var ErrPoolClosed = errors.New("parallel: pool closed")

// Task is one unit of update work. A returned error or a panic resolves the
// task's future with an error; it never affects other tasks.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	task Task
	fut  *Future
}

// WorkerPool runs tasks on a fixed set of goroutines.
//
// Each worker pulls from its own queue and steals from the others when its
// queue is empty, so one slow task does not hold back work queued behind it
// on the same worker.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// queues holds per-worker job queues.
	queues []chan job

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// inFlight counts submitted tasks that have not resolved yet.
	inFlight atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan job, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan job, queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	mine := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(mine)
			return

		case j := <-mine:
			p.run(j)

		default:
			if j, ok := p.steal(id); ok {
				p.run(j)
				continue
			}
			select {
			case <-p.done:
				p.drain(mine)
				return
			case j := <-mine:
				p.run(j)
			}
		}
	}
}

// run executes one job and resolves its future, converting panics into
// *PanicError.
func (p *WorkerPool) run(j job) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
		p.inFlight.Add(-1)
		j.fut.resolve(err)
	}()
	err = j.task(j.ctx)
}

// drain executes all remaining jobs in a queue.
func (p *WorkerPool) drain(q chan job) {
	for {
		select {
		case j := <-q:
			p.run(j)
		default:
			return
		}
	}
}

// steal takes a job from another worker's queue.
func (p *WorkerPool) steal(self int) (job, bool) {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case j := <-p.queues[i]:
			return j, true
		default:
		}
	}
	return job{}, false
}

// Submit queues one task on the worker with the shortest queue and returns
// its future. After Close the future is already resolved with
// ErrPoolClosed.
func (p *WorkerPool) Submit(ctx context.Context, task Task) *Future {
	fut := newFuture()
	if task == nil {
		fut.resolve(nil)
		return fut
	}
	if !p.running.Load() {
		fut.resolve(ErrPoolClosed)
		return fut
	}

	minIdx, minLen := 0, len(p.queues[0])
	for i := 1; i < p.workers; i++ {
		if l := len(p.queues[i]); l < minLen {
			minIdx, minLen = i, l
		}
	}

	p.inFlight.Add(1)
	select {
	case p.queues[minIdx] <- job{ctx: ctx, task: task, fut: fut}:
	case <-p.done:
		p.inFlight.Add(-1)
		fut.resolve(ErrPoolClosed)
	}
	return fut
}

// Go submits every task and returns a Group resolving when all of them
// have.
func (p *WorkerPool) Go(ctx context.Context, tasks ...Task) *Group {
	g := &Group{futures: make([]*Future, len(tasks))}
	for i, t := range tasks {
		g.futures[i] = p.Submit(ctx, t)
	}
	return g
}

// Close stops accepting work, runs everything already queued and waits for
// the workers to exit. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if p.running.CompareAndSwap(true, false) {
		close(p.done)
	}
	p.wg.Wait()
}

// CloseTimeout is Close with a bound on the wait. It reports whether the
// workers exited in time; if not, the pool is abandoned and its remaining
// goroutines finish in the background.
func (p *WorkerPool) CloseTimeout(d time.Duration) bool {
	if p.running.CompareAndSwap(true, false) {
		close(p.done)
	}

	exited := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(exited)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-exited:
		return true
	case <-timer.C:
		return false
	}
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// InFlight returns the number of submitted tasks not yet resolved.
func (p *WorkerPool) InFlight() int {
	return int(p.inFlight.Load())
}

// QueuedWork returns the number of jobs waiting in queues. This is an
// approximation as queues can change while iterating.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}
