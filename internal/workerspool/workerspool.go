// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool holds the schedulers used by the tiled matrix multiplication strategies:
//
//   - Pool: a soft limit on the number of running goroutines, used for recursive fork/join splitting.
//     It never holds idle goroutines, so it can be shared process wide (see Default).
//   - Fixed: a set of persistent workers fed by a queue, with an explicit lifecycle (Close).
//   - Group: tracks a dynamic set of forked tasks and the first failure among them.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool limits the number of goroutines started for parallel work.
//
// Tasks are either started in a new goroutine, if there is room, or the caller is expected to
// run them inline (see StartIfAvailable and Fork).
type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// The actual number of goroutines is higher than that -- because of waits and such.
	maxParallelism int
	mu             sync.Mutex
	cond           sync.Cond // Signaled whenever numRunning is decreased.
	numRunning     int

	// extraParallelism is temporarily increased when a worker goes to sleep waiting on a join.
	extraParallelism atomic.Int32
}

// New returns a new Pool with the default parallelism (runtime.GOMAXPROCS(0)).
func New() *Pool {
	return NewWithParallelism(runtime.GOMAXPROCS(0))
}

// NewWithParallelism returns a new Pool with the given maxParallelism.
// See Pool.MaxParallelism for the meaning of 0 and negative values.
func NewWithParallelism(maxParallelism int) *Pool {
	p := &Pool{maxParallelism: maxParallelism}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

var defaultPool = sync.OnceValue(New)

// Default returns the process wide Pool, created on first use.
//
// A Pool holds no goroutines while idle, so the default pool needs no shutdown.
func Default() *Pool {
	return defaultPool()
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0)
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0)
func (p *Pool) IsUnlimited() bool {
	return p.maxParallelism < 0
}

// MaxParallelism is a soft-target for parallelism (the limit of goroutines is higher than this).
// If set to 0 parallelism is disabled.
// If set to -1 parallelism is unlimited.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

const goroutineToParallelismRatio = 2

// lockedIsFull returns whether all available slots are in use.
//
// It must be called with Pool.mu acquired.
func (p *Pool) lockedIsFull() bool {
	if p.maxParallelism == 0 {
		return true
	} else if p.maxParallelism < 0 {
		return false
	}
	return p.numRunning >= goroutineToParallelismRatio*p.maxParallelism+int(p.extraParallelism.Load())
}

// WaitToStart waits until there is a slot available and starts task in a new goroutine.
//
// If parallelism is disabled (maxParallelism is 0), it runs the task inline and returns when it is finished.
func (p *Pool) WaitToStart(task func()) {
	if p.IsUnlimited() {
		go task()
		return
	} else if p.maxParallelism == 0 {
		task()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.lockedIsFull() {
		p.cond.Wait()
	}
	p.lockedRunTaskInGoroutine(task)
}

// lockedRunTaskInGoroutine starts task and keeps tabs on p.numRunning.
//
// It must be called with Pool.mu acquired.
func (p *Pool) lockedRunTaskInGoroutine(task func()) {
	p.numRunning++
	go func() {
		defer func() {
			p.mu.Lock()
			p.numRunning--
			p.cond.Signal()
			p.mu.Unlock()
		}()
		task()
	}()
}

// StartIfAvailable runs the task in a separate goroutine, if there is a slot left.
// It returns true if the task was started, false otherwise.
//
// It's up to the caller to synchronize the end of the task execution.
func (p *Pool) StartIfAvailable(task func()) bool {
	if p.IsUnlimited() {
		go task()
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lockedIsFull() {
		return false
	}
	p.lockedRunTaskInGoroutine(task)
	return true
}

// Fork starts task in a new goroutine if there is a slot available, otherwise it runs it inline
// before returning.
//
// The returned join function blocks until task has finished. While blocked, the caller is
// accounted as asleep (see WorkerIsAsleep), so a task waiting on its children does not hold
// a slot. join must be called exactly once.
func (p *Pool) Fork(task func()) (join func()) {
	done := make(chan struct{})
	started := p.StartIfAvailable(func() {
		defer close(done)
		task()
	})
	if !started {
		task()
		return func() {}
	}
	return func() {
		select {
		case <-done:
			return
		default:
		}
		p.WorkerIsAsleep()
		<-done
		p.WorkerRestarted()
	}
}

// WorkerIsAsleep indicates the worker (the one that called the method) is going to sleep waiting
// for other workers, and temporarily increases the available number of slots.
//
// Call WorkerRestarted when the worker is ready to run again.
func (p *Pool) WorkerIsAsleep() {
	p.extraParallelism.Add(1)
	p.mu.Lock()
	p.cond.Signal()
	p.mu.Unlock()
}

// WorkerRestarted indicates the worker (the one that called the method) is ready to run again.
// It should only be called after WorkerIsAsleep.
func (p *Pool) WorkerRestarted() {
	p.extraParallelism.Add(-1)
}
