// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrClosed is returned when submitting work to a Fixed pool that was already closed.
var ErrClosed = errors.New("workerspool: pool is closed")

// Fixed is a pool of persistent workers, spawned once at creation and fed through a queue.
//
// It must be closed with Close, which waits for the queued work to finish and for every
// worker to exit:
//
//	workers := workerspool.NewFixed(0)
//	defer workers.Close()
type Fixed struct {
	numWorkers int
	queue      chan func()

	// mu protects closed against concurrent Submit and Close: Submit holds a read lock while sending.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	exited    sync.WaitGroup
}

// NewFixed creates a pool with numWorkers persistent workers.
// If numWorkers <= 0, it uses runtime.GOMAXPROCS(0).
func NewFixed(numWorkers int) *Fixed {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	f := &Fixed{
		numWorkers: numWorkers,
		// Enough buffer for every worker to have pending work.
		queue: make(chan func(), numWorkers*2),
	}
	f.exited.Add(numWorkers)
	for range numWorkers {
		go f.worker()
	}
	return f
}

func (f *Fixed) worker() {
	defer f.exited.Done()
	for task := range f.queue {
		f.run(task)
	}
}

// run executes one task, keeping the worker alive if it panics.
// Tasks are expected to handle their own failures, so this is only logged.
func (f *Fixed) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("workerspool: task panicked and was not handled: %v", r)
		}
	}()
	task()
}

// NumWorkers returns the number of workers in the pool.
func (f *Fixed) NumWorkers() int {
	return f.numWorkers
}

// Submit enqueues task to be run by one of the workers. It blocks while the queue is full.
//
// It returns ErrClosed if the pool was closed.
func (f *Fixed) Submit(task func()) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return ErrClosed
	}
	f.queue <- task
	return nil
}

// ParallelFor calls fn for each index in [0, n) using the workers, and blocks until all calls return.
//
// Indices are claimed one at a time from an atomic counter, so workers that finish early keep
// taking work from the others. If the pool is closed, it runs sequentially on the caller.
func (f *Fixed) ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := min(f.numWorkers, n)
	if workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	claim := func() {
		for {
			i := int(next.Add(1)) - 1
			if i >= n {
				return
			}
			fn(i)
		}
	}
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		err := f.Submit(func() {
			defer wg.Done()
			claim()
		})
		if err != nil {
			wg.Done()
			claim()
		}
	}
	wg.Wait()
}

// Close stops accepting work, waits for the queued work to finish and for all workers to exit.
// Calling Close multiple times is safe.
func (f *Fixed) Close() {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.queue)
		f.mu.Unlock()
	})
	f.exited.Wait()
}
