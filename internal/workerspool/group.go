// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Group is a WaitGroup-like counter of running tasks that allows the count to be increased while
// someone is waiting on it, and that records the first failure reported by any task.
//
// The first failure cancels the Group's context, so tasks not yet started can skip their work.
type Group struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int64
	err   error

	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewGroup creates a Group whose context is derived from parent.
// The returned context is cancelled on the first failure or when the parent is cancelled.
func NewGroup(parent context.Context) (*Group, context.Context) {
	g := &Group{}
	g.cond = sync.NewCond(&g.mu)
	g.ctx, g.cancel = context.WithCancelCause(parent)
	return g, g.ctx
}

// Add changes the counter by the given delta.
// If the counter becomes zero, it wakes up all waiting goroutines.
// It panics if the counter goes negative.
func (g *Group) Add(delta int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count += int64(delta)
	if g.count < 0 {
		panic(errors.Errorf("workerspool.Group: negative counter"))
	}
	if g.count == 0 {
		g.cond.Broadcast()
	}
}

// Done decrements the counter by one.
func (g *Group) Done() {
	g.Add(-1)
}

// Fail records err if it is the first failure, and cancels the Group's context.
// A nil err is ignored.
func (g *Group) Fail(err error) {
	if err == nil {
		return
	}
	g.mu.Lock()
	if g.err == nil {
		g.err = err
	}
	g.mu.Unlock()
	g.cancel(err)
}

// Err returns the first failure recorded, or nil.
func (g *Group) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Wait blocks until the counter is zero, then releases the Group's context and returns the first
// failure recorded, if any.
func (g *Group) Wait() error {
	g.mu.Lock()
	for g.count > 0 {
		g.cond.Wait()
	}
	err := g.err
	g.mu.Unlock()
	g.cancel(nil)
	return err
}
