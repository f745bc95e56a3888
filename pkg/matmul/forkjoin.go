// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"

	"github.com/gomlx/tiledmatmul/internal/workerspool"
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// ForkJoin multiplies a x b by recursively bisecting the output along its larger span, until both
// spans are at most BlockSize.
//
// At each split the first half is forked on the Pool (see Config.Pool) if it has a slot available,
// and the second half is computed by the current goroutine, which then waits for the first.
func ForkJoin[T constraints.Integer](ctx context.Context, a, b *matrix.Matrix[T], options ...Option) (*matrix.Matrix[T], error) {
	if err := Validate(a, b); err != nil {
		return nil, err
	}
	cfg := newConfig(options)
	rows, cols := a.NumRows(), b.NumCols()
	c := matrix.New[T](rows, cols)
	g, gctx := workerspool.NewGroup(ctx)
	fj := &forkJoin[T]{
		ctx:    gctx,
		group:  g,
		pool:   cfg.pool(),
		a:      a.Rows(),
		b:      b.Rows(),
		c:      c.Rows(),
		shared: a.NumCols(),
	}
	klog.V(1).Infof("matmul.ForkJoin(%s x %s): pool max parallelism %d", a.Shape(), b.Shape(), fj.pool.MaxParallelism())

	root := NewGrid(rows, cols, BlockSize).Whole()
	g.Add(1)
	fj.pool.WaitToStart(func() {
		defer g.Done()
		fj.compute(root)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// forkJoin holds the state shared by all the recursive calls of one ForkJoin.
type forkJoin[T constraints.Integer] struct {
	ctx     context.Context
	group   *workerspool.Group
	pool    *workerspool.Pool
	a, b, c [][]T
	shared  int
}

func (fj *forkJoin[T]) compute(region Tile) {
	if fj.ctx.Err() != nil {
		fj.group.Fail(newCancellationError(fj.ctx))
		return
	}
	if region.NumRows() <= BlockSize && region.NumCols() <= BlockSize {
		fj.group.Fail(computeTile(fj.ctx, fj.a, fj.b, fj.c, region, 0, fj.shared))
		return
	}
	first, second := region.Bisect()
	join := fj.pool.Fork(func() { fj.compute(first) })
	fj.compute(second)
	join()
}
