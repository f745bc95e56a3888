// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"

	"github.com/gomlx/tiledmatmul/internal/workerspool"
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// WorkerPool multiplies a x b by submitting one task per BlockSize×BlockSize tile of the output to a
// fixed pool of workers (see Config.Workers).
//
// After the first failure the tiles not yet started are skipped, but all submitted tasks are waited for
// before returning.
func WorkerPool[T constraints.Integer](ctx context.Context, a, b *matrix.Matrix[T], options ...Option) (*matrix.Matrix[T], error) {
	if err := Validate(a, b); err != nil {
		return nil, err
	}
	cfg := newConfig(options)
	rows, shared, cols := a.NumRows(), a.NumCols(), b.NumCols()
	c := matrix.New[T](rows, cols)
	tiles := NewGrid(rows, cols, BlockSize).Tiles()
	workers, release := cfg.acquireWorkers()
	defer release()
	klog.V(1).Infof("matmul.WorkerPool(%s x %s): %d tiles, %d workers",
		a.Shape(), b.Shape(), len(tiles), workers.NumWorkers())

	aRows, bRows, cRows := a.Rows(), b.Rows(), c.Rows()
	g, gctx := workerspool.NewGroup(ctx)
	for _, tile := range tiles {
		if gctx.Err() != nil {
			g.Fail(newCancellationError(gctx))
			break
		}
		g.Add(1)
		err := workers.Submit(func() {
			defer g.Done()
			g.Fail(computeTile(gctx, aRows, bRows, cRows, tile, 0, shared))
		})
		if err != nil {
			g.Done()
			g.Fail(errors.WithMessagef(err, "submitting tile %s", tile))
			break
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}
