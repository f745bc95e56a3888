// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"

	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"golang.org/x/exp/constraints"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// StaticThreads multiplies a x b by splitting the row-major list of tiles in contiguous ranges of
// ceil(numTiles/parallelism) tiles, each computed by its own goroutine. There is no rebalancing.
func StaticThreads[T constraints.Integer](ctx context.Context, a, b *matrix.Matrix[T], options ...Option) (*matrix.Matrix[T], error) {
	if err := Validate(a, b); err != nil {
		return nil, err
	}
	cfg := newConfig(options)
	rows, shared, cols := a.NumRows(), a.NumCols(), b.NumCols()
	c := matrix.New[T](rows, cols)
	grid := NewGrid(rows, cols, BlockSize)
	numTiles := grid.NumTiles()
	numThreads := cfg.parallelism()
	tilesPerThread := (numTiles + numThreads - 1) / numThreads
	klog.V(1).Infof("matmul.StaticThreads(%s x %s): %d tiles, %d threads, %d tiles per thread",
		a.Shape(), b.Shape(), numTiles, numThreads, tilesPerThread)

	aRows, bRows, cRows := a.Rows(), b.Rows(), c.Rows()
	eg, egCtx := errgroup.WithContext(ctx)
	for thread := range numThreads {
		start := thread * tilesPerThread
		end := min(start+tilesPerThread, numTiles)
		if start >= end {
			break
		}
		eg.Go(func() error {
			klog.V(2).Infof("matmul.StaticThreads: thread #%d computes tiles [%d, %d)", thread, start, end)
			for idx := start; idx < end; idx++ {
				if err := computeTile(egCtx, aRows, bRows, cRows, grid.TileAt(idx), 0, shared); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}
