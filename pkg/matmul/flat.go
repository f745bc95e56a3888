// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"

	"github.com/gomlx/tiledmatmul/internal/workerspool"
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// Flat multiplies a x b with one unit of work per band of BlockSize rows of the output, load balanced
// across the workers (see Config.Workers).
//
// Within a band it walks the column tiles and, if the shared dimension is longer than
// SharedSplitThreshold, blocks of BlockSize shared indices.
func Flat[T constraints.Integer](ctx context.Context, a, b *matrix.Matrix[T], options ...Option) (*matrix.Matrix[T], error) {
	if err := Validate(a, b); err != nil {
		return nil, err
	}
	cfg := newConfig(options)
	rows, shared, cols := a.NumRows(), a.NumCols(), b.NumCols()
	c := matrix.New[T](rows, cols)
	grid := NewGrid(rows, cols, BlockSize)
	sharedStep := shared
	if shared > SharedSplitThreshold {
		sharedStep = BlockSize
	}
	workers, release := cfg.acquireWorkers()
	defer release()
	klog.V(1).Infof("matmul.Flat(%s x %s): %d row bands, %d column tiles, shared step %d, %d workers",
		a.Shape(), b.Shape(), grid.RowTiles(), grid.ColTiles(), sharedStep, workers.NumWorkers())

	aRows, bRows, cRows := a.Rows(), b.Rows(), c.Rows()
	g, gctx := workerspool.NewGroup(ctx)
	workers.ParallelFor(grid.RowTiles(), func(tileRow int) {
		for tileCol := range grid.ColTiles() {
			tile := grid.Tile(tileRow, tileCol)
			for sharedStart := 0; sharedStart < shared; sharedStart += sharedStep {
				err := computeTile(gctx, aRows, bRows, cRows, tile, sharedStart, min(sharedStart+sharedStep, shared))
				if err != nil {
					g.Fail(err)
					return
				}
			}
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}
