// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// MultiplyTile accumulates into the cells of c inside tile the product of a and b over the full
// shared dimension: c[row][col] += Σ_k a[row][k] * b[k][col].
//
// The loop order is row, shared index, column: for each row of the tile and each k, the scalar a[row][k]
// multiplies the contiguous segment b[k][ColStart:ColEnd] into the contiguous segment c[row][ColStart:ColEnd].
// Only cells inside the tile are written.
func MultiplyTile[T constraints.Integer](a, b, c [][]T, tile Tile, shared int) {
	multiplyTileRange(a, b, c, tile, 0, shared)
}

// multiplyTileRange is MultiplyTile restricted to the shared indices [sharedStart, sharedEnd).
func multiplyTileRange[T constraints.Integer](a, b, c [][]T, tile Tile, sharedStart, sharedEnd int) {
	for row := tile.RowStart; row < tile.RowEnd; row++ {
		aRow := a[row][sharedStart:sharedEnd]
		cRow := c[row][tile.ColStart:tile.ColEnd]
		for k, aValue := range aRow {
			bRow := b[sharedStart+k][tile.ColStart:tile.ColEnd]
			bRow = bRow[:len(cRow)] // Bounds check elimination.
			for col, bValue := range bRow {
				cRow[col] += aValue * bValue
			}
		}
	}
}

// testHookTile, if set, is called before a tile is computed by computeTile.
// Tests use it to inject failures.
var testHookTile func(tile Tile)

// computeTile is how the parallel strategies run the kernel: it checks for cancellation first, and
// converts a panic into a *TaskFailure.
func computeTile[T constraints.Integer](ctx context.Context, a, b, c [][]T, tile Tile, sharedStart, sharedEnd int) error {
	if ctx.Err() != nil {
		return newCancellationError(ctx)
	}
	exception := exceptions.Try(func() {
		if testHookTile != nil {
			testHookTile(tile)
		}
		multiplyTileRange(a, b, c, tile, sharedStart, sharedEnd)
	})
	if exception != nil {
		return newTaskFailure(tile, exception)
	}
	return nil
}
