// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	grid := NewGrid(129, 70, 64)
	assert.Equal(t, 3, grid.RowTiles())
	assert.Equal(t, 2, grid.ColTiles())
	assert.Equal(t, 6, grid.NumTiles())
	assert.Equal(t, Tile{RowStart: 128, RowEnd: 129, ColStart: 64, ColEnd: 70}, grid.Tile(2, 1))
	assert.Equal(t, grid.Tile(1, 0), grid.TileAt(2))
	assert.Equal(t, Tile{0, 129, 0, 70}, grid.Whole())
	start, end := grid.RowBand(2)
	assert.Equal(t, 128, start)
	assert.Equal(t, 129, end)
	assert.Equal(t, "[128:129, 64:70]", grid.Tile(2, 1).String())

	require.Panics(t, func() { NewGrid(10, 10, 0) })
	require.Panics(t, func() { NewGrid(-1, 10, 64) })
}

// TestGridPartition checks that the tiles cover every cell exactly once.
func TestGridPartition(t *testing.T) {
	for _, blockSize := range []int{1, 3, 7, 64} {
		for _, dims := range [][2]int{{1, 1}, {1, 200}, {63, 65}, {64, 64}, {129, 70}, {200, 1}} {
			rows, cols := dims[0], dims[1]
			t.Run(fmt.Sprintf("%dx%d/block=%d", rows, cols, blockSize), func(t *testing.T) {
				grid := NewGrid(rows, cols, blockSize)
				counts := make([]int, rows*cols)
				tiles := grid.Tiles()
				require.Len(t, tiles, grid.NumTiles())
				for idx, tile := range tiles {
					require.Equal(t, tile, grid.TileAt(idx))
					require.LessOrEqual(t, tile.NumRows(), blockSize)
					require.LessOrEqual(t, tile.NumCols(), blockSize)
					require.Positive(t, tile.NumRows())
					require.Positive(t, tile.NumCols())
					for row := tile.RowStart; row < tile.RowEnd; row++ {
						for col := tile.ColStart; col < tile.ColEnd; col++ {
							counts[row*cols+col]++
						}
					}
				}
				for cell, count := range counts {
					require.Equalf(t, 1, count, "cell (%d, %d) covered %d times", cell/cols, cell%cols, count)
				}
			})
		}
	}
}

func TestTileBisect(t *testing.T) {
	// Ties split the rows.
	first, second := Tile{0, 128, 0, 128}.Bisect()
	assert.Equal(t, Tile{0, 64, 0, 128}, first)
	assert.Equal(t, Tile{64, 128, 0, 128}, second)

	// Larger span is split, at the floor of the midpoint.
	first, second = Tile{10, 20, 5, 130}.Bisect()
	assert.Equal(t, Tile{10, 20, 5, 67}, first)
	assert.Equal(t, Tile{10, 20, 67, 130}, second)

	first, second = Tile{0, 3, 0, 1}.Bisect()
	assert.Equal(t, Tile{0, 1, 0, 1}, first)
	assert.Equal(t, Tile{1, 3, 0, 1}, second)
	assert.True(t, second.Contains(2, 0))
	assert.False(t, second.Contains(0, 0))
}
