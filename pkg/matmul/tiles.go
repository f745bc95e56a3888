// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// Tile is a half-open rectangular region [RowStart, RowEnd) × [ColStart, ColEnd) of the output matrix.
type Tile struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// NumRows spanned by the tile.
func (t Tile) NumRows() int { return t.RowEnd - t.RowStart }

// NumCols spanned by the tile.
func (t Tile) NumCols() int { return t.ColEnd - t.ColStart }

// Contains returns whether the cell (row, col) is inside the tile.
func (t Tile) Contains(row, col int) bool {
	return row >= t.RowStart && row < t.RowEnd && col >= t.ColStart && col < t.ColEnd
}

// Bisect splits the tile at the midpoint (floor) of its larger span.
// Ties split along rows.
func (t Tile) Bisect() (first, second Tile) {
	first, second = t, t
	if t.NumRows() >= t.NumCols() {
		mid := t.RowStart + t.NumRows()/2
		first.RowEnd, second.RowStart = mid, mid
	} else {
		mid := t.ColStart + t.NumCols()/2
		first.ColEnd, second.ColStart = mid, mid
	}
	return
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d]", t.RowStart, t.RowEnd, t.ColStart, t.ColEnd)
}

// Grid is the decomposition of a rows×cols output into tiles of at most blockSize×blockSize.
// Tiles on the bottom and right edges are clipped to the matrix bounds.
//
// Tiles are indexed in row-major order: index = tileRow*ColTiles() + tileCol.
type Grid struct {
	rows, cols, blockSize int
}

// NewGrid returns the tile grid of a rows×cols matrix.
// blockSize doesn't need to be a power of two, but it must be positive.
func NewGrid(rows, cols, blockSize int) Grid {
	if blockSize <= 0 || rows < 0 || cols < 0 {
		exceptions.Panicf("matmul.NewGrid: invalid grid %dx%d with block size %d", rows, cols, blockSize)
	}
	return Grid{rows: rows, cols: cols, blockSize: blockSize}
}

// RowTiles is the number of tiles needed to cover the rows (ceiling division).
func (g Grid) RowTiles() int { return (g.rows + g.blockSize - 1) / g.blockSize }

// ColTiles is the number of tiles needed to cover the columns (ceiling division).
func (g Grid) ColTiles() int { return (g.cols + g.blockSize - 1) / g.blockSize }

// NumTiles in the grid.
func (g Grid) NumTiles() int { return g.RowTiles() * g.ColTiles() }

// Whole returns the tile covering the full matrix.
func (g Grid) Whole() Tile {
	return Tile{RowStart: 0, RowEnd: g.rows, ColStart: 0, ColEnd: g.cols}
}

// RowBand returns the range of rows [start, end) covered by the tiles of the given tile row.
func (g Grid) RowBand(tileRow int) (start, end int) {
	start = tileRow * g.blockSize
	return start, min(start+g.blockSize, g.rows)
}

// Tile returns the tile at the given tile coordinates.
func (g Grid) Tile(tileRow, tileCol int) Tile {
	rowStart, rowEnd := g.RowBand(tileRow)
	colStart := tileCol * g.blockSize
	return Tile{
		RowStart: rowStart,
		RowEnd:   rowEnd,
		ColStart: colStart,
		ColEnd:   min(colStart+g.blockSize, g.cols),
	}
}

// TileAt returns the tile with the given row-major index.
func (g Grid) TileAt(index int) Tile {
	colTiles := g.ColTiles()
	return g.Tile(index/colTiles, index%colTiles)
}

// Tiles enumerates all tiles in row-major order.
func (g Grid) Tiles() []Tile {
	tiles := make([]Tile, 0, g.NumTiles())
	for tileRow := range g.RowTiles() {
		for tileCol := range g.ColTiles() {
			tiles = append(tiles, g.Tile(tileRow, tileCol))
		}
	}
	return tiles
}
