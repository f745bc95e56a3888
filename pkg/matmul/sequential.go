// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"golang.org/x/exp/constraints"
)

// Sequential multiplies a x b with the plain rows × columns × shared triple loop, on the calling goroutine.
//
// It is not blocked nor parallelized: it is meant as the correctness reference for the other strategies.
func Sequential[T constraints.Integer](a, b *matrix.Matrix[T]) (*matrix.Matrix[T], error) {
	if err := Validate(a, b); err != nil {
		return nil, err
	}
	rows, shared, cols := a.NumRows(), a.NumCols(), b.NumCols()
	c := matrix.New[T](rows, cols)
	aRows, bRows := a.Rows(), b.Rows()
	for row := range rows {
		cRow := c.Row(row)
		for col := range cols {
			var sum T
			for k := range shared {
				sum += aRows[row][k] * bRows[k][col]
			}
			cRow[col] = sum
		}
	}
	return c, nil
}
