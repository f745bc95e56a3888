// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"
	"testing"

	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	a := matrix.FromRows([][]int32{{1, 2, 3}, {4, 5, 6}})
	b := matrix.FromRows([][]int32{{7, 8}, {9, 10}, {11, 12}})
	require.NoError(t, Validate(a, b))

	t.Run("Nil", func(t *testing.T) {
		var shapeErr *ShapeError
		require.ErrorAs(t, Validate(nil, b), &shapeErr)
		assert.Equal(t, "A", shapeErr.Operand)
		require.ErrorAs(t, Validate(a, nil), &shapeErr)
		assert.Equal(t, "B", shapeErr.Operand)
	})

	t.Run("Empty", func(t *testing.T) {
		var shapeErr *ShapeError
		require.ErrorAs(t, Validate(matrix.FromRows[int32](nil), b), &shapeErr)
		assert.Equal(t, "A", shapeErr.Operand)
		require.ErrorAs(t, Validate(a, matrix.FromRows([][]int32{{}, {}, {}})), &shapeErr)
		assert.Equal(t, "B", shapeErr.Operand)
	})

	t.Run("Ragged", func(t *testing.T) {
		ragged := matrix.FromRows([][]int32{{1, 2, 3}, {4, 5}})
		var raggedErr *RaggedRowsError
		require.ErrorAs(t, Validate(ragged, b), &raggedErr)
		assert.Equal(t, "A", raggedErr.Operand)
		assert.Equal(t, 1, raggedErr.Row)
		assert.Equal(t, 2, raggedErr.Length)
		assert.Equal(t, 3, raggedErr.Want)

		raggedB := matrix.FromRows([][]int32{{7, 8}, {9, 10}, {11}})
		require.ErrorAs(t, Validate(a, raggedB), &raggedErr)
		assert.Equal(t, "B", raggedErr.Operand)
		assert.Equal(t, 2, raggedErr.Row)

		// An empty first row followed by longer rows is ragged, not column-less.
		emptyFirst := matrix.FromRows([][]int32{{}, {1, 2, 3}})
		require.ErrorAs(t, Validate(emptyFirst, b), &raggedErr)
		assert.Equal(t, "A", raggedErr.Operand)
		assert.Equal(t, 1, raggedErr.Row)
		assert.Equal(t, 3, raggedErr.Length)
		assert.Equal(t, 0, raggedErr.Want)

		// With both operands ragged, A is reported.
		require.ErrorAs(t, Validate(ragged, raggedB), &raggedErr)
		assert.Equal(t, "A", raggedErr.Operand)
	})

	t.Run("Order", func(t *testing.T) {
		// Absent operands are reported before ragged rows.
		ragged := matrix.FromRows([][]int32{{1, 2, 3}, {1}})
		var shapeErr *ShapeError
		require.ErrorAs(t, Validate(ragged, nil), &shapeErr)
		assert.Equal(t, "B", shapeErr.Operand)
		require.ErrorAs(t, Validate(ragged, matrix.FromRows[int32](nil)), &shapeErr)
		assert.Equal(t, "B", shapeErr.Operand)

		// Ragged rows are reported before missing columns.
		var raggedErr *RaggedRowsError
		require.ErrorAs(t, Validate(matrix.FromRows([][]int32{{}, {}}), matrix.FromRows([][]int32{{1}, {2, 3}})), &raggedErr)
		assert.Equal(t, "B", raggedErr.Operand)

		// Ragged rows are reported before dimension mismatches.
		require.ErrorAs(t, Validate(a, matrix.FromRows([][]int32{{1}, {2, 3}})), &raggedErr)
	})

	t.Run("Mismatch", func(t *testing.T) {
		var mismatchErr *DimensionMismatchError
		require.ErrorAs(t, Validate(a, a), &mismatchErr)
		assert.Equal(t, 3, mismatchErr.LeftCols)
		assert.Equal(t, 2, mismatchErr.RightRows)
	})

	t.Run("AllStrategies", func(t *testing.T) {
		for _, strategy := range StrategyValues() {
			c, err := Multiply(context.Background(), strategy, a, a)
			var mismatchErr *DimensionMismatchError
			require.Truef(t, errors.As(err, &mismatchErr), "strategy %s: unexpected error %v", strategy, err)
			require.Nil(t, c)
		}
	})
}
