// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package matrix defines the dense, row-major integer Matrix used by the multiplication strategies.
//
// Each row is a contiguous []T. Matrices created with New share one flat backing array, while
// FromRows wraps the caller's rows as they are, possibly ragged, which is what
// matmul.Validate checks for.
package matrix

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"golang.org/x/exp/constraints"
)

// Matrix is a rectangular container of fixed-width integers, stored as rows.
//
// A nil *Matrix is treated as an absent matrix by the validator.
type Matrix[T constraints.Integer] struct {
	rows [][]T
}

// New allocates a zeroed rows×cols matrix, with all rows sliced from one contiguous buffer.
//
// It panics if rows or cols is negative.
func New[T constraints.Integer](rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		exceptions.Panicf("matrix.New: invalid dimensions %dx%d", rows, cols)
	}
	flat := make([]T, rows*cols)
	m := &Matrix[T]{rows: make([][]T, rows)}
	for row := range rows {
		m.rows[row] = flat[row*cols : (row+1)*cols : (row+1)*cols]
	}
	return m
}

// FromRows wraps the given rows without copying them.
//
// No checks are made: rows can be empty or ragged.
func FromRows[T constraints.Integer](rows [][]T) *Matrix[T] {
	return &Matrix[T]{rows: rows}
}

// NumRows returns the number of rows.
func (m *Matrix[T]) NumRows() int {
	return len(m.rows)
}

// NumCols returns the length of the first row, or 0 if the matrix has no rows.
func (m *Matrix[T]) NumCols() int {
	if len(m.rows) == 0 {
		return 0
	}
	return len(m.rows[0])
}

// Shape returns the dimensions formatted as "rows×cols".
func (m *Matrix[T]) Shape() string {
	return fmt.Sprintf("%d×%d", m.NumRows(), m.NumCols())
}

// Row returns the row as a slice: changes to it are reflected in the matrix.
func (m *Matrix[T]) Row(row int) []T {
	return m.rows[row]
}

// Rows returns the underlying rows.
func (m *Matrix[T]) Rows() [][]T {
	return m.rows
}

// At returns the value at (row, col).
func (m *Matrix[T]) At(row, col int) T {
	return m.rows[row][col]
}

// Set the value at (row, col).
func (m *Matrix[T]) Set(row, col int, value T) {
	m.rows[row][col] = value
}

// Equal returns whether both matrices have the same shape and values.
// Two nil matrices are equal.
func (m *Matrix[T]) Equal(other *Matrix[T]) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.rows) != len(other.rows) {
		return false
	}
	for row, values := range m.rows {
		otherValues := other.rows[row]
		if len(values) != len(otherValues) {
			return false
		}
		for col, v := range values {
			if v != otherValues[col] {
				return false
			}
		}
	}
	return true
}

// String prints one bracketed row per line, e.g.:
//
//	[58 64]
//	[139 154]
func (m *Matrix[T]) String() string {
	if m == nil {
		return "<nil>"
	}
	var sb strings.Builder
	for row, values := range m.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		_, _ = fmt.Fprint(&sb, values)
	}
	return sb.String()
}
