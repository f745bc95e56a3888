// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Validate checks that a and b are well-formed and can be multiplied as a x b.
//
// Checks are made in order: first whether either operand is nil or has no rows (*ShapeError), then
// whether the rows of A, then of B, differ in length from their first row (*RaggedRowsError), then
// whether either has no columns (*ShapeError), and finally whether the columns of a match the rows
// of b (*DimensionMismatchError). Use errors.As to inspect them.
func Validate[T constraints.Integer](a, b *matrix.Matrix[T]) error {
	operands := []struct {
		name string
		m    *matrix.Matrix[T]
	}{{"A", a}, {"B", b}}
	for _, op := range operands {
		if op.m == nil {
			return errors.WithStack(&ShapeError{Operand: op.name, Reason: "matrix is nil"})
		}
		if op.m.NumRows() == 0 {
			return errors.WithStack(&ShapeError{Operand: op.name, Reason: "matrix has no rows"})
		}
	}
	for _, op := range operands {
		if err := checkRagged(op.name, op.m); err != nil {
			return err
		}
	}
	for _, op := range operands {
		if op.m.NumCols() == 0 {
			return errors.WithStack(&ShapeError{Operand: op.name, Reason: "matrix has no columns"})
		}
	}
	if a.NumCols() != b.NumRows() {
		return errors.WithStack(&DimensionMismatchError{LeftCols: a.NumCols(), RightRows: b.NumRows()})
	}
	return nil
}

// checkRagged returns a *RaggedRowsError for the first row whose length differs from row 0.
func checkRagged[T constraints.Integer](name string, m *matrix.Matrix[T]) error {
	numCols := m.NumCols()
	for row, values := range m.Rows() {
		if len(values) != numCols {
			return errors.WithStack(&RaggedRowsError{Operand: name, Row: row, Length: len(values), Want: numCols})
		}
	}
	return nil
}
