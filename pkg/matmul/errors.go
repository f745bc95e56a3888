// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// ShapeError reports an absent matrix, or one without rows or columns.
type ShapeError struct {
	// Operand is "A", "B" or "generated".
	Operand string
	Reason  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid shape for matrix %s: %s", e.Operand, e.Reason)
}

// RaggedRowsError reports a matrix whose rows don't all have the same length as its first row.
type RaggedRowsError struct {
	Operand      string
	Row          int
	Length, Want int
}

func (e *RaggedRowsError) Error() string {
	return fmt.Sprintf("matrix %s has inconsistent row lengths: row %d has %d columns, row 0 has %d",
		e.Operand, e.Row, e.Length, e.Want)
}

// DimensionMismatchError reports that the number of columns of A differs from the number of rows of B.
type DimensionMismatchError struct {
	LeftCols, RightRows int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("number of columns of A (%d) must be equal to the number of rows of B (%d)",
		e.LeftCols, e.RightRows)
}

// RangeError reports an empty range of values requested from Generate.
type RangeError struct {
	Min, Max any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range of values [%v, %v]: min must be <= max", e.Min, e.Max)
}

// TaskFailure reports that the computation of a tile failed (panicked) while running concurrently.
type TaskFailure struct {
	Tile  Tile
	Cause error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("computation of tile %s failed: %v", e.Tile, e.Cause)
}

// Unwrap returns the cause of the failure.
func (e *TaskFailure) Unwrap() error { return e.Cause }

// CancellationError reports the operation was interrupted before completing.
// No partial result is returned along with it.
type CancellationError struct {
	// Cause is the context's cause, context.Canceled or context.DeadlineExceeded unless
	// a custom cause was given.
	Cause error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("matrix operation cancelled: %v", e.Cause)
}

// Unwrap returns the cause of the cancellation.
func (e *CancellationError) Unwrap() error { return e.Cause }

func newCancellationError(ctx context.Context) error {
	return errors.WithStack(&CancellationError{Cause: context.Cause(ctx)})
}

// newTaskFailure converts a recovered panic into a TaskFailure.
func newTaskFailure(tile Tile, exception any) error {
	cause, ok := exception.(error)
	if !ok {
		cause = errors.Errorf("%v", exception)
	}
	return errors.WithStack(&TaskFailure{Tile: tile, Cause: cause})
}
