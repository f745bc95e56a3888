// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package matmul implements dense integer matrix multiplication C = A x B with several
// parallel decomposition and scheduling strategies, all sharing the same contract:
//
//   - Flat: one unit of work per band of BlockSize rows, load balanced across a fixed set of workers.
//   - ForkJoin: recursive bisection of the output along its larger span, down to one block.
//   - WorkerPool: every BlockSize×BlockSize tile is submitted as a task to a fixed-size pool.
//   - StaticThreads: the ordered list of tiles is split in contiguous ranges, one per goroutine.
//
// Sequential is the plain triple loop used as the correctness oracle, and Generate fills a matrix
// with random values using the same recursive splitting as ForkJoin.
//
// Every strategy validates its inputs (see Validate) before starting any goroutine, blocks until all of
// its work has finished, and returns either the complete product or an error, never a partially
// computed matrix. Use Multiply to select a strategy by its Strategy value (see StrategyString
// to parse names).
package matmul

const (
	// BlockSize bounds the number of rows and columns of a tile of the output.
	// A tile's working set (one output row segment and one B row segment per shared index) fits in L1.
	BlockSize = 64

	// SharedSplitThreshold is the shared dimension length above which Flat also blocks the shared
	// dimension in chunks of BlockSize.
	SharedSplitThreshold = 8 * BlockSize

	// GenerateTileSize is the maximum number of rows filled by one leaf task of Generate.
	GenerateTileSize = 128
)
