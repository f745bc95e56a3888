// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/tiledmatmul/internal/workerspool"
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"k8s.io/klog/v2"
)

// Generate returns a rows×cols matrix with values drawn uniformly from [minValue, maxValue] (inclusive).
// Each value is unbiased: draws that would favor some values are rejected and redrawn.
//
// The rows are split recursively, like ForkJoin, until a range has at most
// min(GenerateTileSize, ceil(rows/parallelism)) rows. Each such range is filled with its own random
// source, seeded from the seed (see WithSeed) and the index of its first row: the output for a given
// seed and parallelism doesn't depend on the scheduling.
func Generate[T constraints.Integer](ctx context.Context, rows, cols int, minValue, maxValue T, options ...Option) (*matrix.Matrix[T], error) {
	if rows < 1 || cols < 1 {
		return nil, errors.WithStack(&ShapeError{
			Operand: "generated",
			Reason:  "rows and columns must be >= 1",
		})
	}
	if minValue > maxValue {
		return nil, errors.WithStack(&RangeError{Min: minValue, Max: maxValue})
	}
	cfg := newConfig(options)
	seed := cfg.Seed
	if !cfg.HasSeed {
		seed = rand.Uint64()
	}
	parallelism := cfg.parallelism()
	threshold := max(1, min(GenerateTileSize, (rows+parallelism-1)/parallelism))
	klog.V(1).Infof("matmul.Generate(%dx%d, [%v, %v]): seed %d, %d rows per leaf", rows, cols, minValue, maxValue, seed, threshold)

	m := matrix.New[T](rows, cols)
	g, gctx := workerspool.NewGroup(ctx)
	gen := &generator[T]{
		ctx:       gctx,
		group:     g,
		pool:      cfg.pool(),
		m:         m,
		seed:      seed,
		threshold: threshold,
		minValue:  minValue,
		span:      uint64(maxValue) - uint64(minValue),
	}
	g.Add(1)
	gen.pool.WaitToStart(func() {
		defer g.Done()
		gen.fill(0, rows)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

type generator[T constraints.Integer] struct {
	ctx       context.Context
	group     *workerspool.Group
	pool      *workerspool.Pool
	m         *matrix.Matrix[T]
	seed      uint64
	threshold int

	// span is maxValue-minValue: the values are minValue+[0, span].
	minValue T
	span     uint64
}

// fill the rows [start, end).
func (gen *generator[T]) fill(start, end int) {
	if gen.ctx.Err() != nil {
		gen.group.Fail(newCancellationError(gen.ctx))
		return
	}
	if end-start <= gen.threshold {
		exception := exceptions.Try(func() { gen.fillLeaf(start, end) })
		if exception != nil {
			gen.group.Fail(newTaskFailure(Tile{RowStart: start, RowEnd: end, ColStart: 0, ColEnd: gen.m.NumCols()}, exception))
		}
		return
	}
	mid := start + (end-start)/2
	join := gen.pool.Fork(func() { gen.fill(start, mid) })
	gen.fill(mid, end)
	join()
}

func (gen *generator[T]) fillLeaf(start, end int) {
	rng := rand.New(rand.NewPCG(gen.seed, uint64(start)))
	base := uint64(gen.minValue)
	if gen.span > math.MaxUint32 {
		// Wide ranges: one 64-bit draw per value.
		for row := start; row < end; row++ {
			values := gen.m.Row(row)
			for col := range values {
				var offset uint64
				if gen.span == math.MaxUint64 {
					offset = rng.Uint64()
				} else {
					offset = rng.Uint64N(gen.span + 1)
				}
				values[col] = T(base + offset)
			}
		}
		return
	}

	// Two values per 64-bit draw, one from each 32-bit half.
	n := gen.span + 1
	for row := start; row < end; row++ {
		values := gen.m.Row(row)
		numPairs := len(values) / 2
		for pair := range numPairs {
			r := rng.Uint64()
			values[2*pair] = T(base + reduce32(rng, uint32(r), n))
			values[2*pair+1] = T(base + reduce32(rng, uint32(r>>32), n))
		}
		if len(values)%2 == 1 {
			values[len(values)-1] = T(base + rng.Uint64N(n))
		}
	}
}

// reduce32 maps the random x to [0, n), for 1 <= n <= 2^32, with a multiply-shift.
// Products falling in the biased low region are rejected and redrawn from rng, so all
// values in [0, n) are equally likely.
func reduce32(rng *rand.Rand, x uint32, n uint64) uint64 {
	if n > math.MaxUint32 {
		return uint64(x)
	}
	n32 := uint32(n)
	product := uint64(x) * n
	if uint32(product) < n32 {
		threshold := -n32 % n32 // 2^32 mod n.
		for uint32(product) < threshold {
			product = uint64(rng.Uint32()) * n
		}
	}
	return product >> 32
}
