// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"
)

func requireInRange[T constraints.Integer](t *testing.T, m *matrix.Matrix[T], minValue, maxValue T) {
	t.Helper()
	for row, values := range m.Rows() {
		for col, value := range values {
			require.Truef(t, value >= minValue && value <= maxValue,
				"value %d at (%d, %d) out of range [%d, %d]", value, row, col, minValue, maxValue)
		}
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("Shape", func(t *testing.T) {
		for _, dims := range [][2]int{{1, 1}, {1, 7}, {300, 3}, {129, 64}, {5, 1000}} {
			m, err := Generate[int32](ctx, dims[0], dims[1], -5, 5)
			require.NoError(t, err)
			require.Equal(t, dims[0], m.NumRows())
			require.Equal(t, dims[1], m.NumCols())
			for _, values := range m.Rows() {
				require.Len(t, values, dims[1])
			}
			requireInRange(t, m, -5, 5)
		}
	})

	t.Run("SingleValue", func(t *testing.T) {
		m, err := Generate[int64](ctx, 10, 11, 42, 42)
		require.NoError(t, err)
		requireInRange(t, m, 42, 42)
	})

	t.Run("OddColumns", func(t *testing.T) {
		m, err := Generate[uint8](ctx, 200, 3, 10, 12)
		require.NoError(t, err)
		requireInRange(t, m, 10, 12)
		seen := make(map[uint8]bool)
		for _, values := range m.Rows() {
			seen[values[2]] = true
		}
		assert.Len(t, seen, 3, "the last column should take all values in range")
	})

	t.Run("FullRange", func(t *testing.T) {
		m, err := Generate[int8](ctx, 64, 64, math.MinInt8, math.MaxInt8)
		require.NoError(t, err)
		var hasNegative, hasPositive bool
		for _, values := range m.Rows() {
			for _, value := range values {
				hasNegative = hasNegative || value < 0
				hasPositive = hasPositive || value > 0
			}
		}
		assert.True(t, hasNegative)
		assert.True(t, hasPositive)

		wide, err := Generate[int64](ctx, 20, 21, math.MinInt64, math.MaxInt64)
		require.NoError(t, err)
		assert.False(t, wide.Equal(matrix.New[int64](20, 21)))

		wider, err := Generate[uint64](ctx, 20, 21, 1<<40, 1<<41)
		require.NoError(t, err)
		requireInRange(t, wider, 1<<40, 1<<41)
	})

	t.Run("Reproducible", func(t *testing.T) {
		first, err := Generate[int32](ctx, 1000, 33, -100, 100, WithSeed(17), WithParallelism(4))
		require.NoError(t, err)
		second, err := Generate[int32](ctx, 1000, 33, -100, 100, WithSeed(17), WithParallelism(4))
		require.NoError(t, err)
		require.True(t, first.Equal(second))
		third, err := Generate[int32](ctx, 1000, 33, -100, 100, WithSeed(18), WithParallelism(4))
		require.NoError(t, err)
		require.False(t, first.Equal(third))
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := Generate[int32](ctx, 0, 3, 0, 1)
		var shapeErr *ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "generated", shapeErr.Operand)
		_, err = Generate[int32](ctx, 3, -1, 0, 1)
		require.ErrorAs(t, err, &shapeErr)

		_, err = Generate[int32](ctx, 3, 3, 2, 1)
		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, int32(2), rangeErr.Min)
	})
}

func TestReduce32(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, n := range []uint64{1, 2, 3, 7, 1000, 3 << 30, math.MaxUint32, 1 << 32} {
		for range 1000 {
			require.Less(t, reduce32(rng, rng.Uint32(), n), n)
		}
	}

	// With n = 3·2^30 a plain multiply-shift maps two inputs to every value ≡ 0 (mod 3) and one input
	// to the others, so half of the draws would be ≡ 0 (mod 3). They must be a third.
	const numDraws = 30_000
	var counts [3]int
	for range numDraws {
		counts[reduce32(rng, rng.Uint32(), 3<<30)%3]++
	}
	for residue, count := range counts {
		assert.InDeltaf(t, 1.0/3, float64(count)/numDraws, 0.02, "residue %d: %d of %d draws", residue, count, numDraws)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	cfg, err = ParseConfig("parallelism=8, seed=1")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.True(t, cfg.HasSeed)
	assert.Equal(t, uint64(1), cfg.Seed)

	for _, invalid := range []string{"parallelism", "parallelism=-1", "parallelism=x", "seed=-3", "workers=2"} {
		_, err = ParseConfig(invalid)
		require.Errorf(t, err, "configuration %q should have failed", invalid)
	}

	t.Setenv(ConfigEnvVar, "parallelism=3")
	cfg, err = ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Parallelism)
	assert.Equal(t, 3, cfg.parallelism())

	t.Setenv(ConfigEnvVar, "bogus=1")
	_, err = ConfigFromEnv()
	require.ErrorContains(t, err, ConfigEnvVar)
}

func TestOptions(t *testing.T) {
	cfg := newConfig([]Option{WithConfig(Config{Parallelism: 5}), WithSeed(3)})
	assert.Equal(t, 5, cfg.Parallelism)
	assert.Equal(t, uint64(3), cfg.Seed)
	assert.True(t, cfg.HasSeed)
	assert.Equal(t, 5, cfg.pool().MaxParallelism())

	cfg = newConfig(nil)
	assert.Positive(t, cfg.parallelism())
	workers, release := cfg.acquireWorkers()
	assert.Equal(t, cfg.parallelism(), workers.NumWorkers())
	release()
}
