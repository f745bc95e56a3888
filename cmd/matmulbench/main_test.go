// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"math"
	"strconv"
	"testing"

	"github.com/gomlx/tiledmatmul/pkg/matmul"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategies(t *testing.T) {
	strategies, err := parseStrategies("all")
	require.NoError(t, err)
	assert.Equal(t, matmul.StrategyValues(), strategies)

	strategies, err = parseStrategies("seq,forkjoin,worker_pool")
	require.NoError(t, err)
	assert.Equal(t, []matmul.Strategy{matmul.StrategySequential, matmul.StrategyForkJoin, matmul.StrategyWorkerPool}, strategies)

	_, err = parseStrategies("seq,unknown")
	require.Error(t, err)
}

func TestBuildOptions(t *testing.T) {
	strategies, opts, err := buildOptions([]string{"thread", "100"})
	require.NoError(t, err)
	assert.Equal(t, []matmul.Strategy{matmul.StrategyStaticThreads}, strategies)
	assert.Equal(t, 100, opts.Size)
	assert.Equal(t, 10, opts.WarmUp)

	_, _, err = buildOptions([]string{"thread", "big"})
	require.Error(t, err)
	_, _, err = buildOptions([]string{"thread"})
	require.Error(t, err)

	if strconv.IntSize == 64 {
		tooLarge := int64(math.MaxInt32) + 1
		*flagMax = int(tooLarge)
		_, _, err = buildOptions(nil)
		require.ErrorContains(t, err, "-max=2147483648")
		*flagMax = int(defaults.MaxValue)
		*flagMin = int(-tooLarge - 1)
		_, _, err = buildOptions(nil)
		require.ErrorContains(t, err, "-min=")
	}
	*flagMin = math.MinInt32
	_, opts, err = buildOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), opts.MinValue)
	*flagMin = int(defaults.MinValue)

	*flagSeed = 3
	defer func() { *flagSeed = -1 }()
	_, opts, err = buildOptions(nil)
	require.NoError(t, err)
	assert.True(t, opts.Config.HasSeed)
	assert.Equal(t, uint64(3), opts.Config.Seed)
}
