// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"
	"fmt"
	"strings"

	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Strategy enumerates the multiplication strategies.
//
// It is converted to snake-format strings (e.g.: StrategyForkJoin -> "fork_join"), and can be converted
// back from a string with StrategyString.
type Strategy int

const (
	StrategySequential Strategy = iota
	StrategyFlat
	StrategyForkJoin
	StrategyWorkerPool
	StrategyStaticThreads
)

var strategyNames = []string{"sequential", "flat", "fork_join", "worker_pool", "static_threads"}

// strategyAliases are the short names accepted by the command line.
var strategyAliases = map[string]Strategy{
	"seq":      StrategySequential,
	"par":      StrategyFlat,
	"forkjoin": StrategyForkJoin,
	"exec":     StrategyWorkerPool,
	"thread":   StrategyStaticThreads,
}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// IsAStrategy returns whether s is one of the defined strategies.
func (s Strategy) IsAStrategy() bool {
	return s >= 0 && int(s) < len(strategyNames)
}

// StrategyValues returns all strategies, in order.
func StrategyValues() []Strategy {
	return []Strategy{StrategySequential, StrategyFlat, StrategyForkJoin, StrategyWorkerPool, StrategyStaticThreads}
}

// ParallelStrategies returns all strategies except StrategySequential.
func ParallelStrategies() []Strategy {
	return StrategyValues()[1:]
}

// StrategyString returns the Strategy for the given name or alias ("seq", "par", "forkjoin", "exec", "thread").
// The comparison is case-insensitive, and "-" is accepted in place of "_".
func StrategyString(name string) (Strategy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for ii, strategyName := range strategyNames {
		if normalized == strategyName {
			return Strategy(ii), nil
		}
	}
	if s, found := strategyAliases[normalized]; found {
		return s, nil
	}
	return 0, errors.Errorf("%q does not belong to Strategy values %v", name, strategyNames)
}

// Multiply computes a x b with the given strategy.
//
// StrategySequential ignores the options and checks ctx only before starting.
func Multiply[T constraints.Integer](ctx context.Context, strategy Strategy, a, b *matrix.Matrix[T], options ...Option) (*matrix.Matrix[T], error) {
	switch strategy {
	case StrategySequential:
		if ctx.Err() != nil {
			return nil, newCancellationError(ctx)
		}
		return Sequential(a, b)
	case StrategyFlat:
		return Flat(ctx, a, b, options...)
	case StrategyForkJoin:
		return ForkJoin(ctx, a, b, options...)
	case StrategyWorkerPool:
		return WorkerPool(ctx, a, b, options...)
	case StrategyStaticThreads:
		return StaticThreads(ctx, a, b, options...)
	default:
		return nil, errors.Errorf("unknown matrix multiplication strategy %s", strategy)
	}
}
