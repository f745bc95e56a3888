// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package bench measures the matrix multiplication strategies of package matmul on square random
// matrices, and checks their results against the sequential reference.
//
// Example:
//
//	report, err := bench.Run(ctx, matmul.ParallelStrategies(), bench.DefaultOptions())
//	if err != nil { ... }
//	fmt.Println(report.Table())
package bench

import (
	"context"
	"runtime"
	"time"

	"github.com/gomlx/tiledmatmul/pkg/matmul"
	"github.com/gomlx/tiledmatmul/pkg/matrix"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
)

// Value is the type of the elements of the benchmarked matrices.
type Value = int32

// Options for Run.
type Options struct {
	// Size of the square matrices A, B and C.
	Size int

	// MinValue and MaxValue are the inclusive range of the generated values.
	MinValue, MaxValue Value

	// WarmUp is the number of untimed runs of each strategy before measuring.
	WarmUp int

	// Repeats is the number of timed runs of each strategy. It must be >= 1.
	Repeats int

	// Config of the strategies and of the generator. Set Config.Seed and Config.HasSeed
	// to benchmark the same matrices across runs.
	Config matmul.Config

	// ShowProgress displays a progress bar during the warm-up runs.
	ShowProgress bool
}

// DefaultOptions returns the options used by the command line tool: 10 warm-up runs
// and one timed run on 512×512 matrices with values in [0, 10].
func DefaultOptions() Options {
	return Options{
		Size:     512,
		MinValue: 0,
		MaxValue: 10,
		WarmUp:   10,
		Repeats:  1,
	}
}

// Result of benchmarking one strategy.
type Result struct {
	Strategy matmul.Strategy
	Size     int

	// Mean, StdDev and Best of the timed runs.
	Mean, StdDev, Best time.Duration

	// HeapBytes is the growth of the live heap across the timed runs (it may be negative after a GC).
	HeapBytes int64

	// PeakRSSBytes is the process peak resident set size after the timed runs, or 0 if not available.
	PeakRSSBytes int64

	// Correct reports whether the product matched the sequential reference.
	Correct bool
}

// Report of a Run.
type Report struct {
	RunID        uuid.UUID
	Size         int
	GenerateTime time.Duration
	OracleTime   time.Duration
	Results      []Result

	// A, B and Reference are the generated operands and their product by matmul.Sequential.
	A, B, Reference *matrix.Matrix[Value]
}

// Run generates two random Size×Size matrices, computes their product with matmul.Sequential, and then
// benchmarks each of the given strategies against it.
//
// A strategy that returns an error aborts the run, and the error is returned along with the
// partial report.
func Run(ctx context.Context, strategies []matmul.Strategy, opts Options) (*Report, error) {
	if opts.Size < 1 {
		return nil, errors.Errorf("bench.Run: invalid matrix size %d", opts.Size)
	}
	if opts.Repeats < 1 {
		return nil, errors.Errorf("bench.Run: Repeats must be >= 1, got %d", opts.Repeats)
	}
	if opts.WarmUp < 0 {
		return nil, errors.Errorf("bench.Run: invalid number of warm-up runs %d", opts.WarmUp)
	}
	report := &Report{RunID: uuid.New(), Size: opts.Size}
	options := []matmul.Option{matmul.WithConfig(opts.Config)}

	start := time.Now()
	var err error
	report.A, err = matmul.Generate(ctx, opts.Size, opts.Size, opts.MinValue, opts.MaxValue, options...)
	if err != nil {
		return nil, errors.WithMessage(err, "generating matrix A")
	}
	if opts.Config.HasSeed {
		// B must differ from A.
		options = append(options, matmul.WithSeed(opts.Config.Seed+1))
	}
	report.B, err = matmul.Generate(ctx, opts.Size, opts.Size, opts.MinValue, opts.MaxValue, options...)
	if err != nil {
		return nil, errors.WithMessage(err, "generating matrix B")
	}
	report.GenerateTime = time.Since(start)
	klog.Infof("run %s: matrices of size %d generated in %s", report.RunID, opts.Size, report.GenerateTime)

	start = time.Now()
	report.Reference, err = matmul.Sequential(report.A, report.B)
	if err != nil {
		return nil, err
	}
	report.OracleTime = time.Since(start)
	klog.Infof("run %s: sequential reference computed in %s", report.RunID, report.OracleTime)

	for _, strategy := range strategies {
		result, err := runStrategy(ctx, report, strategy, opts)
		if err != nil {
			return report, errors.WithMessagef(err, "benchmarking strategy %s", strategy)
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func runStrategy(ctx context.Context, report *Report, strategy matmul.Strategy, opts Options) (Result, error) {
	result := Result{Strategy: strategy, Size: opts.Size}
	options := []matmul.Option{matmul.WithConfig(opts.Config)}
	multiply := func() (*matrix.Matrix[Value], error) {
		return matmul.Multiply(ctx, strategy, report.A, report.B, options...)
	}

	progress := newWarmUpProgress(strategy, opts.WarmUp, opts.ShowProgress)
	for range opts.WarmUp {
		if _, err := multiply(); err != nil {
			progress.Close()
			return result, err
		}
		progress.Add()
	}
	progress.Close()

	runtime.GC()
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	heapBefore := memStats.HeapAlloc

	durations := make([]float64, 0, opts.Repeats)
	var product *matrix.Matrix[Value]
	for range opts.Repeats {
		start := time.Now()
		var err error
		product, err = multiply()
		if err != nil {
			return result, err
		}
		durations = append(durations, float64(time.Since(start)))
	}
	runtime.ReadMemStats(&memStats)
	result.HeapBytes = int64(memStats.HeapAlloc) - int64(heapBefore)
	result.PeakRSSBytes = peakRSS()

	mean, stdDev := stat.MeanStdDev(durations, nil)
	if len(durations) == 1 {
		stdDev = 0
	}
	result.Mean, result.StdDev = time.Duration(mean), time.Duration(stdDev)
	result.Best = time.Duration(durations[0])
	for _, d := range durations[1:] {
		result.Best = min(result.Best, time.Duration(d))
	}
	result.Correct = report.Reference.Equal(product)
	klog.V(1).Infof("run %s: %s took %s (± %s), correct=%v", report.RunID, strategy, result.Mean, result.StdDev, result.Correct)
	return result, nil
}
