// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// matmulbench benchmarks the tiled matrix multiplication strategies on random square matrices.
//
// Usage:
//
//	matmulbench [flags] [<impl> <size>]
//
// Where <impl> is a strategy name or alias ("seq", "par", "forkjoin", "exec", "thread"), or "all".
// See "matmulbench -help" for the flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/tiledmatmul/pkg/bench"
	"github.com/gomlx/tiledmatmul/pkg/matmul"
	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	defaults = bench.DefaultOptions()

	flagImpl = flag.String("impl", "all",
		"Comma-separated strategies to benchmark: names ("+strategyNames()+"), aliases (seq, par, forkjoin, exec, thread) or \"all\".")
	flagSize    = flag.Int("size", defaults.Size, "Size of the square matrices.")
	flagMin     = flag.Int("min", int(defaults.MinValue), "Minimum generated value (inclusive).")
	flagMax     = flag.Int("max", int(defaults.MaxValue), "Maximum generated value (inclusive).")
	flagWarmUp  = flag.Int("warmup", defaults.WarmUp, "Number of untimed runs of each strategy before measuring.")
	flagRepeats = flag.Int("repeats", defaults.Repeats, "Number of timed runs of each strategy.")
	flagSeed    = flag.Int64("seed", -1, "Seed for the generated matrices. If negative, a random seed is used.")
	flagConfig  = flag.String("config", os.Getenv(matmul.ConfigEnvVar),
		fmt.Sprintf("Configuration of the strategies, e.g.: \"parallelism=8\". Defaults to $%s.", matmul.ConfigEnvVar))
	flagCSV      = flag.String("csv", "", "If set, saves the results in CSV format to the given file.")
	flagPlot     = flag.String("plot", "", "If set, saves a bar chart of the times to the given file (e.g.: \"times.png\").")
	flagPrint    = flag.Bool("print", false, "Prints the matrices A, B and the product C. Only for sizes <= 16.")
	flagNoColor  = flag.Bool("no_color", false, "Disables colors in the output table.")
	flagProgress = flag.Bool("progress", true, "Displays a progress bar during the warm-up runs.")
)

func strategyNames() string {
	names := make([]string, 0, len(matmul.StrategyValues()))
	for _, s := range matmul.StrategyValues() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// parseStrategies parses a comma-separated list of strategies, or "all".
func parseStrategies(spec string) ([]matmul.Strategy, error) {
	if strings.TrimSpace(strings.ToLower(spec)) == "all" {
		return matmul.StrategyValues(), nil
	}
	var strategies []matmul.Strategy
	for _, name := range strings.Split(spec, ",") {
		s, err := matmul.StrategyString(name)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

// toValue converts the value of an integer flag to bench.Value, rejecting values out of its range.
func toValue(flagName string, value int) (bench.Value, error) {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return 0, errors.Errorf("-%s=%d is out of range [%d, %d]", flagName, value, math.MinInt32, math.MaxInt32)
	}
	return bench.Value(value), nil
}

// buildOptions from the flags. Positional arguments "<impl> <size>" take precedence over -impl and -size.
func buildOptions(args []string) (strategies []matmul.Strategy, opts bench.Options, err error) {
	impl, size := *flagImpl, *flagSize
	switch len(args) {
	case 0:
	case 2:
		impl = args[0]
		size, err = strconv.Atoi(args[1])
		if err != nil {
			return nil, opts, errors.Wrapf(err, "invalid matrix size %q", args[1])
		}
	default:
		return nil, opts, errors.Errorf("expected \"<impl> <size>\" arguments, got %q", args)
	}
	strategies, err = parseStrategies(impl)
	if err != nil {
		return nil, opts, err
	}
	opts = bench.DefaultOptions()
	opts.Size = size
	if opts.MinValue, err = toValue("min", *flagMin); err != nil {
		return nil, opts, err
	}
	if opts.MaxValue, err = toValue("max", *flagMax); err != nil {
		return nil, opts, err
	}
	opts.WarmUp, opts.Repeats = *flagWarmUp, *flagRepeats
	opts.ShowProgress = *flagProgress
	opts.Config, err = matmul.ParseConfig(*flagConfig)
	if err != nil {
		return nil, opts, err
	}
	if *flagSeed >= 0 {
		opts.Config.Seed, opts.Config.HasSeed = uint64(*flagSeed), true
	}
	return strategies, opts, nil
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [<impl> <size>]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	strategies, opts, err := buildOptions(flag.Args())
	if err != nil {
		klog.Errorf("%+v", err)
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	report, err := bench.Run(ctx, strategies, opts)
	if err != nil {
		klog.Errorf("Benchmark failed: %+v", err)
		os.Exit(1)
	}

	fmt.Printf("Run %s: %d strategies on %dx%d matrices (generated in %s, sequential reference in %s)\n",
		report.RunID, len(report.Results), report.Size, report.Size, report.GenerateTime, report.OracleTime)
	fmt.Println(report.Table())

	if *flagPrint {
		if report.Size > 16 {
			klog.Warningf("-print ignored for matrices larger than 16x16")
		} else {
			fmt.Printf("A:\n%s\n\nB:\n%s\n\nC:\n%s\n", report.A, report.B, report.Reference)
		}
	}
	if *flagCSV != "" {
		f := must.M1(os.Create(*flagCSV))
		must.M(report.WriteCSV(f))
		must.M(f.Close())
		klog.Infof("Results saved to %q", *flagCSV)
	}
	if *flagPlot != "" {
		must.M(report.SavePlot(*flagPlot))
		klog.Infof("Plot saved to %q", *flagPlot)
	}
	for _, result := range report.Results {
		if !result.Correct {
			klog.Errorf("Strategy %s returned an incorrect result", result.Strategy)
			os.Exit(1)
		}
	}
}
