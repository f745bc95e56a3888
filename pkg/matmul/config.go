// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/gomlx/tiledmatmul/internal/workerspool"
	"github.com/pkg/errors"
)

// ConfigEnvVar is the environment variable with the default configuration string, see ParseConfig.
const ConfigEnvVar = "MATMUL_CONFIG"

// Config holds the scheduling resources and parameters used by the strategies.
// The zero value uses the defaults.
type Config struct {
	// Parallelism is the number of goroutines (StaticThreads), workers (Flat, WorkerPool) or the soft limit of
	// parallel work (ForkJoin, Generate). If 0, it defaults to runtime.GOMAXPROCS(0).
	Parallelism int

	// Pool used by ForkJoin and Generate. If nil, a pool with Parallelism is created for the call if
	// Parallelism is set, otherwise workerspool.Default() is used.
	Pool *workerspool.Pool

	// Workers used by Flat and WorkerPool. If nil, a pool of Parallelism workers is created for the call
	// and closed before returning. If set, the caller owns it and is responsible for closing it.
	Workers *workerspool.Fixed

	// Seed for Generate, used only if HasSeed is true. Otherwise, a random seed is drawn for each call.
	Seed    uint64
	HasSeed bool
}

// Option modifies the Config of one call.
type Option func(cfg *Config)

// WithConfig replaces the configuration by cfg. Options given after it still apply.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// WithParallelism sets Config.Parallelism.
func WithParallelism(parallelism int) Option {
	return func(c *Config) { c.Parallelism = parallelism }
}

// WithPool sets the pool used by ForkJoin and Generate.
func WithPool(pool *workerspool.Pool) Option {
	return func(c *Config) { c.Pool = pool }
}

// WithWorkers sets externally managed workers for Flat and WorkerPool.
func WithWorkers(workers *workerspool.Fixed) Option {
	return func(c *Config) { c.Workers = workers }
}

// WithSeed makes Generate reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
		c.HasSeed = true
	}
}

func newConfig(options []Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

// ParseConfig parses a configuration string of comma-separated "key=value" options. Valid keys:
//
//   - "parallelism": Config.Parallelism, a non-negative integer.
//   - "seed": Config.Seed, an unsigned integer used by Generate.
//
// An empty string returns the default configuration.
func ParseConfig(config string) (Config, error) {
	var cfg Config
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return cfg, errors.Errorf("invalid option %q in configuration %q: expected \"key=value\"", part, config)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "parallelism":
			parallelism, err := strconv.Atoi(value)
			if err != nil || parallelism < 0 {
				return cfg, errors.Errorf("invalid parallelism %q in configuration %q", value, config)
			}
			cfg.Parallelism = parallelism
		case "seed":
			seed, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return cfg, errors.Wrapf(err, "invalid seed %q in configuration %q", value, config)
			}
			cfg.Seed, cfg.HasSeed = seed, true
		default:
			return cfg, errors.Errorf("unknown option %q in configuration %q", key, config)
		}
	}
	return cfg, nil
}

// ConfigFromEnv parses the configuration in the environment variable MATMUL_CONFIG (ConfigEnvVar).
// If it is not set, it returns the default configuration.
func ConfigFromEnv() (Config, error) {
	config, found := os.LookupEnv(ConfigEnvVar)
	if !found {
		return Config{}, nil
	}
	cfg, err := ParseConfig(config)
	if err != nil {
		return cfg, errors.WithMessagef(err, "parsing $%s", ConfigEnvVar)
	}
	return cfg, nil
}

// parallelism is always >= 1.
func (c *Config) parallelism() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	if c.Workers != nil {
		return c.Workers.NumWorkers()
	}
	return max(runtime.GOMAXPROCS(0), 1)
}

func (c *Config) pool() *workerspool.Pool {
	if c.Pool != nil {
		return c.Pool
	}
	if c.Parallelism > 0 {
		return workerspool.NewWithParallelism(c.Parallelism)
	}
	return workerspool.Default()
}

// acquireWorkers returns the workers to use, and the function to release them once the call is done.
func (c *Config) acquireWorkers() (workers *workerspool.Fixed, release func()) {
	if c.Workers != nil {
		return c.Workers, func() {}
	}
	workers = workerspool.NewFixed(c.parallelism())
	return workers, workers.Close
}
