// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build unix

package bench

import (
	"runtime"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// peakRSS returns the maximum resident set size of the process so far, in bytes.
func peakRSS() int64 {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		klog.Warningf("getrusage failed: %v", err)
		return 0
	}
	maxRSS := int64(usage.Maxrss)
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		// Reported in bytes.
		return maxRSS
	}
	// Reported in kilobytes.
	return maxRSS * 1024
}
