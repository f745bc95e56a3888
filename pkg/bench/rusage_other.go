// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !unix

package bench

// peakRSS is not available on this platform.
func peakRSS() int64 { return 0 }
