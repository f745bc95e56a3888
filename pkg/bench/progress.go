// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"os"

	"github.com/gomlx/tiledmatmul/pkg/matmul"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle used for the warm-up runs.
// Consider "progressbar.ThemeUnicode" for a prettier version.
var ProgressbarStyle = progressbar.ThemeASCII

// warmUpProgress displays the progress of the warm-up runs of one strategy.
// A nil *warmUpProgress is valid and displays nothing.
type warmUpProgress struct {
	bar *progressbar.ProgressBar
}

func newWarmUpProgress(strategy matmul.Strategy, numRuns int, enabled bool) *warmUpProgress {
	if !enabled || numRuns == 0 {
		return nil
	}
	return &warmUpProgress{
		bar: progressbar.NewOptions(numRuns,
			progressbar.OptionSetDescription(fmt.Sprintf("warm-up [bold]%s[reset]", strategy)),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("runs"),
			progressbar.OptionSetTheme(ProgressbarStyle),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Add one finished run.
func (p *warmUpProgress) Add() {
	if p == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Close the progress bar.
func (p *warmUpProgress) Close() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
	_ = p.bar.Close()
}
