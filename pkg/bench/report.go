// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
	failedRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}).
			Bold(true).
			PaddingLeft(1).PaddingRight(1)
)

// Columns of the table and of the CSV output.
var columnNames = []string{"Implementation", "MatrixSize", "Time(ms)", "StdDev(ms)", "Best(ms)", "MemoryUsed(KB)", "PeakRSS", "Correct"}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func correctString(correct bool) string {
	if correct {
		return "Passed"
	}
	return "Failed"
}

// Table renders the results as a table, with failed results highlighted.
func (r *Report) Table() string {
	failed := make(map[int]bool)
	alignments := []lipgloss.Position{lipgloss.Left, lipgloss.Right}
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			switch {
			case row < 0:
				return headerRowStyle
			case failed[row]:
				s = failedRowStyle
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			alignment := alignments[min(col, len(alignments)-1)]
			if col == len(columnNames)-1 {
				alignment = lipgloss.Center
			}
			return s.Align(alignment)
		}).
		Headers(columnNames...)
	for ii, result := range r.Results {
		if !result.Correct {
			failed[ii] = true
		}
		rss := "-"
		if result.PeakRSSBytes > 0 {
			rss = humanize.IBytes(uint64(result.PeakRSSBytes))
		}
		table.Row(
			result.Strategy.String(),
			fmt.Sprintf("%dx%d", result.Size, result.Size),
			fmt.Sprintf("%.2f", milliseconds(result.Mean)),
			fmt.Sprintf("%.2f", milliseconds(result.StdDev)),
			fmt.Sprintf("%.2f", milliseconds(result.Best)),
			humanize.Comma(result.HeapBytes/1024),
			rss,
			correctString(result.Correct),
		)
	}
	return table.Render()
}

// DataFrame returns the results with one row per strategy, in the order of the columns of Table.
func (r *Report) DataFrame() dataframe.DataFrame {
	n := len(r.Results)
	names := make([]string, n)
	sizes := make([]int, n)
	means := make([]float64, n)
	stdDevs := make([]float64, n)
	bests := make([]float64, n)
	heapKB := make([]int, n)
	rssBytes := make([]int, n)
	corrects := make([]string, n)
	for ii, result := range r.Results {
		names[ii] = result.Strategy.String()
		sizes[ii] = result.Size
		means[ii] = milliseconds(result.Mean)
		stdDevs[ii] = milliseconds(result.StdDev)
		bests[ii] = milliseconds(result.Best)
		heapKB[ii] = int(result.HeapBytes / 1024)
		rssBytes[ii] = int(result.PeakRSSBytes)
		corrects[ii] = correctString(result.Correct)
	}
	return dataframe.New(
		series.New(names, series.String, columnNames[0]),
		series.New(sizes, series.Int, columnNames[1]),
		series.New(means, series.Float, columnNames[2]),
		series.New(stdDevs, series.Float, columnNames[3]),
		series.New(bests, series.Float, columnNames[4]),
		series.New(heapKB, series.Int, columnNames[5]),
		series.New(rssBytes, series.Int, columnNames[6]),
		series.New(corrects, series.String, columnNames[7]),
	)
}

// WriteCSV writes the results to w in CSV format, with a header line.
func (r *Report) WriteCSV(w io.Writer) error {
	if len(r.Results) == 0 {
		return errors.New("bench: no results to write")
	}
	df := r.DataFrame()
	if df.Err != nil {
		return errors.Wrap(df.Err, "building results table")
	}
	return errors.Wrap(df.WriteCSV(w), "writing results as CSV")
}

// SavePlot saves a bar chart of the mean time of each strategy to path.
// The image format is taken from the extension of path (e.g.: ".png", ".svg").
func (r *Report) SavePlot(path string) error {
	if len(r.Results) == 0 {
		return errors.New("bench: no results to plot")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Matrix multiplication %dx%d", r.Size, r.Size)
	p.Y.Label.Text = "Time (ms)"
	values := make(plotter.Values, len(r.Results))
	names := make([]string, len(r.Results))
	for ii, result := range r.Results {
		values[ii] = milliseconds(result.Mean)
		names[ii] = result.Strategy.String()
	}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "creating bar chart")
	}
	bars.Color = plotter.DefaultLineStyle.Color
	p.Add(bars)
	p.NominalX(names...)
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving plot to %q", path)
	}
	return nil
}
