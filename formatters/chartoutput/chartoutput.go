// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chartoutput draws the run durations of every story as a box
// plot.
package chartoutput

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

// Format is the output format name of this package.
const Format = "chart"

// FileName is the name of the output file within the output directory.
const FileName = "durations.png"

const dpi = 96

// A Formatter is the processor.Formatter of Format.
type Formatter struct {
	// Logf, if non-nil, is called with progress messages.
	Logf func(format string, args ...interface{})
}

// A Series is the run durations, in seconds, of one story.
type Series struct {
	// Name is "benchmark/story" with the story unescaped.
	Name   string
	Values plotter.Values
}

// Collect returns the durations of the test results in res, grouped
// by story and sorted by name. Results without a duration are
// ignored.
func Collect(res *intermediate.Results) ([]*Series, error) {
	byName := make(map[string]*Series)
	var all []*Series
	for _, r := range res.TestResults {
		if err := r.Check(); err != nil {
			return nil, err
		}
		d, err := r.Duration()
		if err == intermediate.ErrNoDuration {
			continue
		} else if err != nil {
			return nil, err
		}
		benchmark, story, err := r.SplitPath()
		if err != nil {
			return nil, err
		}
		name := benchmark + "/" + story
		s := byName[name]
		if s == nil {
			s = &Series{Name: name}
			byName[name] = s
			all = append(all, s)
		}
		s.Values = append(s.Values, d.Seconds())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// Process implements processor.Formatter. If no test result has a
// duration, it writes nothing.
func (f *Formatter) Process(ctx context.Context, res *intermediate.Results, out *processor.Output) error {
	series, err := Collect(res)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		if f.Logf != nil {
			f.Logf("no run durations; skipping %s", FileName)
		}
		return nil
	}

	pl, err := Plot(series, out.Label)
	if err != nil {
		return err
	}

	// Heuristic size in centimeters.
	width := math.Max(12, 2.5*float64(len(series)+1))
	height := 10.0
	can := vgimg.PngCanvas{Canvas: vgimg.NewWith(
		vgimg.UseWH(vg.Length(width)*vg.Centimeter, vg.Length(height)*vg.Centimeter),
		vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
	pl.Draw(draw.New(can))

	if err := os.MkdirAll(out.Dir, 0777); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(out.Dir, FileName))
	if err != nil {
		return err
	}
	if _, err := can.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Plot returns a box plot of series titled title.
func Plot(series []*Series, title string) (*plot.Plot, error) {
	pl := plot.New()
	if title == "" {
		title = "Run durations"
	}
	pl.Title.Text = title
	pl.Y.Label.Text = "seconds"
	pl.Y.Min = 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	w := vg.Points(20)
	names := make([]string, len(series))
	for i, s := range series {
		b, err := plotter.NewBoxPlot(w, float64(i), s.Values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		b.FillColor = color.RGBA{R: 0x40, G: 0x80, B: 0xff, A: 0x50}
		pl.Add(b)
		names[i] = s.Name
	}
	pl.NominalX(names...)
	pl.X.Tick.Label.Rotation = -math.Pi / 8
	pl.X.Tick.Label.YAlign = draw.YTop
	pl.X.Tick.Label.XAlign = draw.XLeft
	return pl, nil
}
