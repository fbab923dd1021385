// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package htmloutput writes a summary of benchmark runs as an HTML
// page.
//
// The page, results.html, has one section per run with a table of
// story statistics. The runs shown are kept in results.html.json next
// to the page so that later runs can be added to it.
package htmloutput

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

// Format is the output format name of this package.
const Format = "html"

// Output file names within the output directory.
const (
	FileName     = "results.html"
	RunsFileName = "results.html.json"
)

// A Run is the summary of one benchmark run.
type Run struct {
	Label       string   `json:"label"`
	RunID       string   `json:"runId"`
	StartTime   string   `json:"startTime"`
	Interrupted bool     `json:"interrupted"`
	Stories     []*Story `json:"stories"`
}

// A Story summarizes all runs of one story.
type Story struct {
	Benchmark string `json:"benchmark"`
	Story     string `json:"story"`
	Runs      int    `json:"runs"`
	Pass      int    `json:"pass"`
	Fail      int    `json:"fail"`
	Skip      int    `json:"skip"`
	// Durations summarizes the run durations in seconds.
	Durations Summary `json:"durations"`
}

// A Summary describes a sample of durations after outliers have been
// removed.
type Summary struct {
	// N is the number of values. Outliers is the number of values
	// removed from them.
	N        int     `json:"n"`
	Outliers int     `json:"outliers"`
	Mean     float64 `json:"mean"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Summarize computes the summary of xs, discarding values more than
// 1.5 interquartile ranges outside the middle quartiles.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	values := stats.Sample{Xs: xs}
	q1, q3 := values.Quantile(0.25), values.Quantile(0.75)
	lo, hi := q1-1.5*(q3-q1), q3+1.5*(q3-q1)
	var kept []float64
	for _, x := range xs {
		if lo <= x && x <= hi {
			kept = append(kept, x)
		}
	}
	s := Summary{N: len(xs), Outliers: len(xs) - len(kept)}
	s.Min, s.Max = stats.Bounds(kept)
	s.Mean = stats.Mean(kept)
	return s
}

// A Formatter is the processor.Formatter of Format.
type Formatter struct{}

// Process implements processor.Formatter.
func (f *Formatter) Process(ctx context.Context, res *intermediate.Results, out *processor.Output) error {
	run, err := NewRun(res, out)
	if err != nil {
		return err
	}
	runsFile := filepath.Join(out.Dir, RunsFileName)
	var runs []*Run
	if !out.Reset {
		runs, err = readRuns(runsFile)
		if err != nil {
			return err
		}
	}
	runs = append(runs, run)

	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, runs); err != nil {
		return err
	}
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out.Dir, 0777); err != nil {
		return err
	}
	if err := os.WriteFile(runsFile, append(data, '\n'), 0666); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(out.Dir, FileName), page.Bytes(), 0666)
}

func readRuns(file string) ([]*Run, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var runs []*Run
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return runs, nil
}

// NewRun summarizes res. Stories are sorted by benchmark and story
// name.
func NewRun(res *intermediate.Results, out *processor.Output) (*Run, error) {
	run := &Run{Label: out.Label, RunID: out.RunID}
	if _, err := res.BenchmarkRun.Decode("startTime", &run.StartTime); err != nil {
		return nil, err
	}
	if _, err := res.BenchmarkRun.Decode("interrupted", &run.Interrupted); err != nil {
		return nil, err
	}

	type key struct{ benchmark, story string }
	stories := make(map[key]*Story)
	durations := make(map[key][]float64)
	for _, r := range res.TestResults {
		if err := r.Check(); err != nil {
			return nil, err
		}
		benchmark, story, err := r.SplitPath()
		if err != nil {
			return nil, err
		}
		k := key{benchmark, story}
		s := stories[k]
		if s == nil {
			s = &Story{Benchmark: benchmark, Story: story}
			stories[k] = s
			run.Stories = append(run.Stories, s)
		}
		s.Runs++
		switch r.Status {
		case intermediate.StatusPass:
			s.Pass++
		case intermediate.StatusFail:
			s.Fail++
		case intermediate.StatusSkip:
			s.Skip++
		}
		d, err := r.Duration()
		if err == intermediate.ErrNoDuration {
			continue
		} else if err != nil {
			return nil, err
		}
		durations[k] = append(durations[k], d.Seconds())
	}
	for k, s := range stories {
		s.Durations = Summarize(durations[k])
	}
	sort.Slice(run.Stories, func(i, j int) bool {
		a, b := run.Stories[i], run.Stories[j]
		if a.Benchmark != b.Benchmark {
			return a.Benchmark < b.Benchmark
		}
		return a.Story < b.Story
	})
	return run, nil
}
