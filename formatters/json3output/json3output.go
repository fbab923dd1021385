// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package json3output writes benchmark results in the JSON Test
// Results format, version 3.
//
// The output is a single file, test-results.json, in the output
// directory. Tests are keyed by benchmark and then by story:
//
//	{
//	    "interrupted": false,
//	    "num_failures_by_type": {"FAIL": 1, "PASS": 1},
//	    "path_delimiter": "/",
//	    "seconds_since_epoch": 1571832000,
//	    "tests": {
//	        "system_health": {
//	            "load:google": {
//	                "actual": "PASS FAIL",
//	                "expected": "PASS",
//	                "is_unexpected": true,
//	                "time": 1.5,
//	                "times": [1.5, 2.25]
//	            }
//	        }
//	    },
//	    "version": 3
//	}
//
// Unless the output is reset, the results of a run are merged into an
// existing test-results.json.
package json3output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

// Format is the output format name of this package.
const Format = "json-test-results"

// FileName is the name of the output file within the output directory.
const FileName = "test-results.json"

// Version is the version of the JSON Test Results format.
const Version = 3

// TestsResult is the top-level object of a JSON Test Results file.
type TestsResult struct {
	Interrupted       bool                        `json:"interrupted"`
	NumFailuresByType map[string]int              `json:"num_failures_by_type"`
	PathDelimiter     string                      `json:"path_delimiter"`
	SecondsSinceEpoch float64                     `json:"seconds_since_epoch"`
	Tests             map[string]map[string]*Test `json:"tests"`
	Version           int                         `json:"version"`
}

// A Test is the combined result of all runs of one story.
type Test struct {
	// Actual is the space-separated status of every run.
	Actual string `json:"actual"`
	// Expected is the space-separated, sorted set of expected
	// statuses.
	Expected     string    `json:"expected"`
	IsUnexpected bool      `json:"is_unexpected"`
	Time         float64   `json:"time"`
	Times        []float64 `json:"times"`
	Shard        *int      `json:"shard,omitempty"`
	// Artifacts maps artifact names to paths relative to the output
	// directory or to URLs.
	Artifacts map[string][]string `json:"artifacts,omitempty"`
}

// A Formatter is the processor.Formatter of Format.
type Formatter struct {
	// Logf, if non-nil, is called with progress messages.
	Logf func(format string, args ...interface{})
}

func (f *Formatter) logf(format string, args ...interface{}) {
	if f.Logf != nil {
		f.Logf(format, args...)
	}
}

// Process implements processor.Formatter.
func (f *Formatter) Process(ctx context.Context, res *intermediate.Results, out *processor.Output) error {
	tr, err := f.Convert(ctx, res, out)
	if err != nil {
		return err
	}
	dest := filepath.Join(out.Dir, FileName)
	if !out.Reset {
		old, err := readFile(dest)
		if err != nil {
			return err
		}
		if old != nil {
			old.Merge(tr)
			tr = old
		}
	}
	data, err := json.MarshalIndent(tr, "", "    ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out.Dir, 0777); err != nil {
		return err
	}
	return os.WriteFile(dest, append(data, '\n'), 0666)
}

// readFile reads the TestsResult in file, or returns nil, nil if file
// does not exist.
func readFile(file string) (*TestsResult, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	tr := new(TestsResult)
	if err := json.Unmarshal(data, tr); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if tr.Tests == nil {
		tr.Tests = make(map[string]map[string]*Test)
	}
	if tr.NumFailuresByType == nil {
		tr.NumFailuresByType = make(map[string]int)
	}
	return tr, nil
}

// Convert converts res to a TestsResult. If out.Artifacts is set,
// local artifacts are uploaded to it.
func (f *Formatter) Convert(ctx context.Context, res *intermediate.Results, out *processor.Output) (*TestsResult, error) {
	tr := &TestsResult{
		NumFailuresByType: make(map[string]int),
		PathDelimiter:     "/",
		Tests:             make(map[string]map[string]*Test),
		Version:           Version,
	}

	var start string
	if ok, err := res.BenchmarkRun.Decode("startTime", &start); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("benchmarkRun has no startTime")
	}
	t, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		return nil, fmt.Errorf("benchmarkRun.startTime: %w", err)
	}
	tr.SecondsSinceEpoch = float64(t.UnixNano()) / 1e9
	if _, err := res.BenchmarkRun.Decode("interrupted", &tr.Interrupted); err != nil {
		return nil, err
	}

	for _, r := range res.TestResults {
		if err := r.Check(); err != nil {
			return nil, err
		}
		benchmark, story, err := r.SplitPath()
		if err != nil {
			return nil, err
		}
		d, err := r.Duration()
		if err != nil && err != intermediate.ErrNoDuration {
			return nil, err
		}
		stories := tr.Tests[benchmark]
		if stories == nil {
			stories = make(map[string]*Test)
			tr.Tests[benchmark] = stories
		}
		test := stories[story]
		if test == nil {
			test = &Test{}
			stories[story] = test
			if v, ok := r.Tag("shard"); ok {
				shard, err := strconv.Atoi(v)
				if err != nil {
					return nil, fmt.Errorf("test %s: shard tag: %w", r.TestPath, err)
				}
				test.Shard = &shard
			}
		}

		expected := intermediate.StatusPass
		if r.IsExpected {
			expected = r.Status
		}
		test.add(r.Status, expected, !r.IsExpected, d.Seconds())
		tr.NumFailuresByType[r.Status]++

		if err := f.addArtifacts(ctx, test, r, out); err != nil {
			return nil, err
		}
	}
	return tr, nil
}

func (t *Test) add(actual, expected string, unexpected bool, seconds float64) {
	if t.Actual == "" {
		t.Actual = actual
		t.Time = seconds
	} else {
		t.Actual += " " + actual
	}
	t.Expected = joinSet(t.Expected, expected)
	t.IsUnexpected = t.IsUnexpected || unexpected
	t.Times = append(t.Times, seconds)
}

// joinSet adds the space-separated statuses of b to those of a and
// returns the sorted, distinct result.
func joinSet(a, b string) string {
	seen := make(map[string]bool)
	var all []string
	for _, s := range append(strings.Fields(a), strings.Fields(b)...) {
		if !seen[s] {
			seen[s] = true
			all = append(all, s)
		}
	}
	sort.Strings(all)
	return strings.Join(all, " ")
}

func (f *Formatter) addArtifacts(ctx context.Context, test *Test, r *intermediate.TestResult, out *processor.Output) error {
	names := make([]string, 0, len(r.Artifacts))
	for name := range r.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		a := r.Artifacts[name]
		loc, err := f.locate(ctx, r.TestPath, name, a, out)
		if err != nil {
			return fmt.Errorf("test %s: artifact %s: %w", r.TestPath, name, err)
		}
		if loc == "" {
			continue
		}
		if test.Artifacts == nil {
			test.Artifacts = make(map[string][]string)
		}
		test.Artifacts[name] = append(test.Artifacts[name], loc)
	}
	return nil
}

// locate returns the path or URL reported for artifact a, uploading it
// first if out has an artifact store.
func (f *Formatter) locate(ctx context.Context, testPath, name string, a intermediate.Artifact, out *processor.Output) (string, error) {
	if a.RemoteURL != "" {
		return a.RemoteURL, nil
	}
	if a.FilePath == "" {
		return "", nil
	}
	local := a.FilePath
	if !filepath.IsAbs(local) {
		local = filepath.Join(out.IntermediateDir, local)
	}
	if out.Artifacts == nil {
		rel, err := filepath.Rel(out.Dir, local)
		if err != nil {
			return "", err
		}
		return filepath.ToSlash(rel), nil
	}

	remote := path.Join(out.RunID, testPath, name)
	if err := upload(ctx, out, local, remote, a.ContentType); err != nil {
		return "", err
	}
	f.logf("uploaded %s to %s", local, remote)
	return out.Artifacts.URL(remote), nil
}

func upload(ctx context.Context, out *processor.Output, local, remote, contentType string) error {
	src, err := os.Open(local)
	if err != nil {
		return err
	}
	defer src.Close()

	var meta map[string]string
	if contentType != "" {
		meta = map[string]string{"Content-Type": contentType}
	}
	w, err := out.Artifacts.NewWriter(ctx, remote, meta)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		w.CloseWithError(err)
		return err
	}
	return w.Close()
}

// Merge adds the results of next to tr.
func (tr *TestsResult) Merge(next *TestsResult) {
	tr.Interrupted = tr.Interrupted || next.Interrupted
	if tr.SecondsSinceEpoch == 0 || (next.SecondsSinceEpoch != 0 && next.SecondsSinceEpoch < tr.SecondsSinceEpoch) {
		tr.SecondsSinceEpoch = next.SecondsSinceEpoch
	}
	tr.PathDelimiter = next.PathDelimiter
	tr.Version = next.Version
	for status, n := range next.NumFailuresByType {
		tr.NumFailuresByType[status] += n
	}
	for benchmark, stories := range next.Tests {
		old := tr.Tests[benchmark]
		if old == nil {
			tr.Tests[benchmark] = stories
			continue
		}
		for story, test := range stories {
			prev := old[story]
			if prev == nil {
				old[story] = test
				continue
			}
			prev.Actual = strings.TrimSpace(prev.Actual + " " + test.Actual)
			prev.Expected = joinSet(prev.Expected, test.Expected)
			prev.IsUnexpected = prev.IsUnexpected || test.IsUnexpected
			prev.Times = append(prev.Times, test.Times...)
			if prev.Shard == nil {
				prev.Shard = test.Shard
			}
			for name, locs := range test.Artifacts {
				if prev.Artifacts == nil {
					prev.Artifacts = make(map[string][]string)
				}
				prev.Artifacts[name] = append(prev.Artifacts[name], locs...)
			}
		}
	}
}
