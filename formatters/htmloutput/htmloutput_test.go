// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htmloutput

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

func TestSummarize(t *testing.T) {
	for _, test := range []struct {
		name string
		xs   []float64
		want Summary
	}{
		{"empty", nil, Summary{}},
		{"single", []float64{2}, Summary{N: 1, Mean: 2, Min: 2, Max: 2}},
		{"outlier", []float64{1, 1, 1, 1, 1, 1, 1, 100}, Summary{N: 8, Outliers: 1, Mean: 1, Min: 1, Max: 1}},
		{"spread", []float64{1, 2, 3, 4}, Summary{N: 4, Mean: 2.5, Min: 1, Max: 4}},
	} {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, Summarize(test.xs)); diff != "" {
				t.Errorf("Summarize(%v) mismatch (-want +got):\n%s", test.xs, diff)
			}
		})
	}
}

const run = `{"benchmarkRun":{"startTime":"2019-10-23T12:00:00Z"}}
{"testResult":{"testPath":"system_health/load%3Agoogle","status":"PASS","isExpected":true,"runDuration":"1s"}}
{"testResult":{"testPath":"system_health/load%3Agoogle","status":"FAIL","isExpected":false,"runDuration":"3s"}}
{"testResult":{"testPath":"memory/%3Cidle%3E","status":"SKIP","isExpected":true}}
`

func readResults(t *testing.T, data string) *intermediate.Results {
	t.Helper()
	res, err := intermediate.Read(strings.NewReader(data), "test.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestNewRun(t *testing.T) {
	out := &processor.Output{Label: "nightly", RunID: "nightly_20191023T120000Z"}
	got, err := NewRun(readResults(t, run), out)
	if err != nil {
		t.Fatal(err)
	}
	want := &Run{
		Label:     "nightly",
		RunID:     "nightly_20191023T120000Z",
		StartTime: "2019-10-23T12:00:00Z",
		Stories: []*Story{
			{Benchmark: "memory", Story: "<idle>", Runs: 1, Skip: 1},
			{Benchmark: "system_health", Story: "load:google", Runs: 2, Pass: 1, Fail: 1,
				Durations: Summary{N: 2, Mean: 2, Min: 1, Max: 3}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewRun mismatch (-want +got):\n%s", diff)
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	f := new(Formatter)
	res := readResults(t, run)
	for _, id := range []string{"first_run", "second_run"} {
		out := &processor.Output{Dir: dir, RunID: id}
		if err := f.Process(context.Background(), res, out); err != nil {
			t.Fatal(err)
		}
	}
	page, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"first_run", "second_run", "load:google", "&lt;idle&gt;", "2.000s"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("page lacks %q:\n%s", want, page)
		}
	}
	if strings.Contains(string(page), "<idle>") {
		t.Errorf("story name not escaped:\n%s", page)
	}
	runs, err := readRuns(filepath.Join(dir, RunsFileName))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d stored runs, want 2", len(runs))
	}

	out := &processor.Output{Dir: dir, RunID: "third_run", Reset: true}
	if err := f.Process(context.Background(), res, out); err != nil {
		t.Fatal(err)
	}
	page, err = os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(page), "first_run") || !strings.Contains(string(page), "third_run") {
		t.Errorf("reset page:\n%s", page)
	}
}

func TestProcessCorruptRuns(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RunsFileName), []byte("{"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := new(Formatter).Process(context.Background(), readResults(t, run), &processor.Output{Dir: dir}); err == nil {
		t.Errorf("Process succeeded with a corrupt %s", RunsFileName)
	}
}
