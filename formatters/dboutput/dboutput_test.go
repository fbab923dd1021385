// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dboutput

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/db"
)

const run = `{"benchmarkRun":{"startTime":"2019-10-23T12:00:00Z","label":"nightly"}}
{"testResult":{"testPath":"b/s1","status":"PASS","isExpected":true,"runDuration":"1s"}}
{"testResult":{"testPath":"b/s2","status":"FAIL","isExpected":false,"runDuration":"2s"}}
`

func readResults(t *testing.T) *intermediate.Results {
	t.Helper()
	res, err := intermediate.Read(strings.NewReader(run), "test.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func storedRuns(t *testing.T, dir string) []db.RunRow {
	t.Helper()
	d, err := db.OpenSQL("sqlite3", filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	runs, err := d.Runs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range runs {
		rows, err := d.TestResults(context.Background(), r.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 2 {
			t.Errorf("run %s has %d test results, want 2", r.Name, len(rows))
		}
	}
	return runs
}

func TestProcess(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	res := readResults(t)
	f := new(Formatter)

	for _, id := range []string{"nightly_1", "nightly_2"} {
		if err := f.Process(ctx, res, &processor.Output{Dir: dir, Label: "nightly", RunID: id}); err != nil {
			t.Fatal(err)
		}
	}
	runs := storedRuns(t, dir)
	if len(runs) != 2 || runs[0].Name != "nightly_1" || runs[1].Name != "nightly_2" {
		t.Errorf("stored runs %+v", runs)
	}

	if err := f.Process(ctx, res, &processor.Output{Dir: dir, RunID: "nightly_3", Reset: true}); err != nil {
		t.Fatal(err)
	}
	runs = storedRuns(t, dir)
	if len(runs) != 1 || runs[0].Name != "nightly_3" {
		t.Errorf("after reset, stored runs %+v", runs)
	}
}

func TestProcessUnknownDriver(t *testing.T) {
	f := &Formatter{Driver: "nosuchdriver", DSN: "x"}
	if err := f.Process(context.Background(), readResults(t), &processor.Output{Dir: t.TempDir()}); err == nil {
		t.Errorf("Process succeeded with an unknown driver")
	}
}
