// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/db/dbtest"
)

const runData = `{"benchmarkRun":{"startTime":"2019-10-23T12:00:00.000Z"}}
{"testResult":{"testPath":"b/s1","status":"PASS","isExpected":true,"runDuration":"1.5s"}}
{"testResult":{"testPath":"b/s2","status":"FAIL","isExpected":false}}
`

func readResults(t *testing.T) *intermediate.Results {
	t.Helper()
	res, err := intermediate.Read(strings.NewReader(runData), "test")
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestInsertRun(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	res := readResults(t)

	run, err := db.NewRun(ctx, "run_20191023T120000Z", "", &res.BenchmarkRun)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	for _, tr := range res.TestResults {
		if err := run.InsertTestResult(ctx, tr); err != nil {
			t.Fatalf("InsertTestResult: %v", err)
		}
	}
	if err := run.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := run.Commit(); err == nil {
		t.Errorf("second Commit succeeded")
	}

	rows, err := db.TestResults(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if r := rows[0]; r.Seq != 0 || r.TestPath != "b/s1" || !r.IsExpected || !r.RunDuration.Valid || r.RunDuration.Float64 != 1.5 {
		t.Errorf("rows[0] = %+v", r)
	}
	if r := rows[1]; r.Seq != 1 || r.Status != "FAIL" || r.RunDuration.Valid {
		t.Errorf("rows[1] = %+v", r)
	}
	if got, want := string(rows[1].Content), `{"testPath":"b/s2","status":"FAIL","isExpected":false}`; got != want {
		t.Errorf("rows[1].Content = %s, want %s", got, want)
	}
}

func TestAbortAndDelete(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	res := readResults(t)

	aborted, err := db.NewRun(ctx, "aborted", "", &res.BenchmarkRun)
	if err != nil {
		t.Fatal(err)
	}
	if err := aborted.Abort(); err != nil {
		t.Fatal(err)
	}
	if n, err := db.CountRuns(ctx); err != nil || n != 0 {
		t.Errorf("CountRuns after Abort = %d, %v, want 0", n, err)
	}

	for _, name := range []string{"one", "two"} {
		run, err := db.NewRun(ctx, name, "label", &res.BenchmarkRun)
		if err != nil {
			t.Fatal(err)
		}
		if err := run.InsertTestResult(ctx, res.TestResults[0]); err != nil {
			t.Fatal(err)
		}
		if err := run.Commit(); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := db.CountRuns(ctx); err != nil || n != 2 {
		t.Errorf("CountRuns = %d, %v, want 2", n, err)
	}
	if err := db.DeleteRuns(ctx); err != nil {
		t.Fatal(err)
	}
	if n, err := db.CountRuns(ctx); err != nil || n != 0 {
		t.Errorf("CountRuns after DeleteRuns = %d, %v, want 0", n, err)
	}
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	res := readResults(t)

	for _, name := range []string{"first", "second"} {
		run, err := db.NewRun(ctx, name, "nightly", &res.BenchmarkRun)
		if err != nil {
			t.Fatal(err)
		}
		if err := run.Commit(); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := db.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for i, name := range []string{"first", "second"} {
		r := runs[i]
		if r.Name != name || r.Label != "nightly" || r.StartTime != "2019-10-23T12:00:00.000Z" {
			t.Errorf("runs[%d] = %+v", i, r)
		}
	}
	if got, want := string(runs[0].BenchmarkRun), `{"startTime":"2019-10-23T12:00:00.000Z"}`; got != want {
		t.Errorf("runs[0].BenchmarkRun = %s, want %s", got, want)
	}
}

func TestInsertWrongFieldType(t *testing.T) {
	ctx := context.Background()
	db := dbtest.NewDB(t)
	res, err := intermediate.Read(strings.NewReader(`{"testResult":{"testPath":"b/s","status":"PASS","runDuration":1.5}}`+"\n"), "test")
	if err != nil {
		t.Fatal(err)
	}
	run, err := db.NewRun(ctx, "run", "", &res.BenchmarkRun)
	if err != nil {
		t.Fatal(err)
	}
	defer run.Abort()
	err = run.InsertTestResult(ctx, res.TestResults[0])
	var ferr *intermediate.FieldError
	if !errors.As(err, &ferr) || ferr.Field != "runDuration" {
		t.Errorf("got error %v, want FieldError for runDuration", err)
	}
}
