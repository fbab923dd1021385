// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csvoutput

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

func loadTestdata(t *testing.T) *intermediate.Results {
	t.Helper()
	res, err := intermediate.Load(filepath.Join("..", "..", "intermediate", "testdata", "run.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	res := loadTestdata(t)
	f := new(Formatter)
	out := &processor.Output{Dir: dir, Label: "nightly", RunID: "nightly_1"}
	if err := f.Process(context.Background(), res, out); err != nil {
		t.Fatal(err)
	}
	out.RunID = "nightly_2"
	if err := f.Process(context.Background(), res, out); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	rows := `nightly_%[1]d,nightly,system_health,load:google,PASS,true,1.5,2019-10-23T12:00:01.000Z,2
nightly_%[1]d,nightly,system_health,load:google,FAIL,false,2.25,,
nightly_%[1]d,nightly,system_health,browse:news,SKIP,true,0,,
`
	want := "run_id,label,benchmark,story,status,expected,duration_s,start_time,shard\n" +
		strings.ReplaceAll(rows, "%[1]d", "1") + strings.ReplaceAll(rows, "%[1]d", "2")
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("results.csv mismatch (-want +got):\n%s", diff)
	}

	out.Reset = true
	if err := f.Process(context.Background(), res, out); err != nil {
		t.Fatal(err)
	}
	got, err = os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(got), "\n"); n != 4 {
		t.Errorf("after reset, got %d lines, want 4:\n%s", n, got)
	}
}

func TestRowsBadPath(t *testing.T) {
	res := intermediate.NewResults()
	res.TestResults = append(res.TestResults, &intermediate.TestResult{TestPath: "nostory", Status: "PASS"})
	if _, err := Rows(res, &processor.Output{}); err == nil {
		t.Errorf("Rows succeeded with test path %q", "nostory")
	}
}

func TestRowsWrongFieldType(t *testing.T) {
	res, err := intermediate.Read(strings.NewReader(`{"testResult":{"testPath":"b/s","status":1}}`+"\n"), "test")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Rows(res, &processor.Output{})
	var ferr *intermediate.FieldError
	if !errors.As(err, &ferr) || ferr.Field != "status" || ferr.TestPath != "b/s" {
		t.Errorf("got error %v, want FieldError for status", err)
	}
}
