// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intermediate reads the intermediate results a benchmark
// harness writes while it runs and folds them into a single Results.
//
// The harness appends one JSON record per line to FileName in the
// intermediate directory. A record may carry a partial update of the
// run metadata ("benchmarkRun"), the outcome of one story run
// ("testResult"), or both. Load merges the updates in file order, last
// writer wins per key, and collects test results in arrival order.
//
// A corrupt file never yields a partial Results: the first malformed
// line fails the whole load.
package intermediate

import (
	"io"
	"os"
)

// Results is the aggregation of an intermediate results file.
type Results struct {
	// BenchmarkRun is the merge of every benchmarkRun fragment.
	BenchmarkRun BenchmarkRun `json:"benchmarkRun"`
	// TestResults holds every testResult fragment in file order.
	// Duplicates are kept.
	TestResults []*TestResult `json:"testResults"`
}

// NewResults returns an empty Results.
func NewResults() *Results {
	return &Results{TestResults: []*TestResult{}}
}

// Add folds rec into res.
func (res *Results) Add(rec *Record) {
	if rec.BenchmarkRun != nil {
		res.BenchmarkRun.Merge(rec.BenchmarkRun)
	}
	if rec.TestResult != nil {
		res.TestResults = append(res.TestResults, rec.TestResult)
	}
}

// Read aggregates every record in r. fileName is used in error
// messages.
func Read(r io.Reader, fileName string) (*Results, error) {
	res := NewResults()
	reader := NewReader(r, fileName)
	for reader.Scan() {
		res.Add(reader.Record())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Load aggregates the intermediate results file at path. It returns
// a *ReadError if the file cannot be opened or read and a
// *SyntaxError if any line is malformed.
func Load(path string) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{path, err}
	}
	defer f.Close()
	return Read(f, path)
}
