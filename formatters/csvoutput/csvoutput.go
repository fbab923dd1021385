// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package csvoutput writes benchmark results as comma-separated
// values, one row per test result.
package csvoutput

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

// Format is the output format name of this package.
const Format = "csv"

// FileName is the name of the output file within the output directory.
const FileName = "results.csv"

// Header is the first row of the output file.
var Header = []string{"run_id", "label", "benchmark", "story", "status", "expected", "duration_s", "start_time", "shard"}

// A Formatter is the processor.Formatter of Format.
type Formatter struct{}

// Process implements processor.Formatter. Rows are appended to an
// existing file unless out.Reset is set.
func (f *Formatter) Process(ctx context.Context, res *intermediate.Results, out *processor.Output) error {
	rows, err := Rows(res, out)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out.Dir, 0777); err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE
	if out.Reset {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	file, err := os.OpenFile(filepath.Join(out.Dir, FileName), flags, 0666)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		w.Write(Header)
	}
	w.WriteAll(rows)
	if err := w.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Rows returns the rows of res, without the header.
func Rows(res *intermediate.Results, out *processor.Output) ([][]string, error) {
	var rows [][]string
	for _, r := range res.TestResults {
		if err := r.Check(); err != nil {
			return nil, err
		}
		benchmark, story, err := r.SplitPath()
		if err != nil {
			return nil, err
		}
		duration := ""
		if d, err := r.Duration(); err == nil {
			duration = strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
		} else if err != intermediate.ErrNoDuration {
			return nil, err
		}
		shard, _ := r.Tag("shard")
		rows = append(rows, []string{
			out.RunID,
			out.Label,
			benchmark,
			story,
			r.Status,
			strconv.FormatBool(r.IsExpected),
			duration,
			r.StartTime,
			shard,
		})
	}
	return rows, nil
}
