// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dboutput stores benchmark runs in a results database.
package dboutput

import (
	"context"
	"os"
	"path/filepath"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/db"
	_ "github.com/TrellixVulnTeam/huhi-android-RR7G/storage/db/sqlite3"
)

// Format is the output format name of this package.
const Format = "results-db"

// FileName is the name of the default SQLite database within the
// output directory.
const FileName = "results.db"

// A Formatter is the processor.Formatter of Format.
type Formatter struct {
	// Driver and DSN select the database, as for sql.Open. If
	// Driver is empty, a SQLite database in the output directory is
	// used. Drivers other than sqlite3 must be linked in by the
	// program.
	Driver string
	DSN    string

	// Logf, if non-nil, is called with progress messages.
	Logf func(format string, args ...interface{})
}

func (f *Formatter) open(out *processor.Output) (*db.DB, error) {
	if f.Driver != "" {
		return db.OpenSQL(f.Driver, f.DSN)
	}
	if err := os.MkdirAll(out.Dir, 0777); err != nil {
		return nil, err
	}
	return db.OpenSQL("sqlite3", filepath.Join(out.Dir, FileName))
}

// Process implements processor.Formatter. If out.Reset is set, the
// runs stored earlier are deleted first.
func (f *Formatter) Process(ctx context.Context, res *intermediate.Results, out *processor.Output) (err error) {
	d, err := f.open(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := d.Close(); err == nil {
			err = cerr
		}
	}()

	if out.Reset {
		if err := d.DeleteRuns(ctx); err != nil {
			return err
		}
	}
	run, err := d.NewRun(ctx, out.RunID, out.Label, &res.BenchmarkRun)
	if err != nil {
		return err
	}
	for _, tr := range res.TestResults {
		if err := run.InsertTestResult(ctx, tr); err != nil {
			run.Abort()
			return err
		}
	}
	if err := run.Commit(); err != nil {
		return err
	}
	if f.Logf != nil {
		f.Logf("stored run %s (%d test results)", out.RunID, len(res.TestResults))
	}
	return nil
}
