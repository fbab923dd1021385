// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db stores aggregated benchmark runs in a SQL database.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
)

// DB is a high-level interface to a results database. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun        *sql.Stmt
	insertTestResult *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure connections.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Name VARCHAR(255),
	Label VARCHAR(255),
	StartTime VARCHAR(64),
	BenchmarkRun BLOB
);
CREATE TABLE IF NOT EXISTS TestResults (
	RunID BIGINT UNSIGNED,
	Seq BIGINT UNSIGNED,
	TestPath VARCHAR(1024),
	Status VARCHAR(16),
	IsExpected BOOLEAN,
	RunDuration DOUBLE,
	Content BLOB,
	PRIMARY KEY (RunID, Seq),
{{if not .sqlite3}}
	Index (TestPath(255)),
{{end}}
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS TestResultsTestPath ON TestResults(TestPath);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements() error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Name, Label, StartTime, BenchmarkRun) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	db.insertTestResult, err = db.sql.Prepare("INSERT INTO TestResults(RunID, Seq, TestPath, Status, IsExpected, RunDuration, Content) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// A Run is a benchmark run being stored. Its rows become visible when
// Commit is called.
type Run struct {
	// ID is the primary key assigned to the run.
	ID int64
	// Name is the run identifier, such as "nightly_20191023T120000Z".
	Name string

	// seq is the index of the next test result to insert.
	seq int64
	tx  *sql.Tx
	db  *DB
}

// NewRun starts storing a run. benchmarkRun is the run metadata, kept
// as JSON; its startTime, if any, is indexed separately.
func (db *DB) NewRun(ctx context.Context, name, label string, benchmarkRun *intermediate.BenchmarkRun) (*Run, error) {
	content, err := json.Marshal(benchmarkRun)
	if err != nil {
		return nil, err
	}
	var startTime string
	if _, err := benchmarkRun.Decode("startTime", &startTime); err != nil {
		return nil, err
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := tx.StmtContext(ctx, db.insertRun).ExecContext(ctx, name, label, startTime, content)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	return &Run{ID: id, Name: name, tx: tx, db: db}, nil
}

// InsertTestResult stores one test result of the run.
func (r *Run) InsertTestResult(ctx context.Context, tr *intermediate.TestResult) error {
	if r.tx == nil {
		return errRunDone
	}
	if err := tr.Check(); err != nil {
		return err
	}
	content, err := json.Marshal(tr)
	if err != nil {
		return err
	}
	var duration sql.NullFloat64
	if d, err := tr.Duration(); err == nil {
		duration = sql.NullFloat64{Float64: d.Seconds(), Valid: true}
	} else if !errors.Is(err, intermediate.ErrNoDuration) {
		return err
	}
	if _, err := r.tx.StmtContext(ctx, r.db.insertTestResult).ExecContext(ctx, r.ID, r.seq, tr.TestPath, tr.Status, tr.IsExpected, duration, content); err != nil {
		return err
	}
	r.seq++
	return nil
}

var errRunDone = errors.New("run already committed or aborted")

// Commit makes the run and its test results visible.
func (r *Run) Commit() error {
	if r.tx == nil {
		return errRunDone
	}
	err := r.tx.Commit()
	r.tx = nil
	return err
}

// Abort discards the run.
func (r *Run) Abort() error {
	if r.tx == nil {
		return errRunDone
	}
	err := r.tx.Rollback()
	r.tx = nil
	return err
}

// DeleteRuns removes every stored run and its test results.
func (db *DB) DeleteRuns(ctx context.Context) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range []string{"DELETE FROM TestResults", "DELETE FROM Runs"} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// CountRuns returns the number of stored runs.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// A RunRow is a stored run.
type RunRow struct {
	ID           int64
	Name         string
	Label        string
	StartTime    string
	BenchmarkRun []byte
}

// Runs returns every stored run, oldest first.
func (db *DB) Runs(ctx context.Context) ([]RunRow, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT RunID, Name, Label, StartTime, BenchmarkRun FROM Runs ORDER BY RunID")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunRow
	for rows.Next() {
		var row RunRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Label, &row.StartTime, &row.BenchmarkRun); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// A TestResultRow is a stored test result.
type TestResultRow struct {
	Seq         int64
	TestPath    string
	Status      string
	IsExpected  bool
	RunDuration sql.NullFloat64
	Content     []byte
}

// TestResults returns the test results of the run with the given ID,
// in insertion order.
func (db *DB) TestResults(ctx context.Context, runID int64) ([]TestResultRow, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT Seq, TestPath, Status, IsExpected, RunDuration, Content FROM TestResults WHERE RunID = ? ORDER BY Seq", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TestResultRow
	for rows.Next() {
		var row TestResultRow
		if err := rows.Scan(&row.Seq, &row.TestPath, &row.Status, &row.IsExpected, &row.RunDuration, &row.Content); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertTestResult.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
