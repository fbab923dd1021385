// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intermediate

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FileName is the name of the intermediate results file within an
// intermediate directory.
const FileName = "_telemetry_results.jsonl"

// MaxRecordSize is the longest line a Reader accepts. A longer line
// is a syntax error.
const MaxRecordSize = 64 << 20

var maxRecordSize = MaxRecordSize // lowered during testing

// A Reader reads the intermediate results format: one JSON object per
// line, each optionally carrying a "benchmarkRun" object and a
// "testResult" object.
//
// Its API is modeled on bufio.Scanner. Unlike the Go benchmark
// format, a syntax error is not recoverable: the first malformed line
// stops the Reader and is reported by Err.
type Reader struct {
	s   *bufio.Scanner
	err error

	rec      *Record
	fileName string
	line     int
}

// A Record is one line of the intermediate results file. Either field
// may be nil.
type Record struct {
	BenchmarkRun *BenchmarkRun
	TestResult   *TestResult

	fileName string
	line     int
}

// Pos returns the file name and 1-based line number of a Record read
// by a Reader. For Records that were not read from a file, it returns
// "", 0.
func (r *Record) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// A SyntaxError reports a line that is not a valid record.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

// A ReadError reports that an intermediate results file could not be
// opened or read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading intermediate results %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewReader constructs a reader to parse intermediate results from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	r.s = bufio.NewScanner(ior)
	r.s.Buffer(make([]byte, 0, 64<<10), maxRecordSize)
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.fileName = fileName
	r.line = 0
	r.rec = nil
	r.err = nil
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Record method to get the
// record. If Scan reaches EOF, hits a malformed line, or an I/O error
// occurs, it returns false, in which case the caller should use the
// Err method to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.s.Scan() {
		if err := r.s.Err(); errors.Is(err, bufio.ErrTooLong) {
			r.err = &SyntaxError{r.fileName, r.line + 1, fmt.Sprintf("line longer than %d bytes", maxRecordSize)}
		} else if err != nil {
			r.err = &ReadError{r.fileName, fmt.Errorf("line %d: %w", r.line+1, err)}
		}
		r.rec = nil
		return false
	}
	r.line++
	rec, err := r.parseRecord(r.s.Bytes())
	if err != nil {
		r.err = err
		r.rec = nil
		return false
	}
	r.rec = rec
	return true
}

func (r *Reader) newSyntaxError(msg string) *SyntaxError {
	return &SyntaxError{r.fileName, r.line, msg}
}

// parseRecord parses line as a single record. The returned Record
// shares no memory with line.
func (r *Reader) parseRecord(line []byte) (*Record, error) {
	if len(line) == 0 {
		return nil, r.newSyntaxError("empty line")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, r.newSyntaxError(err.Error())
	}
	if fields == nil {
		return nil, r.newSyntaxError("record is not a JSON object")
	}
	rec := &Record{fileName: r.fileName, line: r.line}
	if raw, ok := fields["benchmarkRun"]; ok {
		rec.BenchmarkRun = new(BenchmarkRun)
		if err := rec.BenchmarkRun.UnmarshalJSON(raw); err != nil {
			return nil, r.newSyntaxError(err.Error())
		}
	}
	if raw, ok := fields["testResult"]; ok {
		rec.TestResult = new(TestResult)
		if err := rec.TestResult.UnmarshalJSON(raw); err != nil {
			return nil, r.newSyntaxError(err.Error())
		}
	}
	return rec, nil
}

// Record returns the record that was just read by Scan. The caller
// may retain it.
func (r *Reader) Record() *Record {
	return r.rec
}

// Err returns the first malformed line or non-EOF I/O error that was
// encountered by the Reader. Malformed lines are reported as
// *SyntaxError and I/O errors as *ReadError.
func (r *Reader) Err() error {
	return r.err
}
