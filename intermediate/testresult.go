// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intermediate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"
)

// Test statuses used by the benchmark harness.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

// A TestResult is the outcome of one story run.
//
// A TestResult keeps the exact JSON it was decoded from and marshals
// back to it, so fields that this package does not know about survive
// a round trip. The exported fields are a decoded view of that JSON
// and should be treated as read-only. A known field whose value has
// the wrong type is left zero in the view and reported by Check.
type TestResult struct {
	// TestPath is "benchmark/story", with the story URL-escaped.
	TestPath string `json:"testPath"`
	// Status is one of StatusPass, StatusFail or StatusSkip.
	Status     string `json:"status"`
	IsExpected bool   `json:"isExpected"`
	// StartTime is an RFC 3339 timestamp.
	StartTime string `json:"startTime,omitempty"`
	// RunDuration is a duration such as "1.5s".
	RunDuration string              `json:"runDuration,omitempty"`
	Artifacts   map[string]Artifact `json:"artifacts,omitempty"`
	Tags        []Tag               `json:"tags,omitempty"`

	raw     json.RawMessage
	invalid []*FieldError
}

// A FieldError reports a known testResult field whose JSON value
// could not be decoded.
type FieldError struct {
	TestPath string
	Field    string
	Err      error
}

func (e *FieldError) Error() string {
	if e.TestPath == "" {
		return fmt.Sprintf("testResult.%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("test %s: testResult.%s: %v", e.TestPath, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// An Artifact is a file produced while running a story.
type Artifact struct {
	FilePath    string `json:"filePath,omitempty"`
	RemoteURL   string `json:"remoteUrl,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// A Tag is a key/value annotation on a TestResult.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ErrNoDuration is returned by TestResult.Duration when the result
// has no runDuration.
var ErrNoDuration = errors.New("test result has no runDuration")

// testResultFields has the fields of TestResult without its methods.
type testResultFields TestResult

// UnmarshalJSON retains a copy of data and decodes the known fields
// of the JSON object in data. It only fails if data is not an object.
func (t *TestResult) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return fmt.Errorf("testResult is not a JSON object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*t = TestResult{raw: append(json.RawMessage(nil), data...)}
	for _, f := range []struct {
		name string
		v    interface{}
	}{
		{"testPath", &t.TestPath},
		{"status", &t.Status},
		{"isExpected", &t.IsExpected},
		{"startTime", &t.StartTime},
		{"runDuration", &t.RunDuration},
		{"artifacts", &t.Artifacts},
		{"tags", &t.Tags},
	} {
		raw, ok := fields[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.v); err != nil {
			// Drop any partially decoded value.
			v := reflect.ValueOf(f.v).Elem()
			v.Set(reflect.Zero(v.Type()))
			t.invalid = append(t.invalid, &FieldError{Field: f.name, Err: err})
		}
	}
	for _, e := range t.invalid {
		e.TestPath = t.TestPath
	}
	return nil
}

// Check returns a *FieldError for the first known field of t that
// could not be decoded, or nil.
func (t *TestResult) Check() error {
	if len(t.invalid) == 0 {
		return nil
	}
	return t.invalid[0]
}

// MarshalJSON returns the JSON t was decoded from, or an encoding of
// its fields if t was constructed directly.
func (t TestResult) MarshalJSON() ([]byte, error) {
	if t.raw != nil {
		return t.raw, nil
	}
	return json.Marshal(testResultFields(t))
}

// Raw returns the JSON t was decoded from, or nil.
func (t *TestResult) Raw() json.RawMessage {
	return t.raw
}

// SplitPath splits TestPath into the benchmark name and the unescaped
// story name.
func (t *TestResult) SplitPath() (benchmark, story string, err error) {
	parts := strings.Split(t.TestPath, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("test path %q is not of the form benchmark/story", t.TestPath)
	}
	story, err = url.PathUnescape(parts[1])
	if err != nil {
		return "", "", fmt.Errorf("test path %q: %w", t.TestPath, err)
	}
	return parts[0], story, nil
}

// Duration parses RunDuration.
func (t *TestResult) Duration() (time.Duration, error) {
	if t.RunDuration == "" {
		return 0, ErrNoDuration
	}
	d, err := time.ParseDuration(t.RunDuration)
	if err != nil {
		return 0, fmt.Errorf("test %s: runDuration: %w", t.TestPath, err)
	}
	return d, nil
}

// Tag returns the value of the first tag with the given key.
func (t *TestResult) Tag(key string) (string, bool) {
	for _, tag := range t.Tags {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}
