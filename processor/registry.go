// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package processor

import (
	"context"
	"fmt"
	"sort"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs"
)

// A Formatter turns aggregated results into output files for one
// output format.
//
// Process must not modify res. It may write any files under out.Dir
// and, if out.Artifacts is non-nil, upload files to it.
type Formatter interface {
	Process(ctx context.Context, res *intermediate.Results, out *Output) error
}

// FormatterFunc adapts an ordinary function to a Formatter.
type FormatterFunc func(ctx context.Context, res *intermediate.Results, out *Output) error

// Process calls f(ctx, res, out).
func (f FormatterFunc) Process(ctx context.Context, res *intermediate.Results, out *Output) error {
	return f(ctx, res, out)
}

// An Output describes where and how a Formatter writes its results.
type Output struct {
	// Dir is the absolute directory to write output files to.
	Dir string
	// IntermediateDir is the absolute directory holding the
	// intermediate results and their artifacts.
	IntermediateDir string
	// Label is the user-provided label of the run, or "".
	Label string
	// RunID identifies this run, such as "nightly_20191023T120000Z".
	RunID string
	// Reset is set if previous output in Dir should be overwritten
	// rather than extended.
	Reset bool
	// Bucket is the cloud storage bucket to upload to, or "" if
	// uploads are disabled.
	Bucket string
	// Artifacts stores uploads in Bucket. It is nil when Bucket is "".
	Artifacts fs.FS
}

// DiscardFormat is the output format that explicitly produces nothing.
const DiscardFormat = "none"

// An EntryKind distinguishes the entries of a Registry.
type EntryKind int

const (
	// FormatterEntry is a format produced by a Formatter.
	FormatterEntry EntryKind = iota
	// DiscardEntry is a format that produces no output.
	DiscardEntry
)

// An Entry is the registration of one output format.
type Entry struct {
	Kind EntryKind
	// Formatter is set if Kind is FormatterEntry.
	Formatter Formatter
}

// A Registry maps output format names to the Formatters producing
// them. A Registry is built once and is read-only afterwards; it is
// safe for concurrent use.
type Registry struct {
	entries map[string]Entry
	names   []string
}

// NewRegistry returns a Registry of the given formatters. The registry
// also contains DiscardFormat.
func NewRegistry(formatters map[string]Formatter) *Registry {
	r := &Registry{entries: map[string]Entry{DiscardFormat: {Kind: DiscardEntry}}}
	for name, f := range formatters {
		if name == DiscardFormat {
			panic(fmt.Sprintf("processor: format %q is reserved", DiscardFormat))
		}
		if f == nil {
			panic(fmt.Sprintf("processor: nil formatter for format %q", name))
		}
		r.entries[name] = Entry{Kind: FormatterEntry, Formatter: f}
	}
	for name := range r.entries {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Lookup returns the entry of format. ok is false if the format is
// not registered.
func (r *Registry) Lookup(format string) (e Entry, ok bool) {
	e, ok = r.entries[format]
	return
}

// Formats returns the sorted names of all registered formats,
// including DiscardFormat.
func (r *Registry) Formats() []string {
	return append([]string(nil), r.names...)
}
