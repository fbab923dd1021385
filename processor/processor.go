// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package processor turns the intermediate results of a benchmark run
// into the output formats requested by the user.
//
// Processing has two steps. Resolve runs before the benchmark: it
// normalizes the user's Options and splits the requested formats into
// those a Registry can produce and legacy ones left to an external
// formatter. Process runs afterwards: it loads the intermediate
// results once and hands them to the Formatter of every native
// format, one after the other, in format name order. The first
// failure stops processing; output already written by earlier
// formatters is left in place.
package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs"
)

// An UnregisteredFormatError reports a native format that is missing
// from the registry at processing time. It indicates that the options
// were resolved against a different registry.
type UnregisteredFormatError struct {
	Format string
}

func (e *UnregisteredFormatError) Error() string {
	return fmt.Sprintf("output format %q is not registered", e.Format)
}

// A FormatterError reports the failure of the Formatter of Format.
type FormatterError struct {
	Format string
	Err    error
}

func (e *FormatterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Format, e.Err)
}

func (e *FormatterError) Unwrap() error {
	return e.Err
}

// A Processor resolves options and processes results.
type Processor struct {
	Resolver

	// OpenFS opens the artifact store of an upload bucket. It is
	// only called when uploads are enabled.
	OpenFS func(ctx context.Context, bucket string) (fs.FS, error)

	// Logf, if non-nil, is called with progress messages.
	Logf func(format string, args ...interface{})
}

func (p *Processor) logf(format string, args ...interface{}) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// Run resolves opts and processes the results they point to. Options
// without an output directory are a successful no-op.
func (p *Processor) Run(ctx context.Context, opts *Options) error {
	res, err := p.Resolve(opts)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	return p.Process(ctx, res)
}

// Process loads the intermediate results of opts and runs the
// Formatter of each of opts.OutputFormats, in name order.
func (p *Processor) Process(ctx context.Context, opts *Resolved) error {
	if len(opts.OutputFormats) == 0 {
		return nil
	}

	results, err := intermediate.Load(filepath.Join(opts.IntermediateDir, intermediate.FileName))
	if err != nil {
		return err
	}
	p.logf("loaded %d test results from %s", len(results.TestResults), opts.IntermediateDir)

	out := &Output{
		Dir:             opts.OutputDir,
		IntermediateDir: opts.IntermediateDir,
		Label:           opts.ResultsLabel,
		RunID:           opts.RunID,
		Reset:           opts.ResetResults,
		Bucket:          opts.UploadBucket,
	}
	if out.Bucket != "" {
		if p.OpenFS == nil {
			return fmt.Errorf("uploads to %s requested but no artifact store is configured", out.Bucket)
		}
		out.Artifacts, err = p.OpenFS(ctx, out.Bucket)
		if err != nil {
			return fmt.Errorf("opening bucket %s: %w", out.Bucket, err)
		}
	}

	formats := append([]string(nil), opts.OutputFormats...)
	sort.Strings(formats)
	for _, format := range formats {
		e, ok := p.Registry.Lookup(format)
		if !ok || e.Kind != FormatterEntry {
			return &UnregisteredFormatError{format}
		}
		p.logf("writing %s output to %s", format, out.Dir)
		if err := e.Formatter.Process(ctx, results, out); err != nil {
			return &FormatterError{format, err}
		}
	}
	return nil
}
