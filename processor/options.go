// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package processor

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs"
)

// DefaultFormat is the output format produced when none is requested.
const DefaultFormat = "html"

// Options are the result processing options as given by the user.
type Options struct {
	// OutputFormats are the requested output formats, possibly
	// with duplicates.
	OutputFormats []string
	// IntermediateDir is the directory holding the intermediate
	// results. If empty, a fresh directory under
	// OutputDir/artifacts is used.
	IntermediateDir string
	// OutputDir is the directory to write final results to. If
	// empty, there is nothing to process.
	OutputDir string
	// ResultsLabel labels the results of this run.
	ResultsLabel string
	// ResetResults overwrites previous output instead of
	// extending it.
	ResetResults bool
	// UploadResults enables uploading artifacts to UploadBucket.
	UploadResults bool
	// UploadBucket is a cloud storage bucket name or one of its
	// aliases.
	UploadBucket string
}

// Resolved are the result processing options after resolution.
type Resolved struct {
	// IntermediateDir and OutputDir are absolute paths with
	// symbolic links resolved.
	IntermediateDir string
	OutputDir       string
	// OutputFormats are the sorted, distinct formats produced by
	// the registry.
	OutputFormats []string
	// LegacyFormats are the distinct formats left to an external
	// formatter, in the order they were requested.
	LegacyFormats []string
	// UploadBucket is the bucket to upload to, or "" if uploads
	// are disabled.
	UploadBucket string
	ResultsLabel string
	ResetResults bool
	// RunID identifies this run. It is derived from the label and
	// the resolution time.
	RunID string
}

// A Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock of the system's wall time.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// A Resolver resolves Options against a Registry.
type Resolver struct {
	// Registry holds the natively supported formats.
	Registry *Registry
	// LegacyFormats are the formats known to the external
	// formatter. A requested format in neither Registry nor
	// LegacyFormats is still passed on as legacy, with a warning.
	LegacyFormats []string
	// BucketAliases maps bucket aliases to bucket names. If nil,
	// fs.BucketAliases is used.
	BucketAliases map[string]string
	// Clock is the time source for run IDs. If nil, SystemClock
	// is used.
	Clock Clock
	// Warn, if non-nil, is called with advisory messages.
	Warn func(format string, args ...interface{})
}

// Resolve computes the resolved options of opts. If opts has no
// output directory there is nothing to process and Resolve returns
// nil, nil.
func (r *Resolver) Resolve(opts *Options) (*Resolved, error) {
	if opts.OutputDir == "" {
		return nil, nil
	}

	var res Resolved
	var err error
	res.ResultsLabel = opts.ResultsLabel
	res.ResetResults = opts.ResetResults
	res.OutputDir, err = resolveDir(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	clock := r.Clock
	if clock == nil {
		clock = SystemClock
	}
	res.RunID = RunID(opts.ResultsLabel, clock.Now())

	if opts.IntermediateDir != "" {
		res.IntermediateDir, err = resolveDir(opts.IntermediateDir)
		if err != nil {
			return nil, err
		}
	} else {
		res.IntermediateDir = filepath.Join(res.OutputDir, "artifacts", res.RunID)
	}

	if opts.UploadResults {
		aliases := r.BucketAliases
		if aliases == nil {
			aliases = fs.BucketAliases
		}
		res.UploadBucket = fs.ResolveBucket(aliases, opts.UploadBucket)
	}

	res.OutputFormats, res.LegacyFormats = r.partition(opts.OutputFormats)
	return &res, nil
}

// partition splits the requested formats into those in the registry
// and the legacy ones, dropping duplicates and DiscardFormat.
func (r *Resolver) partition(requested []string) (native, legacy []string) {
	if len(requested) == 0 {
		return []string{DefaultFormat}, nil
	}
	known := make(map[string]bool)
	for _, f := range r.LegacyFormats {
		known[f] = true
	}
	seen := make(map[string]bool)
	for _, format := range requested {
		if seen[format] {
			continue
		}
		seen[format] = true
		e, ok := r.Registry.Lookup(format)
		switch {
		case ok && e.Kind == DiscardEntry:
			// Explicitly no output.
		case ok:
			native = append(native, format)
		default:
			if !known[format] && r.Warn != nil {
				r.Warn("output format %q is not known to any formatter; passing it to legacy formatters", format)
			}
			legacy = append(legacy, format)
		}
	}
	sort.Strings(native)
	return native, legacy
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// RunID returns the identifier of a run labeled label that started at
// t: the label with every run of non-word characters replaced by "_"
// (or "run" if there is no label), followed by "_" and the UTC time
// formatted as YYYYMMDDTHHMMSSZ.
func RunID(label string, t time.Time) string {
	slug := "run"
	if label != "" {
		slug = nonWord.ReplaceAllString(label, "_")
	}
	return slug + "_" + t.UTC().Format("20060102T150405Z")
}

// resolveDir returns the absolute form of path, with a leading "~"
// expanded and symbolic links resolved. Trailing components that do
// not exist yet are kept as given.
func resolveDir(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// Resolve the longest existing prefix.
	var rest []string
	for dir := path; ; {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return path, nil
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}
