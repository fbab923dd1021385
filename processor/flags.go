// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package processor

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs"
)

// AddFlags defines the result processing flags on flags and returns
// the Options they set. formats lists every format the flags accept;
// it usually is the registry's formats plus the legacy ones.
//
// In standalone mode the tool only processes results, so
// -output-format and -intermediate-dir are required (see
// CheckStandalone) and there is no default format.
func AddFlags(flags *flag.FlagSet, standalone bool, formats []string) *Options {
	opts := &Options{}
	all := append([]string(nil), formats...)
	sort.Strings(all)
	all = dedup(all)

	defaultFormat := ""
	if !standalone {
		defaultFormat = " Defaults to: " + DefaultFormat + "."
	}
	flags.Var(&formatList{formats: &opts.OutputFormats, choices: all}, "output-format",
		"output `format` to produce; may be repeated to produce multiple outputs. Available formats: "+strings.Join(all, ", ")+"."+defaultFormat)

	intermediateHelp := "`directory` where intermediate results are stored"
	if !standalone {
		intermediateHelp += `; if empty, a new directory within "{output_dir}/artifacts/" is created`
	}
	flags.StringVar(&opts.IntermediateDir, "intermediate-dir", "", intermediateHelp)
	flags.StringVar(&opts.OutputDir, "output-dir", DefaultOutputDir(), "`directory` where to write final results")
	flags.BoolVar(&opts.ResetResults, "reset-results", false, "overwrite any previous output files in the output directory instead of appending to them")
	flags.StringVar(&opts.ResultsLabel, "results-label", "", "`label` to identify the results generated by this run")
	flags.BoolVar(&opts.UploadResults, "upload-results", false, "upload generated artifacts to cloud storage")

	var aliases []string
	for alias := range fs.BucketAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	flags.StringVar(&opts.UploadBucket, "upload-bucket", "output",
		"storage `bucket` to use for uploading artifacts: one of "+strings.Join(aliases, ", ")+"; or a valid cloud storage bucket name")
	return opts
}

// CheckStandalone reports an error if opts lacks the options required
// in standalone mode.
func CheckStandalone(opts *Options) error {
	if len(opts.OutputFormats) == 0 {
		return fmt.Errorf("-output-format is required")
	}
	if opts.IntermediateDir == "" {
		return fmt.Errorf("-intermediate-dir is required")
	}
	return nil
}

// DefaultOutputDir returns the directory of the running executable,
// or the working directory if it cannot be determined.
func DefaultOutputDir() string {
	if exe, err := os.Executable(); err == nil {
		if exe, err := filepath.EvalSymlinks(exe); err == nil {
			return filepath.Dir(exe)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// formatList is a repeatable flag collecting output formats.
type formatList struct {
	formats *[]string
	choices []string
}

func (l *formatList) String() string {
	if l.formats == nil {
		return ""
	}
	return strings.Join(*l.formats, ",")
}

func (l *formatList) Set(s string) error {
	i := sort.SearchStrings(l.choices, s)
	if i == len(l.choices) || l.choices[i] != s {
		return fmt.Errorf("invalid choice %q (choose from %s)", s, strings.Join(l.choices, ", "))
	}
	*l.formats = append(*l.formats, s)
	return nil
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for _, s := range sorted {
		if len(out) == 0 || s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
