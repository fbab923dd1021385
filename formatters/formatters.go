// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package formatters assembles the registry of natively supported
// output formats.
package formatters

import (
	"github.com/TrellixVulnTeam/huhi-android-RR7G/formatters/chartoutput"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/formatters/csvoutput"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/formatters/dboutput"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/formatters/htmloutput"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/formatters/json3output"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
)

// LegacyFormats are the output formats produced by the external
// legacy formatter.
var LegacyFormats = []string{
	"chartjson",
	"csv-legacy",
	"histograms",
	"html-legacy",
}

// A Config configures the formatters of the default registry.
type Config struct {
	// DBDriver and DBDSN select the database of the results-db
	// format. By default it is a SQLite file in the output directory.
	DBDriver string
	DBDSN    string

	// Logf, if non-nil, is called with progress messages.
	Logf func(format string, args ...interface{})
}

// Default returns the registry of every native output format.
func Default(cfg Config) *processor.Registry {
	return processor.NewRegistry(map[string]processor.Formatter{
		chartoutput.Format: &chartoutput.Formatter{Logf: cfg.Logf},
		csvoutput.Format:   &csvoutput.Formatter{},
		dboutput.Format:    &dboutput.Formatter{Driver: cfg.DBDriver, DSN: cfg.DBDSN, Logf: cfg.Logf},
		htmloutput.Format:  &htmloutput.Formatter{},
		json3output.Format: &json3output.Formatter{Logf: cfg.Logf},
	})
}
