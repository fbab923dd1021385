// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Resultsprocessor turns the intermediate results of a benchmark run
// into final output files.
//
// Usage:
//
//	resultsprocessor [-v] -intermediate-dir dir -output-format format [-output-format format...] [flags]
//
// The intermediate directory must contain the _telemetry_results.jsonl
// file written by the benchmark harness. Each requested output format
// is written to the output directory, which defaults to the directory
// of the resultsprocessor binary.
//
// Formats produced by the legacy formatter are not written. Instead,
// their names are printed one per line to standard output, so that the
// caller can hand them on.
//
// With -upload-results, artifacts are uploaded to Google Cloud Storage
// using the application default credentials.
//
// The results-db format stores runs in a SQLite database in the output
// directory, unless -results-db-driver and -results-db-dsn name
// another database. MySQL DSNs may use the cloudsql network to reach a
// Cloud SQL instance.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/formatters"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/processor"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs/gcs"
)

var exit = os.Exit // replaced during testing

// openFS opens the artifact store of a bucket. It is replaced during
// testing.
var openFS = func(ctx context.Context, bucket string) (fs.FS, io.Closer, error) {
	g, err := gcs.NewFS(ctx, bucket)
	if err != nil {
		return nil, nil, err
	}
	return g, g, nil
}

func main() {
	log.SetPrefix("resultsprocessor: ")
	log.SetFlags(0)
	err := resultsprocessor(context.Background(), os.Stdout, os.Stderr, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		exit(2)
	} else if err != nil {
		log.Print(err)
		exit(1)
	}
}

func resultsprocessor(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("resultsprocessor", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: resultsprocessor [flags]\n")
		flags.PrintDefaults()
	}
	verbose := flags.Bool("v", false, "print progress messages")
	dbDriver := flags.String("results-db-driver", "", "database `driver` for the results-db format (sqlite3 or mysql); default is a SQLite file in the output directory")
	dbDSN := flags.String("results-db-dsn", "", "data source `name` for -results-db-driver")

	// The registry's formatters are built after parsing, but only
	// their names are needed to define the flags.
	names := append(formatters.Default(formatters.Config{}).Formats(), formatters.LegacyFormats...)
	opts := processor.AddFlags(flags, true, names)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		flags.Usage()
		return fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	if err := processor.CheckStandalone(opts); err != nil {
		flags.Usage()
		return err
	}
	if *dbDSN != "" && *dbDriver == "" {
		return fmt.Errorf("-results-db-dsn requires -results-db-driver")
	}

	logger := log.New(stderr, "resultsprocessor: ", 0)
	var logf func(string, ...interface{})
	if *verbose {
		logf = logger.Printf
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	p := &processor.Processor{
		Resolver: processor.Resolver{
			Registry:      formatters.Default(formatters.Config{DBDriver: *dbDriver, DBDSN: *dbDSN, Logf: logf}),
			LegacyFormats: formatters.LegacyFormats,
			Warn:          logger.Printf,
		},
		OpenFS: func(ctx context.Context, bucket string) (fs.FS, error) {
			f, c, err := openFS(ctx, bucket)
			if err != nil {
				return nil, err
			}
			closers = append(closers, c)
			return f, nil
		},
		Logf: logf,
	}

	res, err := p.Resolve(opts)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	if err := p.Process(ctx, res); err != nil {
		return err
	}
	for _, format := range res.LegacyFormats {
		fmt.Fprintln(stdout, format)
	}
	return nil
}
