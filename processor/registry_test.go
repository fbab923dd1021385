// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package processor

import (
	"context"
	"reflect"
	"testing"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/intermediate"
)

func TestRegistry(t *testing.T) {
	called := false
	f := FormatterFunc(func(ctx context.Context, res *intermediate.Results, out *Output) error {
		called = true
		return nil
	})
	r := NewRegistry(map[string]Formatter{"json-test-results": f, "html": f})

	if got, want := r.Formats(), []string{"html", "json-test-results", "none"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Formats() = %q, want %q", got, want)
	}

	e, ok := r.Lookup("none")
	if !ok || e.Kind != DiscardEntry || e.Formatter != nil {
		t.Errorf("Lookup(none) = %+v, %v, want discard entry", e, ok)
	}
	e, ok = r.Lookup("html")
	if !ok || e.Kind != FormatterEntry {
		t.Fatalf("Lookup(html) = %+v, %v, want formatter entry", e, ok)
	}
	if err := e.Formatter.Process(context.Background(), intermediate.NewResults(), &Output{}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Errorf("formatter of html not called")
	}
	if _, ok := r.Lookup("chartjson"); ok {
		t.Errorf("Lookup(chartjson) succeeded")
	}

	// Formats returns a copy.
	r.Formats()[0] = "x"
	if r.Formats()[0] != "html" {
		t.Errorf("Formats() shares its slice")
	}
}

func TestRegistryReserved(t *testing.T) {
	for name, formatters := range map[string]map[string]Formatter{
		"discard": {DiscardFormat: FormatterFunc(func(context.Context, *intermediate.Results, *Output) error { return nil })},
		"nil":     {"html": nil},
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("NewRegistry did not panic")
				}
			}()
			NewRegistry(formatters)
		})
	}
}
