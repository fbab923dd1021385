// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fs

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestResolveBucket(t *testing.T) {
	for _, test := range []struct{ in, want string }{
		{"output", "chrome-telemetry-output"},
		{"public", "chromium-telemetry"},
		{"my-own-bucket", "my-own-bucket"},
		{"", ""},
	} {
		if got := ResolveBucket(BucketAliases, test.in); got != test.want {
			t.Errorf("ResolveBucket(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestMemFS(t *testing.T) {
	ctx := context.Background()
	fs := NewMemFS("bucket")

	w, err := fs.NewWriter(ctx, "run/a.txt", map[string]string{"Content-Type": "text/plain"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if len(fs.Files()) != 0 {
		t.Errorf("file visible before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("more")); !errors.Is(err, errClosed) {
		t.Errorf("Write after Close = %v, want errClosed", err)
	}

	aborted, err := fs.NewWriter(ctx, "run/b.txt", nil)
	if err != nil {
		t.Fatal(err)
	}
	aborted.Write([]byte("partial"))
	aborted.CloseWithError(errors.New("abort"))

	if got, want := fs.Files(), []string{"run/a.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Files() = %v, want %v", got, want)
	}
	content, meta, ok := fs.Content("run/a.txt")
	if !ok || string(content) != "hello" || meta["Content-Type"] != "text/plain" {
		t.Errorf("Content = %q, %v, %v", content, meta, ok)
	}
	if got, want := fs.URL("run/a.txt"), "mem://bucket/run/a.txt"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
