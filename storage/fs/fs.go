// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fs provides a backend-agnostic filesystem layer for storing
// run artifacts in cloud storage.
package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
)

// An FS stores uploaded artifacts.
type FS interface {
	// NewWriter returns a Writer for a given file name. When the
	// Writer is closed, the file will be stored with the given
	// metadata.
	NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error)

	// URL returns a URL where the file name can be viewed once it
	// has been written.
	URL(name string) string
}

// A Writer is an io.Writer that can also be closed with an error.
type Writer interface {
	io.WriteCloser
	// CloseWithError cancels the writing of the file, removing
	// any partially written data.
	CloseWithError(error) error
}

// BucketAliases maps short names accepted for the upload bucket to
// the cloud storage buckets they stand for.
var BucketAliases = map[string]string{
	"public":   "chromium-telemetry",
	"partner":  "chrome-partner-telemetry",
	"internal": "chrome-telemetry",
	"output":   "chrome-telemetry-output",
}

// ResolveBucket returns the bucket that name stands for: its alias
// target if name is an alias in aliases, otherwise name itself.
func ResolveBucket(aliases map[string]string, name string) string {
	if bucket, ok := aliases[name]; ok {
		return bucket
	}
	return name
}

// MemFS is an in-memory filesystem implementing the FS interface.
type MemFS struct {
	bucket string

	mu      sync.Mutex
	content map[string]*memFile
}

// NewMemFS constructs a new, empty MemFS named bucket.
func NewMemFS(bucket string) *MemFS {
	return &MemFS{
		bucket:  bucket,
		content: make(map[string]*memFile),
	}
}

// NewWriter returns a Writer for a given file name. As a side effect,
// it associates the given metadata with the file.
func (fs *MemFS) NewWriter(_ context.Context, name string, metadata map[string]string) (Writer, error) {
	meta := make(map[string]string)
	for k, v := range metadata {
		meta[k] = v
	}
	return &memFile{fs: fs, name: name, metadata: meta}, nil
}

// URL returns a mem:// URL for name.
func (fs *MemFS) URL(name string) string {
	return "mem://" + fs.bucket + "/" + name
}

// Files returns the names of the files written to fs, in sorted order.
func (fs *MemFS) Files() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var files []string
	for f := range fs.content {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Content returns the content and metadata of the file name, or false
// if it has not been written.
func (fs *MemFS) Content(name string) ([]byte, map[string]string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.content[name]
	if !ok {
		return nil, nil, false
	}
	return f.content.Bytes(), f.metadata, true
}

// memFile represents a file in a MemFS. While the file is being
// written, fs points to the filesystem. Close writes the file's
// content to fs and sets fs to nil.
type memFile struct {
	fs       *MemFS
	name     string
	metadata map[string]string
	content  bytes.Buffer
}

var errClosed = errors.New("file already closed")

func (f *memFile) Write(p []byte) (int, error) {
	if f.fs == nil {
		return 0, errClosed
	}
	return f.content.Write(p)
}

func (f *memFile) Close() error {
	if f.fs == nil {
		return errClosed
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	f.fs.content[f.name] = f
	f.fs = nil
	return nil
}

func (f *memFile) CloseWithError(error) error {
	f.fs = nil
	return nil
}
