// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs implements the fs.FS interface using Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/fs"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// An FS writes artifacts to a cloud storage bucket.
type FS struct {
	bucket string
	handle *storage.BucketHandle
	client *storage.Client
}

var _ fs.FS = (*FS)(nil)

// NewFS constructs an FS that writes to the provided bucket.
// If no client options are given, the application default
// credentials are used with a read-write scope.
func NewFS(ctx context.Context, bucket string, opts ...option.ClientOption) (*FS, error) {
	if len(opts) == 0 {
		ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("gcs: default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(ts))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: %w", err)
	}
	return &FS{bucket: bucket, handle: client.Bucket(bucket), client: client}, nil
}

// NewWriter starts a new object in the bucket. The object is only
// committed when the returned Writer is closed with Close.
// A "Content-Type" metadata entry also sets the object's content type.
func (f *FS) NewWriter(ctx context.Context, name string, metadata map[string]string) (fs.Writer, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := f.handle.Object(name).NewWriter(ctx)
	w.Metadata = metadata
	if ct, ok := metadata["Content-Type"]; ok {
		w.ContentType = ct
	}
	return &writer{Writer: w, cancel: cancel}, nil
}

// URL returns the cloud console URL of the object name.
func (f *FS) URL(name string) string {
	return fmt.Sprintf("https://console.developers.google.com/m/cloudstorage/b/%s/o/%s", f.bucket, (&url.URL{Path: name}).EscapedPath())
}

// Close releases the underlying storage client.
func (f *FS) Close() error {
	return f.client.Close()
}

// writer aborts an upload by canceling the context of the storage
// writer.
type writer struct {
	*storage.Writer
	cancel context.CancelFunc
}

func (w *writer) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

func (w *writer) CloseWithError(error) error {
	w.cancel()
	// The canceled upload reports the cancellation; there is nothing
	// left to commit.
	w.Writer.Close()
	return nil
}
