// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intermediate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// A BenchmarkRun is the metadata of a benchmark run. It is a JSON
// object assembled from partial updates: each update overwrites the
// keys it carries and leaves every other key alone.
//
// Fields keeps keys in the order they were first set, so a
// BenchmarkRun built from the same updates always serializes to the
// same bytes.
type BenchmarkRun struct {
	// Fields is the set of key/value pairs of the run.
	//
	// BenchmarkRun maintains an index of the keys of this slice, so
	// callers must use Set to add keys, but may modify values in
	// place. For convenience, a BenchmarkRun may be initialized
	// directly with a struct literal.
	Fields []Field

	// pos maps from Field.Key to index in Fields. This may be nil,
	// which indicates the index needs to be constructed.
	pos map[string]int
}

// A Field is a single key of a BenchmarkRun and its raw JSON value.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Set sets key to value, overriding the existing value of key or
// appending key if it is new. A JSON null is a value like any other
// and does not delete key.
func (b *BenchmarkRun) Set(key string, value json.RawMessage) {
	value = append(json.RawMessage(nil), value...)
	if pos, ok := b.Index(key); ok {
		b.Fields[pos].Value = value
		return
	}
	b.pos[key] = len(b.Fields)
	b.Fields = append(b.Fields, Field{key, value})
}

// Get returns the raw value of key and whether key is present.
func (b *BenchmarkRun) Get(key string) (json.RawMessage, bool) {
	pos, ok := b.Index(key)
	if !ok {
		return nil, false
	}
	return b.Fields[pos].Value, true
}

// Index returns the index in b.Fields of key.
func (b *BenchmarkRun) Index(key string) (pos int, ok bool) {
	if b.pos == nil {
		// This is a fresh BenchmarkRun. Construct the index.
		b.pos = make(map[string]int)
		for i, f := range b.Fields {
			b.pos[f.Key] = i
		}
	}
	pos, ok = b.pos[key]
	return
}

// Merge applies update to b. Every key present in update overwrites
// the value in b; nested objects are replaced, not merged.
func (b *BenchmarkRun) Merge(update *BenchmarkRun) {
	for _, f := range update.Fields {
		b.Set(f.Key, f.Value)
	}
}

// Decode unmarshals the value of key into v. It reports whether key
// was present; a missing key leaves v untouched.
func (b *BenchmarkRun) Decode(key string, v interface{}) (bool, error) {
	raw, ok := b.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("benchmarkRun.%s: %w", key, err)
	}
	return true, nil
}

// Clone makes a copy of b that shares no state with b.
func (b *BenchmarkRun) Clone() *BenchmarkRun {
	b2 := &BenchmarkRun{Fields: make([]Field, len(b.Fields))}
	for i, f := range b.Fields {
		b2.Fields[i] = Field{f.Key, append(json.RawMessage(nil), f.Value...)}
	}
	return b2
}

// MarshalJSON encodes b as a JSON object with keys in b.Fields order.
func (b BenchmarkRun) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range b.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := json.Compact(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("benchmarkRun.%s: %w", f.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of b with the JSON object in
// data. Duplicate keys keep the last value, at the position of the
// first occurrence.
func (b *BenchmarkRun) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return fmt.Errorf("benchmarkRun is not a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	b.Fields = b.Fields[:0]
	b.pos = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in benchmarkRun", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		b.Set(key, value)
	}
	// Consume the closing brace.
	_, err := dec.Token()
	return err
}

// isObject reports whether the JSON value in data is an object.
func isObject(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 0 && data[0] == '{'
}
