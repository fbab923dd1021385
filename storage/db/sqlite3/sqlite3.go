// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sqlite3 provides the sqlite3 driver for
// storage/db.OpenSQL. It must be imported instead of go-sqlite3 to
// ensure foreign keys are properly honored.
package sqlite3

import (
	"database/sql"

	"github.com/TrellixVulnTeam/huhi-android-RR7G/storage/db"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func init() {
	db.RegisterOpenHook("sqlite3", func(db *sql.DB) error {
		db.Driver().(*sqlite3.SQLiteDriver).ConnectHook = func(c *sqlite3.SQLiteConn) error {
			if _, err := c.Exec("PRAGMA foreign_keys = ON;", nil); err != nil {
				return err
			}
			_, err := c.Exec("PRAGMA busy_timeout = 5000;", nil)
			return err
		}
		return nil
	})
}
