//go:build !cgo_sqlite

// Package fixture builds real, on-disk SQLite database files for tests to
// read back through the query engine. It is never imported by the engine
// itself; it exists so tests exercise byte-exact SQLite files instead of
// hand-rolled byte arrays.
//
// Pure Go driver using modernc.org/sqlite. This is the default build; pass
// -tags cgo_sqlite to use mattn/go-sqlite3 instead, mirroring
// FocuswithJustin-JuniperBible's core/sqlite driver split.
package fixture

import (
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const driverName = "sqlite"
