//go:build cgo_sqlite

// CGO driver using mattn/go-sqlite3.
//
// Build with: go test -tags cgo_sqlite ./...
// Requires: CGO_ENABLED=1
package fixture

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const driverName = "sqlite3"
