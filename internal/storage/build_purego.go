//go:build purego || !sqlite_vec
// +build purego !sqlite_vec

package storage

// Default build: the pure Go SQLite driver, no C compiler required.
//
//   CGO_ENABLED=0 go build ./...

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver registered by modernc.org/sqlite
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
