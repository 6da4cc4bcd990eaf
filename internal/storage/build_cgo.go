//go:build sqlite_vec
// +build sqlite_vec

package storage

// CGO build with github.com/mattn/go-sqlite3, selected with the sqlite_vec tag.
//
//   CGO_ENABLED=1 go build -tags "sqlite_vec" ./...

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the database/sql driver registered by mattn/go-sqlite3
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
