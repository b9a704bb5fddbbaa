//go:build !sqlite3_cgo

package db

// Pure-Go sqlite (wazero-based), so the default build needs no cgo.
import (
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	driverImpl = "ncruces/go-sqlite3"
	driverName = "sqlite3"
)
