//go:build cgo && sqlite3_cgo

package db

// Opt in with -tags sqlite3_cgo for the C sqlite driver.
import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverImpl = "mattn/go-sqlite3"
	driverName = "sqlite3"
)
