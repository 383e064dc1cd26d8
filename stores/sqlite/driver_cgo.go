//go:build cgo

package sqlite

import _ "github.com/mattn/go-sqlite3"

// CGOEnabled reports whether the store is built on the cgo driver.
const CGOEnabled = true

const driverName = "sqlite3"
