//go:build !cgo

package sqlite

import _ "modernc.org/sqlite"

// CGOEnabled reports whether the store is built on the cgo driver.
// Without cgo the pure-Go modernc driver is used instead.
const CGOEnabled = false

const driverName = "sqlite"
