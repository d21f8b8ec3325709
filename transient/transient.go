// Package transient classifies a database error as retryable, grounded on
// the well-known SQLite busy/locked conditions and the common driver-level
// connection failures every dialect can surface (spec.md §5, §7). The
// retry package only retries errors this package marks transient.
package transient

import (
	"context"
	"errors"
	"strings"
)

// substrings matched case-insensitively against an error's message chain.
// SQLite reports busy/locked conditions as plain text (modernc.org/sqlite
// and mattn/go-sqlite3 both do), not as a typed error the caller can type-
// assert portably, so message inspection is the practical option.
var substrings = []string{
	"database is locked",
	"sqlite_busy",
	"sqlite_locked",
	"database table is locked",
	"driver: bad connection",
	"invalid connection",
	"connection reset",
	"broken pipe",
	"too many connections",
	"connection refused",
	"i/o timeout",
	"deadlock",
	"lock wait timeout",
	"could not serialize access",
}

// Is reports whether err represents a transient failure that a retry is
// expected to clear: a busy/locked SQLite database, a deadlock, lock-wait
// timeout or serialization failure, or a dropped/refused connection. Context cancellation and deadline errors are never
// transient — they're the caller telling the operation to stop, not a
// condition retrying would fix.
func Is(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return matches(err, 0)
}

// matches walks the error's Unwrap/Is chain (bounded, to tolerate
// accidental cycles in third-party wrapping) looking for a known
// transient substring at any level.
func matches(err error, depth int) bool {
	if err == nil || depth > 16 {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range substrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		return matches(x.Unwrap(), depth+1)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if matches(e, depth+1) {
				return true
			}
		}
	}
	return false
}
