// Package errkind classifies every error the engine returns into one of a
// small set of kinds, so callers can branch on Kind() instead of string
// matching or growing a bespoke sentinel-error zoo per operation.
package errkind

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure behind an *Error.
type Kind int

const (
	// Misconfiguration covers schema/annotation declaration errors
	// discovered at load time: a missing primary key, an unresolvable
	// foreign key, a SchemaType-less Other field.
	Misconfiguration Kind = iota
	// InvalidArgument covers caller-supplied values that fail validation
	// before a statement is ever sent to the driver.
	InvalidArgument
	// EntityAlreadyExists covers unique-constraint violations on create.
	EntityAlreadyExists
	// EntityNotFound covers Get/Update/Delete against a missing row.
	EntityNotFound
	// ConcurrencyConflict covers a version mismatch on optimistic update.
	ConcurrencyConflict
	// DataIntegrity covers foreign-key and check-constraint violations
	// that are not unique-constraint violations.
	DataIntegrity
	// Transient covers faults the transient detector classifies as
	// retryable: lock contention, busy/locked SQLite codes, timeouts.
	Transient
	// Cancelled covers context cancellation/deadline-exceeded.
	Cancelled
	// Internal covers everything else: driver bugs, invariant violations.
	Internal
)

// String renders the kind's name.
func (k Kind) String() string {
	switch k {
	case Misconfiguration:
		return "misconfiguration"
	case InvalidArgument:
		return "invalid_argument"
	case EntityAlreadyExists:
		return "entity_already_exists"
	case EntityNotFound:
		return "entity_not_found"
	case ConcurrencyConflict:
		return "concurrency_conflict"
	case DataIntegrity:
		return "data_integrity"
	case Transient:
		return "transient"
	case Cancelled:
		return "cancelled"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error wraps a cause with a Kind and operational context: the entity
// type and operation in progress, and (when safe to surface) the primary
// key involved.
type Error struct {
	kind   Kind
	Entity string
	Op     string
	PK     any // nil when not applicable or unsafe to surface
	cause  error
}

// New constructs an *Error of the given kind.
func New(kind Kind, entity, op string, cause error) *Error {
	return &Error{kind: kind, Entity: entity, Op: op, cause: cause}
}

// WithPK attaches the primary key value to an already-constructed error.
func (e *Error) WithPK(pk any) *Error {
	e.PK = pk
	return e
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// Error renders a message including entity, operation, and PK when present.
func (e *Error) Error() string {
	if e.PK != nil {
		if e.cause != nil {
			return fmt.Sprintf("persisto: %s %s (pk=%v): %v", e.Op, e.Entity, e.PK, e.cause)
		}
		return fmt.Sprintf("persisto: %s %s (pk=%v): %s", e.Op, e.Entity, e.PK, e.kind)
	}
	if e.cause != nil {
		return fmt.Sprintf("persisto: %s %s: %v", e.Op, e.Entity, e.cause)
	}
	return fmt.Sprintf("persisto: %s %s: %s", e.Op, e.Entity, e.kind)
}

// Is reports whether err is an *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.kind == kind
}

// As extracts the *errkind.Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// OfKind reports the Kind of err, defaulting to Internal when err is not
// (or does not wrap) an *Error.
func OfKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return Internal
}
