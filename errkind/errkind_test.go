package errkind_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/errkind"
)

func TestKindString(t *testing.T) {
	cases := map[errkind.Kind]string{
		errkind.Misconfiguration:   "misconfiguration",
		errkind.InvalidArgument:    "invalid_argument",
		errkind.EntityAlreadyExists: "entity_already_exists",
		errkind.EntityNotFound:     "entity_not_found",
		errkind.ConcurrencyConflict: "concurrency_conflict",
		errkind.DataIntegrity:      "data_integrity",
		errkind.Transient:          "transient",
		errkind.Cancelled:          "cancelled",
		errkind.Internal:           "internal",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Run("without pk or cause", func(t *testing.T) {
		err := errkind.New(errkind.EntityNotFound, "User", "Get", nil)
		assert.Equal(t, "persisto: Get User: entity_not_found", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("no rows")
		err := errkind.New(errkind.EntityNotFound, "User", "Get", cause)
		assert.Equal(t, "persisto: Get User: no rows", err.Error())
	})

	t.Run("with pk", func(t *testing.T) {
		err := errkind.New(errkind.ConcurrencyConflict, "Order", "Update", nil).WithPK(42)
		assert.Equal(t, "persisto: Update Order (pk=42): concurrency_conflict", err.Error())
	})

	t.Run("with pk and cause", func(t *testing.T) {
		cause := errors.New("version mismatch")
		err := errkind.New(errkind.ConcurrencyConflict, "Order", "Update", cause).WithPK(42)
		assert.Equal(t, "persisto: Update Order (pk=42): version mismatch", err.Error())
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := errkind.New(errkind.Internal, "Widget", "Create", cause)
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := errkind.New(errkind.Transient, "Widget", "Update", errors.New("database is locked"))
	assert.True(t, errkind.Is(err, errkind.Transient))
	assert.False(t, errkind.Is(err, errkind.Internal))

	wrapped := fmt.Errorf("wrapper: %w", err)
	assert.True(t, errkind.Is(wrapped, errkind.Transient))

	assert.False(t, errkind.Is(errors.New("plain"), errkind.Transient))
	assert.False(t, errkind.Is(nil, errkind.Transient))
}

func TestAs(t *testing.T) {
	err := errkind.New(errkind.DataIntegrity, "Order", "Create", nil)
	got, ok := errkind.As(err)
	require.True(t, ok)
	assert.Equal(t, errkind.DataIntegrity, got.Kind())

	_, ok = errkind.As(errors.New("plain"))
	assert.False(t, ok)
}

func TestOfKind(t *testing.T) {
	err := errkind.New(errkind.Cancelled, "Order", "Delete", nil)
	assert.Equal(t, errkind.Cancelled, errkind.OfKind(err))
	assert.Equal(t, errkind.Internal, errkind.OfKind(errors.New("plain")))
	assert.Equal(t, errkind.Internal, errkind.OfKind(nil))
}
