package transient_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/persisto/transient"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite busy", errors.New("SQLITE_BUSY: database is locked"), true},
		{"sqlite locked", errors.New("database table is locked"), true},
		{"bad connection", errors.New("driver: bad connection"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"too many connections", errors.New("Error 1040: Too many connections"), true},
		{"unique constraint", errors.New("UNIQUE constraint failed: users.email"), false},
		{"not found", errors.New("entity not found"), false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transient.Is(tt.err))
		})
	}
}

func TestIsTransientUnwrapsWrappedErrors(t *testing.T) {
	base := errors.New("database is locked")
	wrapped := fmt.Errorf("exec insert: %w", base)
	assert.True(t, transient.Is(wrapped))
}

func TestIsTransientUnwrapsJoinedErrors(t *testing.T) {
	joined := errors.Join(errors.New("some other failure"), errors.New("connection reset"))
	assert.True(t, transient.Is(joined))
}

func TestIsTransientCancelledWrappedIsStillNotTransient(t *testing.T) {
	wrapped := fmt.Errorf("query: %w", context.Canceled)
	assert.False(t, transient.Is(wrapped))
}
