package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persisto/errkind"
	"github.com/syssam/persisto/retry"
)

func transientErr() error {
	return errkind.New(errkind.Transient, "User", "Get", errors.New("connection reset"))
}

func TestDoSucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Policy{MaxElapsedTime: time.Second}, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	p := retry.Policy{
		MaxElapsedTime:  200 * time.Millisecond,
		InitialInterval: time.Millisecond,
	}
	err := retry.Do(context.Background(), p, func() error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoDoesNotRetryNonTransientErrors(t *testing.T) {
	calls := 0
	permanent := errkind.New(errkind.InvalidArgument, "User", "Create", errors.New("bad input"))
	err := retry.Do(context.Background(), retry.Policy{MaxElapsedTime: time.Second}, func() error {
		calls++
		return permanent
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, errkind.InvalidArgument, errkind.OfKind(err))
}

func TestDoExhaustsBudget(t *testing.T) {
	calls := 0
	p := retry.Policy{
		MaxElapsedTime:  20 * time.Millisecond,
		InitialInterval: 5 * time.Millisecond,
	}
	err := retry.Do(context.Background(), p, func() error {
		calls++
		return transientErr()
	})
	require.Error(t, err)
	assert.Greater(t, calls, 1)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := retry.Policy{MaxElapsedTime: time.Minute, InitialInterval: time.Millisecond}
	err := retry.Do(ctx, p, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return transientErr()
	})
	require.Error(t, err)
}

func TestDisabledPolicyNeverRetries(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Disabled(), func() error {
		calls++
		return transientErr()
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOnRetryCallback(t *testing.T) {
	var attempts []int
	p := retry.Policy{
		MaxElapsedTime:  100 * time.Millisecond,
		InitialInterval: time.Millisecond,
		OnRetry: func(attempt int, _ error) {
			attempts = append(attempts, attempt)
		},
	}
	calls := 0
	err := retry.Do(context.Background(), p, func() error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
}
