package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojosearch/dojosearch/internal/llm"
)

func TestRetryPolicySucceedsAfterFailures(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyExhaustsBudget(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}

	calls := 0
	sentinel := errors.New("still failing")
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})

	require.ErrorIs(t, err, sentinel, "last error is returned")
	assert.Equal(t, 3, calls, "initial attempt plus MaxRetries")
}

func TestRetryPolicyZeroRetries(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 0, Backoff: time.Millisecond}

	calls := 0
	_ = policy.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyFatalErrorStopsImmediately(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return fmt.Errorf("%w: quota exceeded", llm.ErrFatalAPI)
	})

	require.ErrorIs(t, err, llm.ErrFatalAPI)
	assert.Equal(t, 1, calls, "fatal errors skip remaining attempts")
}

func TestRetryPolicyRespectsCancellation(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 10, Backoff: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	attempted := make(chan struct{}, 1)
	transient := errors.New("transient")

	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func(context.Context) error {
			attempted <- struct{}{}
			return transient
		})
	}()

	// Cancel once the first attempt has failed; Do must return well before
	// the hour-long backoff elapses.
	<-attempted
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, transient, "last attempt error is preserved")
	case <-time.After(time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}
