package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Backoff(context.Background(), time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &StatusError{Code: 503, Body: "unavailable"}
		}
		return nil
	}, RetryableHTTP)
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestBackoffGivesUpAfterThreeAttempts(t *testing.T) {
	calls := 0
	err := Backoff(context.Background(), time.Millisecond, func() error {
		calls++
		return &StatusError{Code: 500, Body: "boom"}
	}, RetryableHTTP)
	require.Error(t, err)
	require.Equal(t, 3, calls)
}

func TestBackoffDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	err := Backoff(context.Background(), time.Millisecond, func() error {
		calls++
		return &StatusError{Code: 404, Body: "not found"}
	}, RetryableHTTP)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestBackoffRetriesTooManyRequests(t *testing.T) {
	calls := 0
	_ = Backoff(context.Background(), time.Millisecond, func() error {
		calls++
		return &StatusError{Code: 429, Body: "slow down"}
	}, RetryableHTTP)
	require.Equal(t, 3, calls)
}

func TestBackoffStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Backoff(ctx, time.Second, func() error {
		calls++
		return errors.New("transient")
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestRetryableHTTPTransportErrors(t *testing.T) {
	require.True(t, RetryableHTTP(errors.New("connection reset by peer")))
	require.False(t, RetryableHTTP(&StatusError{Code: 401, Body: "unauthorized"}))
}
