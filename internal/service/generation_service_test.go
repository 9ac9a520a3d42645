package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/culturallm/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetries(t *testing.T) {
	t.Helper()
	prev := retryInitialInterval
	retryInitialInterval = time.Millisecond
	t.Cleanup(func() { retryInitialInterval = prev })
}

func TestCallWithRetryRecovers(t *testing.T) {
	fastRetries(t)
	calls := 0
	text, err := callWithRetry(context.Background(), 2, time.Second, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 3, calls)
}

func TestCallWithRetryExhausted(t *testing.T) {
	fastRetries(t)
	calls := 0
	_, err := callWithRetry(context.Background(), 1, time.Second, func(context.Context) (string, error) {
		calls++
		return "", errors.New("connection refused")
	})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, 2, calls)
}

func TestCallWithRetryTimesOutEachAttempt(t *testing.T) {
	fastRetries(t)
	_, err := callWithRetry(context.Background(), 0, 10*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestCallWithRetryStopsOnPermanentError(t *testing.T) {
	fastRetries(t)
	calls := 0
	_, err := callWithRetry(context.Background(), 3, time.Second, func(context.Context) (string, error) {
		calls++
		return "", backoff.Permanent(&MalformedResponseError{Reason: "no candidates returned"})
	})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
	assert.Equal(t, 1, calls)
}

func TestGeminiGeneratorWithoutKeyIsUnavailable(t *testing.T) {
	gen, err := NewGeminiGenerator(&config.Config{}, nil)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "ciao", GenerationParams{})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestGenerationBudgetCoversEveryAttempt(t *testing.T) {
	// 3 attempts of 10s plus waits of at most 0.75s and 1.125s.
	assert.Equal(t, 30*time.Second+1875*time.Millisecond, GenerationBudget(10*time.Second, 2))
	assert.Equal(t, 10*time.Second, GenerationBudget(10*time.Second, 0))
	assert.Zero(t, GenerationBudget(0, 3))
}

func TestGenerationBudgetCapsTheWait(t *testing.T) {
	budget := GenerationBudget(time.Second, 20)
	assert.LessOrEqual(t, budget, 21*time.Second+20*time.Duration(float64(retryMaxInterval)*(1+retryJitter)))
	assert.Greater(t, budget, 21*time.Second)
}
