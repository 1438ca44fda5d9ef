package commit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/dataset-miner/internal/clock"
)

type classifiedError struct {
	msg       string
	retryable bool
}

func (e *classifiedError) Error() string   { return e.msg }
func (e *classifiedError) Retryable() bool { return e.retryable }

func newFake() *clock.Fake {
	return clock.NewFake(time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC))
}

// failNTimes returns an announcer that fails n times then succeeds.
func failNTimes(n int, err error, calls *int) AnnounceFunc {
	return func(context.Context, string) error {
		*calls++
		if *calls <= n {
			return err
		}
		return nil
	}
}

func TestRun_SucceedsFirstAttempt(t *testing.T) {
	clk := newFake()
	r := &Retrier{Clock: clk}

	calls := 0
	attempts, err := r.Run(context.Background(), "payload", failNTimes(0, nil, &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clk.Slept())
}

func TestRun_NFailuresThenSuccess(t *testing.T) {
	clk := newFake()
	r := &Retrier{Clock: clk}

	const n = 17
	calls := 0
	transient := &classifiedError{msg: "too soon", retryable: true}
	attempts, err := r.Run(context.Background(), "payload", failNTimes(n, transient, &calls))
	require.NoError(t, err)

	assert.Equal(t, n+1, attempts)
	assert.Equal(t, n+1, calls)

	slept := clk.Slept()
	require.Len(t, slept, n)
	for _, d := range slept {
		assert.Equal(t, DefaultBackoff, d)
	}
}

func TestRun_FixedBackoffOverride(t *testing.T) {
	clk := newFake()
	r := &Retrier{Clock: clk, Backoff: 3 * time.Second}

	calls := 0
	_, err := r.Run(context.Background(), "payload",
		failNTimes(2, &classifiedError{msg: "busy", retryable: true}, &calls))
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, clk.Slept())
}

func TestRun_UnclassifiedErrorsRetry(t *testing.T) {
	clk := newFake()
	r := &Retrier{Clock: clk}

	calls := 0
	attempts, err := r.Run(context.Background(), "payload", failNTimes(4, errors.New("opaque failure"), &calls))
	require.NoError(t, err)
	assert.Equal(t, 5, attempts)
}

func TestRun_FatalErrorStops(t *testing.T) {
	clk := newFake()
	r := &Retrier{Clock: clk}

	fatal := &classifiedError{msg: "malformed payload", retryable: false}
	attempts, err := r.Run(context.Background(), "payload", func(context.Context, string) error {
		return fatal
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, clk.Slept())
}

func TestRun_SamePayloadEveryAttempt(t *testing.T) {
	clk := newFake()
	r := &Retrier{Clock: clk}

	var payloads []string
	calls := 0
	_, err := r.Run(context.Background(), "ns:commit:comp", func(_ context.Context, p string) error {
		payloads = append(payloads, p)
		calls++
		if calls < 3 {
			return &classifiedError{msg: "too soon", retryable: true}
		}
		return nil
	})
	require.NoError(t, err)
	for _, p := range payloads {
		assert.Equal(t, "ns:commit:comp", p)
	}
}

func TestRun_CancellationDuringBackoff(t *testing.T) {
	clk := newFake()
	clk.SleepErr = context.Canceled
	r := &Retrier{Clock: clk}

	attempts, err := r.Run(context.Background(), "payload", func(context.Context, string) error {
		return &classifiedError{msg: "too soon", retryable: true}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRun_CancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Retrier{Clock: newFake()}
	attempts, err := r.Run(ctx, "payload", func(context.Context, string) error {
		t.Fatal("announce should not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestRun_OnFailureObservesAttempts(t *testing.T) {
	clk := newFake()
	var observed []int
	r := &Retrier{
		Clock: clk,
		OnFailure: func(attempt int, err error) {
			observed = append(observed, attempt)
			assert.Error(t, err)
		},
	}

	calls := 0
	_, err := r.Run(context.Background(), "payload",
		failNTimes(3, &classifiedError{msg: "too soon", retryable: true}, &calls))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, observed)
}
