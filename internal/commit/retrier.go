// Package commit drives a model record announcement to completion against
// the rate-limited ledger. The only success path is PENDING -> COMMITTED;
// there is no failed terminal state for retryable errors, so the loop runs
// until the ledger accepts the write or the process is terminated.
package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daniel/dataset-miner/internal/clock"
)

// DefaultBackoff is the fixed sleep between announce attempts. It is
// deliberately generous against the ledger's ~20 minute acceptance window:
// frequent enough to land soon after the window opens, sparse enough not to
// hammer the gateway.
const DefaultBackoff = 120 * time.Second

// AnnounceFunc performs one announce attempt with the serialized record.
type AnnounceFunc func(ctx context.Context, payload string) error

// retryable is the boundary classification produced by the ledger adapter.
type retryable interface {
	Retryable() bool
}

// Retrier re-attempts an announcement forever on retryable failures with a
// fixed backoff. A retry re-sends the same payload, which assumes duplicate
// announcements are harmless on the ledger side; that only matters when a
// prior attempt succeeded but its success signal was lost, a case this loop
// does not try to reconcile.
type Retrier struct {
	// Clock is the sleep capability; nil uses the system clock.
	Clock clock.Clock
	// Backoff overrides DefaultBackoff when positive.
	Backoff time.Duration
	// Logf reports attempt failures; nil discards them.
	Logf func(format string, args ...any)
	// OnFailure, when set, observes each failed attempt before the backoff
	// sleep. Used to journal attempt history.
	OnFailure func(attempt int, err error)
}

// Run announces payload until it succeeds, returning the number of attempts
// made. Non-retryable errors and context cancellation end the loop early
// with the error.
func (r *Retrier) Run(ctx context.Context, payload string, announce AnnounceFunc) (int, error) {
	clk := r.Clock
	if clk == nil {
		clk = clock.System{}
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		attempts++
		err := announce(ctx, payload)
		if err == nil {
			return attempts, nil
		}
		if !isRetryable(err) {
			return attempts, fmt.Errorf("announce rejected permanently after %d attempts: %w", attempts, err)
		}

		r.logf("Failed to announce record: %v", err)
		r.logf("Retrying in %.0f seconds...", backoff.Seconds())
		if r.OnFailure != nil {
			r.OnFailure(attempts, err)
		}
		if err := clk.Sleep(ctx, backoff); err != nil {
			return attempts, err
		}
	}
}

func (r *Retrier) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// isRetryable asks the error for its classification. Errors that do not
// classify themselves default to retryable, matching the ledger's single
// undifferentiated error channel.
func isRetryable(err error) bool {
	var rc retryable
	if errors.As(err, &rc) {
		return rc.Retryable()
	}
	return true
}
