// Package clock provides an injectable wall-clock capability so that
// components which sleep or schedule work can be tested on virtual time.
package clock

import (
	"context"
	"time"
)

// Clock is the time capability handed to anything that reads the wall clock
// or suspends execution. Sleep returns early with the context's error when
// the context is cancelled, so process-level termination interrupts even
// multi-hour schedule waits.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the real wall clock.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is cancelled, whichever comes first.
func (System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
