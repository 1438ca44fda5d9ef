// Package schedule computes daily run instants from a wall-clock time of day
// and suspends execution until they arrive.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/daniel/dataset-miner/internal/clock"
)

// Spec is a daily time-of-day target. The zero Spec means "run once, now".
type Spec struct {
	Hour   int
	Minute int
	Second int

	set bool
}

// IsZero reports whether no schedule was configured.
func (s Spec) IsZero() bool { return !s.set }

// String renders the spec back in HH:MM:SS form.
func (s Spec) String() string {
	if !s.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", s.Hour, s.Minute, s.Second)
}

// ParseRunAt parses a "HH:MM" or "HH:MM:SS" schedule string. Anything else
// is a ParseError; validation happens here, before any wait is scheduled.
func ParseRunAt(raw string) (Spec, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Spec{}, &ParseError{Input: raw, Message: "must be HH:MM or HH:MM:SS"}
	}

	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Spec{}, &ParseError{Input: raw, Message: fmt.Sprintf("segment %q is not an integer", p), Cause: err}
		}
		fields[i] = n
	}

	spec := Spec{Hour: fields[0], Minute: fields[1], set: true}
	if len(fields) == 3 {
		spec.Second = fields[2]
	}

	if spec.Hour < 0 || spec.Hour > 23 {
		return Spec{}, &ParseError{Input: raw, Message: fmt.Sprintf("hour %d out of range [0,23]", spec.Hour)}
	}
	if spec.Minute < 0 || spec.Minute > 59 {
		return Spec{}, &ParseError{Input: raw, Message: fmt.Sprintf("minute %d out of range [0,59]", spec.Minute)}
	}
	if spec.Second < 0 || spec.Second > 59 {
		return Spec{}, &ParseError{Input: raw, Message: fmt.Sprintf("second %d out of range [0,59]", spec.Second)}
	}

	return spec, nil
}

// NextRun returns the next instant strictly after now that matches the spec.
// A same-day target that is already past, or equal to now, rolls over to
// tomorrow so the gate never fires twice at the exact boundary.
func (s Spec) NextRun(now time.Time) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, s.Second, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// WaitUntil suspends via the clock until at is reached or ctx is cancelled.
// An instant that is not in the future returns immediately.
func WaitUntil(ctx context.Context, clk clock.Clock, at time.Time) error {
	delta := at.Sub(clk.Now())
	if delta <= 0 {
		return ctx.Err()
	}
	return clk.Sleep(ctx, delta)
}
