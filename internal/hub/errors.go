package hub

import "fmt"

// Error represents a failure talking to the hub. Retryable marks transient
// failures (transport errors, 5xx, rate limiting); callers decide whether
// to act on it.
type Error struct {
	URL       string
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hub error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("hub error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
