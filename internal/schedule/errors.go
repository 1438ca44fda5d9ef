package schedule

import "fmt"

// ParseError represents a malformed schedule string. It is always raised
// before any blocking wait is scheduled.
type ParseError struct {
	Input   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid schedule %q: %s: %v", e.Input, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid schedule %q: %s", e.Input, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
