package wallet

import "fmt"

// KeyError represents a hotkey that could not be loaded or used.
type KeyError struct {
	Path    string
	Message string
	Cause   error
}

func (e *KeyError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("wallet error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("wallet error: %s", msg)
}

func (e *KeyError) Unwrap() error {
	return e.Cause
}
