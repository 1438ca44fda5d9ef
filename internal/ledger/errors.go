package ledger

import "fmt"

// AnnounceError represents a failed commitment write. Transient errors may
// be retried; the ledger exposes a single error channel, so classification
// happens here at the boundary.
type AnnounceError struct {
	Message   string
	Cause     error
	Transient bool
}

func (e *AnnounceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("announce failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("announce failed: %s", e.Message)
}

func (e *AnnounceError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the announce may be re-attempted.
func (e *AnnounceError) Retryable() bool {
	return e.Transient
}

// RegistrationError represents a wallet that could not be confirmed as
// registered on the subnet. Always fatal, raised before any work begins.
type RegistrationError struct {
	Address string
	Message string
	Cause   error
}

func (e *RegistrationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("registration check for %s: %s: %v", e.Address, e.Message, e.Cause)
	}
	return fmt.Sprintf("registration check for %s: %s", e.Address, e.Message)
}

func (e *RegistrationError) Unwrap() error {
	return e.Cause
}
