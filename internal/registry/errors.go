package registry

import (
	"fmt"
	"strings"
)

// ManifestError represents a competitions manifest that could not be
// fetched, decoded, or validated.
type ManifestError struct {
	Message    string
	Violations []string
	Cause      error
}

func (e *ManifestError) Error() string {
	msg := fmt.Sprintf("registry error: %s", e.Message)
	if len(e.Violations) > 0 {
		msg += ": " + strings.Join(e.Violations, "; ")
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ManifestError) Unwrap() error {
	return e.Cause
}
