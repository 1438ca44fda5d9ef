package dataset

import "fmt"

// FileError represents a local dataset read or write failure. These are
// fatal to the current cycle; nothing retries them.
type FileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *FileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dataset error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("dataset error for %s: %s", e.Path, e.Message)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}
