package record

import "fmt"

// EncodeError represents a record that cannot be represented in, or parsed
// from, the compressed wire form.
type EncodeError struct {
	Field   string
	Message string
}

func (e *EncodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("model record %s %s", e.Field, e.Message)
	}
	return fmt.Sprintf("model record: %s", e.Message)
}
