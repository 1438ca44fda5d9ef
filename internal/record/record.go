// Package record defines the model record announced to the ledger and its
// compact wire serialization.
package record

import (
	"fmt"
	"strings"
)

// separator joins the three fields of the compressed form. Field values must
// not contain it, or the serialization would not be reversible.
const separator = ":"

// ModelRecord combines the artifact store namespace, the commit reference
// returned by publishing, and the competition identifier. This tuple is the
// entire ledger payload.
type ModelRecord struct {
	Namespace     string
	CommitRef     string
	CompetitionID string
}

// CompressedString serializes the record as namespace:commit:competition.
func (r ModelRecord) CompressedString() (string, error) {
	for _, field := range []struct{ name, value string }{
		{"namespace", r.Namespace},
		{"commit ref", r.CommitRef},
		{"competition id", r.CompetitionID},
	} {
		if field.value == "" {
			return "", &EncodeError{Field: field.name, Message: "must not be empty"}
		}
		if strings.Contains(field.value, separator) {
			return "", &EncodeError{Field: field.name, Message: fmt.Sprintf("must not contain %q", separator)}
		}
	}
	return strings.Join([]string{r.Namespace, r.CommitRef, r.CompetitionID}, separator), nil
}

// ParseCompressedString is the inverse of CompressedString.
func ParseCompressedString(s string) (ModelRecord, error) {
	parts := strings.Split(s, separator)
	if len(parts) != 3 {
		return ModelRecord{}, &EncodeError{Message: fmt.Sprintf("expected 3 fields, got %d", len(parts))}
	}
	rec := ModelRecord{Namespace: parts[0], CommitRef: parts[1], CompetitionID: parts[2]}
	if rec.Namespace == "" || rec.CommitRef == "" || rec.CompetitionID == "" {
		return ModelRecord{}, &EncodeError{Message: "empty field in compressed record"}
	}
	return rec, nil
}

// String renders the record for log lines.
func (r ModelRecord) String() string {
	return fmt.Sprintf("ModelRecord{namespace=%s, commit=%s, competition=%s}", r.Namespace, r.CommitRef, r.CompetitionID)
}
