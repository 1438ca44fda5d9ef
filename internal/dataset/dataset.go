// Package dataset reads and writes newline-delimited JSON evaluation data.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Record is one opaque evaluation record. Decoding into a map means
// encoding/json emits object keys in sorted order on the way back out,
// which keeps submission files byte-stable for identical content.
type Record = map[string]any

// maxLineBytes bounds a single JSONL line; eval records are small but the
// default bufio limit of 64KiB is too tight for records with long text.
const maxLineBytes = 16 * 1024 * 1024

// LoadJSONL reads one JSON object per line from path.
func LoadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Message: "failed to open dataset", Cause: err}
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &FileError{Path: path, Message: fmt.Sprintf("invalid JSON on line %d", line), Cause: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &FileError{Path: path, Message: "failed to read dataset", Cause: err}
	}

	return records, nil
}

// WriteJSONL writes records to path as newline-delimited JSON, creating the
// parent directory if needed. Object keys are emitted in sorted order.
func WriteJSONL(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &FileError{Path: path, Message: "failed to create directory", Cause: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &FileError{Path: path, Message: "failed to create file", Cause: err}
	}

	w := bufio.NewWriter(f)
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			_ = f.Close()
			return &FileError{Path: path, Message: fmt.Sprintf("failed to encode record %d", i), Cause: err}
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			_ = f.Close()
			return &FileError{Path: path, Message: "failed to write record", Cause: err}
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return &FileError{Path: path, Message: "failed to flush file", Cause: err}
	}
	if err := f.Close(); err != nil {
		return &FileError{Path: path, Message: "failed to close file", Cause: err}
	}
	return nil
}
