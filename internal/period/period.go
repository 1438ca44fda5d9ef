// Package period derives hour-granularity period keys used to deduplicate
// daily work and to name the files a run produces.
package period

import (
	"fmt"
	"time"
)

// keyLayout truncates the wall clock to the hour: YYYYMMDDHH.
const keyLayout = "2006010215"

// Key returns the period key for the given instant. Two calls within the
// same calendar hour yield identical keys.
func Key(now time.Time) string {
	return now.Format(keyLayout)
}

// EvalFileName returns the period-stamped evaluation data filename.
func EvalFileName(key string) string {
	return fmt.Sprintf("eval_data_%s.jsonl", key)
}

// SubmissionFileName returns the submission filename for a period. When a
// size cap is set it is embedded so that runs in the same hour with
// different caps do not collide.
func SubmissionFileName(key string, size int) string {
	if size > 0 {
		return fmt.Sprintf("submission_%s_%d.jsonl", key, size)
	}
	return fmt.Sprintf("submission_%s.jsonl", key)
}
