// Package submission builds size-bounded, randomly sampled submission
// artifacts from an evaluation dataset.
package submission

import (
	"math/rand"
	"path/filepath"

	"github.com/daniel/dataset-miner/internal/dataset"
	"github.com/daniel/dataset-miner/internal/period"
)

// Artifact is a persisted submission: the sampled records and the file they
// were written to. Immutable after Build returns.
type Artifact struct {
	Items    []dataset.Record
	FilePath string
}

// Builder samples submissions into Dir. MaxSize caps the record count when
// positive; zero means no cap. Rng is the injected random source; shuffles
// are uniform and deliberately unseeded in production, so reproducibility
// across runs is not guaranteed.
type Builder struct {
	Dir     string
	MaxSize int
	Rng     *rand.Rand
}

// Sample returns a shuffled copy of records, truncated to the builder's cap.
// The input slice is never mutated.
func (b *Builder) Sample(records []dataset.Record) []dataset.Record {
	sampled := make([]dataset.Record, len(records))
	copy(sampled, records)
	b.Rng.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})
	if b.MaxSize > 0 && len(sampled) > b.MaxSize {
		sampled = sampled[:b.MaxSize]
	}
	return sampled
}

// Build samples records and writes them to the period-stamped submission
// file. Any I/O failure propagates immediately; building is cheap and local,
// so there is no retry here.
func (b *Builder) Build(records []dataset.Record, periodKey string) (*Artifact, error) {
	items := b.Sample(records)
	path := filepath.Join(b.Dir, period.SubmissionFileName(periodKey, b.MaxSize))
	if err := dataset.WriteJSONL(path, items); err != nil {
		return nil, err
	}
	return &Artifact{Items: items, FilePath: path}, nil
}
