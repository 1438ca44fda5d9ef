package submission

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniel/dataset-miner/internal/dataset"
)

func makeRecords(n int) []dataset.Record {
	records := make([]dataset.Record, n)
	for i := range records {
		records[i] = dataset.Record{"id": fmt.Sprintf("rec-%04d", i)}
	}
	return records
}

func ids(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r["id"].(string)
	}
	return out
}

func TestSample_CapReturnsExactlyK(t *testing.T) {
	b := &Builder{MaxSize: 500, Rng: rand.New(rand.NewSource(1))}
	source := makeRecords(10000)

	sampled := b.Sample(source)
	require.Len(t, sampled, 500)

	// Every sampled record comes from the source, with no introduced
	// duplicates.
	sourceIDs := make(map[string]bool, len(source))
	for _, id := range ids(source) {
		sourceIDs[id] = true
	}
	seen := make(map[string]bool, len(sampled))
	for _, id := range ids(sampled) {
		assert.True(t, sourceIDs[id])
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSample_UncappedIsPermutation(t *testing.T) {
	b := &Builder{Rng: rand.New(rand.NewSource(2))}
	source := makeRecords(200)

	sampled := b.Sample(source)
	require.Len(t, sampled, len(source))
	assert.ElementsMatch(t, ids(source), ids(sampled))
}

func TestSample_CapLargerThanDataset(t *testing.T) {
	b := &Builder{MaxSize: 50, Rng: rand.New(rand.NewSource(3))}
	sampled := b.Sample(makeRecords(10))
	assert.Len(t, sampled, 10)
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	b := &Builder{Rng: rand.New(rand.NewSource(4))}
	source := makeRecords(100)
	original := ids(source)

	b.Sample(source)
	assert.Equal(t, original, ids(source))
}

func TestBuild_WritesPeriodStampedFile(t *testing.T) {
	dir := t.TempDir()
	b := &Builder{Dir: dir, MaxSize: 5, Rng: rand.New(rand.NewSource(5))}

	artifact, err := b.Build(makeRecords(20), "2025061014")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "submission_2025061014_5.jsonl"), artifact.FilePath)
	assert.Len(t, artifact.Items, 5)

	loaded, err := dataset.LoadJSONL(artifact.FilePath)
	require.NoError(t, err)
	assert.Equal(t, artifact.Items, loaded)
}

func TestBuild_UncappedFileName(t *testing.T) {
	dir := t.TempDir()
	b := &Builder{Dir: dir, Rng: rand.New(rand.NewSource(6))}

	artifact, err := b.Build(makeRecords(3), "2025061014")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "submission_2025061014.jsonl"), artifact.FilePath)
}
