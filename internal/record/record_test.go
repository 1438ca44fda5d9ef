package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressedString_RoundTrip(t *testing.T) {
	rec := ModelRecord{
		Namespace:     "acme/eval-submissions",
		CommitRef:     "4f1c2ab9",
		CompetitionID: "c7",
	}

	s, err := rec.CompressedString()
	require.NoError(t, err)
	assert.Equal(t, "acme/eval-submissions:4f1c2ab9:c7", s)

	parsed, err := ParseCompressedString(s)
	require.NoError(t, err)
	assert.Equal(t, rec, parsed)
}

func TestCompressedString_RejectsSeparatorInFields(t *testing.T) {
	rec := ModelRecord{Namespace: "acme:evil", CommitRef: "abc", CompetitionID: "c1"}
	_, err := rec.CompressedString()
	require.Error(t, err)

	var encErr *EncodeError
	assert.ErrorAs(t, err, &encErr)
	assert.Equal(t, "namespace", encErr.Field)
}

func TestCompressedString_RejectsEmptyFields(t *testing.T) {
	_, err := ModelRecord{Namespace: "a", CommitRef: "", CompetitionID: "c"}.CompressedString()
	require.Error(t, err)
}

func TestParseCompressedString_Malformed(t *testing.T) {
	for _, input := range []string{"", "a:b", "a:b:c:d", "::"} {
		_, err := ParseCompressedString(input)
		assert.Error(t, err, "input %q", input)
	}
}
