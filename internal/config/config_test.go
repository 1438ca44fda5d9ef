package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Success(t *testing.T) {
	path := writeConfig(t, `{
		"eval_data_dir": "custom/eval",
		"submission_size": 500,
		"run_at": "14:30",
		"netuid": 42
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom/eval", cfg.EvalDataDir)
	assert.Equal(t, 500, cfg.SubmissionSize)
	assert.Equal(t, "14:30", cfg.RunAt)
	assert.Equal(t, 42, cfg.NetUID)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "{not json")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_EmptyIsValid(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_NegativeSubmissionSize(t *testing.T) {
	cfg := &Config{SubmissionSize: -1}
	assert.Error(t, cfg.Validate())
}

func TestValidate_MalformedRunAt(t *testing.T) {
	cfg := &Config{RunAt: "25:99"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "25:99")
}

func TestValidate_URLs(t *testing.T) {
	cfg := &Config{HubURL: "not a url"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{LedgerURL: "https://ledger.example.com"}
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{SubmissionDir: "mine/subs", NetUID: 7}
	defaults := Config{
		EvalDataDir:   "data/eval_data",
		EvalFile:      "data.jsonl",
		SubmissionDir: "data/submissions",
		WalletName:    "default",
		NetUID:        1,
	}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, "data/eval_data", merged.EvalDataDir)
	assert.Equal(t, "mine/subs", merged.SubmissionDir)
	assert.Equal(t, "default", merged.WalletName)
	assert.Equal(t, 7, merged.NetUID)
}
