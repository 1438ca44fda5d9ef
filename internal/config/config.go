// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/daniel/dataset-miner/internal/schedule"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Paths
	EvalDataDir   string `json:"eval_data_dir,omitempty"`
	EvalFile      string `json:"eval_file,omitempty"`
	SubmissionDir string `json:"submission_dir,omitempty"`

	// Sampling: zero keeps the full dataset.
	SubmissionSize int `json:"submission_size,omitempty" validate:"gte=0"`

	// Scheduling: "HH:MM" or "HH:MM:SS"; empty means run once, now.
	RunAt string `json:"run_at,omitempty"`

	// Hub
	HubURL       string `json:"hub_url,omitempty" validate:"omitempty,url"`
	HubRepo      string `json:"hub_repo,omitempty"`
	HubToken     string `json:"hub_token,omitempty"`
	ManifestPath string `json:"manifest_path,omitempty"`

	// Ledger / identity
	LedgerURL    string `json:"ledger_url,omitempty" validate:"omitempty,url"`
	NetUID       int    `json:"netuid,omitempty" validate:"gte=0"`
	WalletDir    string `json:"wallet_dir,omitempty"`
	WalletName   string `json:"wallet_name,omitempty"`
	WalletHotkey string `json:"wallet_hotkey,omitempty"`

	// Behavior
	DatabaseURL string `json:"database_url,omitempty"`
	Trace       bool   `json:"trace,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that present values are well formed. Required fields are
// enforced by the CLI after merging. The schedule expression is checked here
// so a bad value fails before any wait is scheduled.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.RunAt != "" {
		if _, err := schedule.ParseRunAt(c.RunAt); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.EvalDataDir == "" {
		result.EvalDataDir = defaults.EvalDataDir
	}
	if result.EvalFile == "" {
		result.EvalFile = defaults.EvalFile
	}
	if result.SubmissionDir == "" {
		result.SubmissionDir = defaults.SubmissionDir
	}
	if result.RunAt == "" {
		result.RunAt = defaults.RunAt
	}
	if result.HubURL == "" {
		result.HubURL = defaults.HubURL
	}
	if result.HubRepo == "" {
		result.HubRepo = defaults.HubRepo
	}
	if result.HubToken == "" {
		result.HubToken = defaults.HubToken
	}
	if result.ManifestPath == "" {
		result.ManifestPath = defaults.ManifestPath
	}
	if result.LedgerURL == "" {
		result.LedgerURL = defaults.LedgerURL
	}
	if result.WalletDir == "" {
		result.WalletDir = defaults.WalletDir
	}
	if result.WalletName == "" {
		result.WalletName = defaults.WalletName
	}
	if result.WalletHotkey == "" {
		result.WalletHotkey = defaults.WalletHotkey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SubmissionSize == 0 {
		result.SubmissionSize = defaults.SubmissionSize
	}
	if result.NetUID == 0 {
		result.NetUID = defaults.NetUID
	}

	// Bool fields cannot distinguish unset from false, so flags always win.

	return result
}
