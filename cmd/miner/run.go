package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daniel/dataset-miner/internal/agent"
	"github.com/daniel/dataset-miner/internal/config"
	"github.com/daniel/dataset-miner/internal/hub"
	"github.com/daniel/dataset-miner/internal/journal"
	"github.com/daniel/dataset-miner/internal/ledger"
	"github.com/daniel/dataset-miner/internal/registry"
	"github.com/daniel/dataset-miner/internal/schedule"
	"github.com/daniel/dataset-miner/internal/telemetry"
	"github.com/daniel/dataset-miner/internal/wallet"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the miner: build, publish, and announce a submission",
	Long: `Runs the submission cycle: period gate -> dataset refresh -> build -> publish -> announce.

With --run-at the miner sleeps until the given daily time and repeats forever; without it a single cycle runs immediately. Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runMinerCmd,
}

var (
	runConfigPath     string
	runEvalDataDir    string
	runEvalFile       string
	runSubmissionDir  string
	runSubmissionSize int
	runRunAt          string
	runHubURL         string
	runHubRepo        string
	runHubToken       string
	runManifestPath   string
	runLedgerURL      string
	runNetUID         int
	runWalletDir      string
	runWalletName     string
	runWalletHotkey   string
	runDatabaseURL    string
	runTrace          bool
	runVerbose        bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVar(&runEvalDataDir, "eval-data-dir", "", "Directory holding period-stamped eval data files")
	runCommand.Flags().StringVar(&runEvalFile, "eval-file", "", "Data file name inside a downloaded snapshot")
	runCommand.Flags().StringVar(&runSubmissionDir, "submission-dir", "", "Directory for built submission files")
	runCommand.Flags().IntVar(&runSubmissionSize, "submission-size", 0, "Maximum records per submission (0 keeps the full dataset)")
	runCommand.Flags().StringVar(&runRunAt, "run-at", "", "Daily run time as HH:MM or HH:MM:SS (omit to run once, now)")
	runCommand.Flags().StringVar(&runHubURL, "hub-url", "", "Base URL of the content hub")
	runCommand.Flags().StringVarP(&runHubRepo, "hub-repo", "r", "", "Hub repo to publish submissions to, e.g. acme/submissions")
	runCommand.Flags().StringVar(&runManifestPath, "manifest-path", "", "Hub path of the competitions manifest (optional)")
	runCommand.Flags().StringVar(&runLedgerURL, "ledger-url", "", "Base URL of the ledger gateway")
	runCommand.Flags().IntVar(&runNetUID, "netuid", 0, "Subnet UID to announce on")
	runCommand.Flags().StringVar(&runWalletDir, "wallet-dir", "", "Root directory of wallet keyfiles")
	runCommand.Flags().StringVar(&runWalletName, "wallet-name", "", "Wallet name")
	runCommand.Flags().StringVar(&runWalletHotkey, "wallet-hotkey", "", "Hotkey name within the wallet")
	runCommand.Flags().BoolVar(&runTrace, "trace", false, "Emit per-stage trace spans to stdout")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Hub token can be passed as a flag, or read from env var HUB_TOKEN
	runCommand.Flags().StringVar(&runHubToken, "hub-token", "", "Hub access token (optional, defaults to HUB_TOKEN env var)")

	// Database URL for run history persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runMinerCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("eval-data-dir") {
		cfg.EvalDataDir = runEvalDataDir
	}
	if cmd.Flags().Changed("eval-file") {
		cfg.EvalFile = runEvalFile
	}
	if cmd.Flags().Changed("submission-dir") {
		cfg.SubmissionDir = runSubmissionDir
	}
	if cmd.Flags().Changed("submission-size") {
		cfg.SubmissionSize = runSubmissionSize
	}
	if cmd.Flags().Changed("run-at") {
		cfg.RunAt = runRunAt
	}
	if cmd.Flags().Changed("hub-url") {
		cfg.HubURL = runHubURL
	}
	if cmd.Flags().Changed("hub-repo") {
		cfg.HubRepo = runHubRepo
	}
	if cmd.Flags().Changed("hub-token") {
		cfg.HubToken = runHubToken
	}
	if cmd.Flags().Changed("manifest-path") {
		cfg.ManifestPath = runManifestPath
	}
	if cmd.Flags().Changed("ledger-url") {
		cfg.LedgerURL = runLedgerURL
	}
	if cmd.Flags().Changed("netuid") {
		cfg.NetUID = runNetUID
	}
	if cmd.Flags().Changed("wallet-dir") {
		cfg.WalletDir = runWalletDir
	}
	if cmd.Flags().Changed("wallet-name") {
		cfg.WalletName = runWalletName
	}
	if cmd.Flags().Changed("wallet-hotkey") {
		cfg.WalletHotkey = runWalletHotkey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("trace") {
		cfg.Trace = runTrace
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Config{
		EvalDataDir:   "data/eval_data",
		EvalFile:      "data.jsonl",
		SubmissionDir: "data/submissions",
		WalletDir:     defaultWalletDir(),
		WalletName:    "default",
		WalletHotkey:  "default",
	}
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate merged config and required fields
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.HubRepo == "" {
		return fmt.Errorf("--hub-repo is required (via flag or config)")
	}
	if cfg.HubURL == "" {
		return fmt.Errorf("--hub-url is required (via flag or config)")
	}
	if cfg.LedgerURL == "" {
		return fmt.Errorf("--ledger-url is required (via flag or config)")
	}
	if cfg.NetUID == 0 {
		return fmt.Errorf("--netuid is required (via flag or config)")
	}

	var runAt schedule.Spec
	if cfg.RunAt != "" {
		spec, err := schedule.ParseRunAt(cfg.RunAt)
		if err != nil {
			return err
		}
		runAt = spec
	}

	// Step 5: Hub token handling
	if cfg.HubToken == "" {
		cfg.HubToken = os.Getenv("HUB_TOKEN")
	}

	// Step 6: Database URL handling (optional; run history is best effort)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if cfg.Trace {
		shutdown := telemetry.InitTracer(ctx, telemetry.TracerName)
		defer func() { _ = shutdown(context.Background()) }()
	}

	w, err := wallet.Load(cfg.WalletDir, cfg.WalletName, cfg.WalletHotkey)
	if err != nil {
		return err
	}

	hubClient := hub.New(cfg.HubURL, cfg.HubToken, nil)
	opts := agent.Options{
		EvalDataDir:    cfg.EvalDataDir,
		EvalFile:       cfg.EvalFile,
		SubmissionDir:  cfg.SubmissionDir,
		SubmissionSize: cfg.SubmissionSize,
		RunAt:          runAt,
		HubRepo:        cfg.HubRepo,
		SubnetUID:      cfg.NetUID,
		Verbose:        cfg.Verbose,
		Hub:            hubClient,
		Registry:       registry.New(hubClient, hubClient, cfg.ManifestPath),
		Ledger:         ledger.New(cfg.LedgerURL, w, nil),
	}

	if cfg.DatabaseURL != "" {
		jnl, err := journal.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️ Warning: run history disabled: %v\n", err)
		} else {
			defer jnl.Close()
			opts.Journal = jnl
		}
	}

	return agent.Loop(ctx, opts)
}

// defaultWalletDir mirrors the conventional ~/.wallets layout; falls back to
// a relative path when the home directory cannot be determined.
func defaultWalletDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wallets"
	}
	return home + "/.wallets"
}
