// Package agent provides the high-level orchestration for one miner cycle:
// wait for the scheduled instant, refresh the evaluation dataset if this
// period has not seen one, build and publish a submission, then announce
// the resulting reference to the ledger until it sticks.
package agent

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/daniel/dataset-miner/internal/clock"
	"github.com/daniel/dataset-miner/internal/commit"
	"github.com/daniel/dataset-miner/internal/dataset"
	"github.com/daniel/dataset-miner/internal/observability"
	"github.com/daniel/dataset-miner/internal/period"
	"github.com/daniel/dataset-miner/internal/record"
	"github.com/daniel/dataset-miner/internal/registry"
	"github.com/daniel/dataset-miner/internal/schedule"
	"github.com/daniel/dataset-miner/internal/submission"
	"github.com/daniel/dataset-miner/internal/telemetry"
)

// Hub publishes artifacts and downloads dataset snapshots.
type Hub interface {
	DownloadSnapshot(ctx context.Context, namespace, revision, destDir string, force bool) error
	Publish(ctx context.Context, repo, localPath string) (string, error)
}

// Registry resolves the active competition and dataset revisions.
type Registry interface {
	Current(ctx context.Context) (registry.Competition, error)
	ResolveRevision(ctx context.Context, namespace, label string) (string, error)
}

// Ledger checks registration and accepts announcements.
type Ledger interface {
	AssertRegistered(ctx context.Context, subnetUID int) error
	Announce(ctx context.Context, subnetUID int, payload string) error
}

// Journal persists run history. Optional; a nil Journal disables it.
type Journal interface {
	CreateRun(ctx context.Context, periodKey, competitionID string) (uuid.UUID, error)
	SaveArtifact(ctx context.Context, runID uuid.UUID, stage string, content any) error
	RecordAnnounceAttempt(ctx context.Context, runID uuid.UUID, attempt int, failure string) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// Journal stage names.
const (
	stageSubmission  = "submission"
	stagePublish     = "publish"
	stageModelRecord = "model_record"
)

// revisionLabel is the mutable dataset revision the miner follows.
const revisionLabel = "main"

// Options holds configuration and collaborators for running the miner.
type Options struct {
	EvalDataDir    string
	EvalFile       string
	SubmissionDir  string
	SubmissionSize int
	RunAt          schedule.Spec
	HubRepo        string
	SubnetUID      int
	Verbose        bool

	Clock   clock.Clock
	Rng     *rand.Rand
	Backoff time.Duration // announce backoff override; zero uses the default

	Hub      Hub
	Registry Registry
	Ledger   Ledger
	Journal  Journal
	Out      io.Writer
}

func (o *Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o *Options) clock() clock.Clock {
	if o.Clock == nil {
		return clock.System{}
	}
	return o.Clock
}

func (o *Options) rng() *rand.Rand {
	if o.Rng == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o.Rng
}

// Loop runs the miner. One-shot mode runs a single cycle; scheduled mode
// waits for the daily instant, runs a cycle, and repeats forever. A cycle
// that fails before the announce step is fatal; only the announce step
// retries internally.
func Loop(ctx context.Context, opts Options) error {
	if opts.RunAt.IsZero() {
		return Run(ctx, opts)
	}

	clk := opts.clock()
	out := opts.out()
	for {
		next := opts.RunAt.NextRun(clk.Now())
		delta := next.Sub(clk.Now())
		fmt.Fprintf(out, "⏰ Scheduled run at %s. Sleeping %.0fs (%.1fh)...\n",
			next.Format(time.RFC3339), delta.Seconds(), delta.Hours())
		if err := schedule.WaitUntil(ctx, clk, next); err != nil {
			return err
		}
		if err := Run(ctx, opts); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Run finished. Next run at %s tomorrow.\n", opts.RunAt)
	}
}

// Run executes one miner cycle end to end.
func Run(ctx context.Context, opts Options) error {
	out := opts.out()
	clk := opts.clock()
	printer := observability.NewPrinter(out)
	tracer := otel.Tracer(telemetry.TracerName)

	ctx, runSpan := tracer.Start(ctx, "miner.cycle")
	defer runSpan.End()

	fmt.Fprintf(out, "Step 1/6: Checking subnet registration...\n")
	if err := opts.Ledger.AssertRegistered(ctx, opts.SubnetUID); err != nil {
		return err
	}

	competition, err := opts.Registry.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve competition: %w", err)
	}

	key := period.Key(clk.Now())
	evalFile := period.EvalFileName(key)
	evalPath := filepath.Join(opts.EvalDataDir, evalFile)

	fmt.Fprintf(out, "Step 2/6: Checking eval data for period %s...\n", key)
	if _, statErr := os.Stat(evalPath); statErr == nil {
		fmt.Fprintf(out, "✅ Eval file exists: %s\n", evalPath)
	} else {
		fmt.Fprintf(out, "❌ Eval file does not exist: %s\n", evalPath)
		fmt.Fprintf(out, "📑 Downloading the eval data first...\n")
		if err := refreshEvalData(ctx, tracer, opts, competition, evalPath); err != nil {
			// Refresh failure is logged, not fatal: the stale-or-missing
			// dataset surfaces as a load error right below if it matters.
			fmt.Fprintf(out, "⚠️ Warning: eval data refresh failed: %v\n", err)
		}
	}

	var runID uuid.UUID
	if opts.Journal != nil {
		runID, err = opts.Journal.CreateRun(ctx, key, competition.ID)
		if err != nil {
			fmt.Fprintf(out, "⚠️ Warning: failed to create journal run: %v\n", err)
			runID = uuid.Nil
		}
	}

	fmt.Fprintf(out, "Step 3/6: Building submission...\n")
	_, buildSpan := tracer.Start(ctx, "miner.build")
	records, err := dataset.LoadJSONL(evalPath)
	if err != nil {
		buildSpan.End()
		return err
	}
	if opts.Verbose {
		printer.PrintDataset(evalPath, len(records))
	}

	builder := &submission.Builder{
		Dir:     opts.SubmissionDir,
		MaxSize: opts.SubmissionSize,
		Rng:     opts.rng(),
	}
	artifact, err := builder.Build(records, key)
	buildSpan.End()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "📂 Submission saved to %s\n", artifact.FilePath)
	if opts.Verbose {
		printer.PrintArtifact(artifact)
	}
	if opts.Journal != nil && runID != uuid.Nil {
		_ = opts.Journal.SaveArtifact(ctx, runID, stageSubmission, map[string]any{
			"file_path": artifact.FilePath,
			"records":   len(artifact.Items),
		})
	}

	fmt.Fprintf(out, "Step 4/6: Publishing submission to %s...\n", opts.HubRepo)
	_, publishSpan := tracer.Start(ctx, "miner.publish")
	commitRef, err := opts.Hub.Publish(ctx, opts.HubRepo, artifact.FilePath)
	publishSpan.End()
	if err != nil {
		completeRun(ctx, opts, runID, "failed")
		return fmt.Errorf("failed to publish submission: %w", err)
	}
	fmt.Fprintf(out, "✅ Uploaded submission as %s\n", commitRef)
	if opts.Journal != nil && runID != uuid.Nil {
		_ = opts.Journal.SaveArtifact(ctx, runID, stagePublish, map[string]any{"commit_ref": commitRef})
	}

	fmt.Fprintf(out, "Step 5/6: Building model record...\n")
	rec := record.ModelRecord{
		Namespace:     opts.HubRepo,
		CommitRef:     commitRef,
		CompetitionID: competition.ID,
	}
	payload, err := rec.CompressedString()
	if err != nil {
		completeRun(ctx, opts, runID, "failed")
		return err
	}
	if opts.Verbose {
		printer.PrintModelRecord(rec)
	}
	if opts.Journal != nil && runID != uuid.Nil {
		_ = opts.Journal.SaveArtifact(ctx, runID, stageModelRecord, rec)
	}

	fmt.Fprintf(out, "Step 6/6: Announcing %s to the ledger...\n", rec)
	announceCtx, announceSpan := tracer.Start(ctx, "miner.announce")
	retrier := &commit.Retrier{
		Clock:   clk,
		Backoff: opts.Backoff,
		Logf: func(format string, args ...any) {
			fmt.Fprintf(out, format+"\n", args...)
		},
		OnFailure: func(attempt int, err error) {
			if opts.Journal != nil && runID != uuid.Nil {
				_ = opts.Journal.RecordAnnounceAttempt(ctx, runID, attempt, err.Error())
			}
		},
	}
	attempts, err := retrier.Run(announceCtx, payload, func(ctx context.Context, payload string) error {
		return opts.Ledger.Announce(ctx, opts.SubnetUID, payload)
	})
	announceSpan.End()
	if err != nil {
		completeRun(ctx, opts, runID, "failed")
		return err
	}

	fmt.Fprintf(out, "✅ Committed submission to the ledger after %d attempt(s).\n", attempts)
	completeRun(ctx, opts, runID, "completed")
	return nil
}

// refreshEvalData downloads a fresh snapshot for the competition dataset and
// moves its data file to the period-stamped eval path.
func refreshEvalData(ctx context.Context, tracer trace.Tracer, opts Options, competition registry.Competition, evalPath string) error {
	_, span := tracer.Start(ctx, "miner.refresh")
	defer span.End()

	revision, err := opts.Registry.ResolveRevision(ctx, competition.DatasetNamespace, revisionLabel)
	if err != nil {
		return fmt.Errorf("failed to resolve dataset revision: %w", err)
	}

	if err := opts.Hub.DownloadSnapshot(ctx, competition.DatasetNamespace, revision, opts.EvalDataDir, true); err != nil {
		return err
	}

	downloaded := filepath.Join(opts.EvalDataDir, opts.EvalFile)
	if err := os.Rename(downloaded, evalPath); err != nil {
		return fmt.Errorf("failed to stamp eval file for period: %w", err)
	}
	return nil
}

// completeRun records the run's terminal status, best effort.
func completeRun(ctx context.Context, opts Options, runID uuid.UUID, status string) {
	if opts.Journal != nil && runID != uuid.Nil {
		_ = opts.Journal.CompleteRun(ctx, runID, status)
	}
}
