// Package journal provides optional PostgreSQL persistence for run history.
// The miner works fully without it; callers warn and continue when the
// database is unreachable.
package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal wraps a PostgreSQL connection pool.
type Journal struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Journal, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Journal{pool: pool}, nil
}

// Close closes the connection pool.
func (j *Journal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}

// CreateRun records the start of a miner run and returns its ID.
func (j *Journal) CreateRun(ctx context.Context, periodKey, competitionID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := j.pool.QueryRow(ctx,
		`INSERT INTO miner_runs (period_key, competition_id, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		periodKey, competitionID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with the given status.
func (j *Journal) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := j.pool.Exec(ctx,
		`UPDATE miner_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveArtifact stores a JSON artifact produced by one stage of a run.
func (j *Journal) SaveArtifact(ctx context.Context, runID uuid.UUID, stage string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = j.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, stage, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", stage, err)
	}
	return nil
}

// RecordAnnounceAttempt stores one failed announce attempt, preserving the
// retry history of a run for later inspection.
func (j *Journal) RecordAnnounceAttempt(ctx context.Context, runID uuid.UUID, attempt int, failure string) error {
	_, err := j.pool.Exec(ctx,
		`INSERT INTO announce_attempts (run_id, attempt, failure)
		 VALUES ($1, $2, $3)`,
		runID, attempt, failure,
	)
	if err != nil {
		return fmt.Errorf("failed to record announce attempt %d: %w", attempt, err)
	}
	return nil
}
