package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateImportRun records a pending import
func CreateImportRun(ctx context.Context, familyID, source string, reference *string) (*ImportRun, error) {
	pool := Pool()

	now := time.Now()
	run := ImportRun{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		Source:    source,
		Status:    "pending",
		Reference: reference,
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO import_runs (id, family_id, source, status, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, run.ID, run.FamilyID, run.Source, run.Status, run.Reference, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert import run: %w", err)
	}

	return &run, nil
}

// StartImportRun marks a run as running
func StartImportRun(ctx context.Context, runID string) error {
	pool := Pool()

	_, err := pool.Exec(ctx, `
		UPDATE import_runs
		SET status = 'running', started_at = NOW()
		WHERE id = $1
	`, runID)
	if err != nil {
		return fmt.Errorf("failed to start import run: %w", err)
	}
	return nil
}

// CompleteImportRun marks a run as completed with its item count
func CompleteImportRun(ctx context.Context, runID string, itemCount int) error {
	pool := Pool()

	_, err := pool.Exec(ctx, `
		UPDATE import_runs
		SET status = 'completed', item_count = $1, completed_at = NOW()
		WHERE id = $2
	`, itemCount, runID)
	if err != nil {
		return fmt.Errorf("failed to complete import run: %w", err)
	}
	return nil
}

// FailImportRun marks a run as failed with an error message
func FailImportRun(ctx context.Context, runID, message string) error {
	pool := Pool()

	_, err := pool.Exec(ctx, `
		UPDATE import_runs
		SET status = 'failed', error_message = $1, completed_at = NOW()
		WHERE id = $2
	`, message, runID)
	if err != nil {
		return fmt.Errorf("failed to fail import run: %w", err)
	}
	return nil
}

// GetImportRun retrieves an import run by ID
func GetImportRun(ctx context.Context, familyID, runID string) (*ImportRun, error) {
	pool := Pool()

	var run ImportRun
	err := pool.QueryRow(ctx, `
		SELECT id, family_id, source, status, reference, item_count,
		       error_message, started_at, completed_at, created_at
		FROM import_runs
		WHERE id = $1 AND family_id = $2
	`, runID, familyID).Scan(
		&run.ID, &run.FamilyID, &run.Source, &run.Status, &run.Reference,
		&run.ItemCount, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
		&run.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("import run not found: %s", runID)
		}
		return nil, fmt.Errorf("error querying import run: %w", err)
	}

	return &run, nil
}

// ListImportRuns lists a family's import runs, newest first
func ListImportRuns(ctx context.Context, familyID string, limit, offset int) ([]ImportRun, error) {
	pool := Pool()

	rows, err := pool.Query(ctx, `
		SELECT id, family_id, source, status, reference, item_count,
		       error_message, started_at, completed_at, created_at
		FROM import_runs
		WHERE family_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, familyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]ImportRun, 0)
	for rows.Next() {
		var run ImportRun
		err := rows.Scan(
			&run.ID, &run.FamilyID, &run.Source, &run.Status, &run.Reference,
			&run.ItemCount, &run.ErrorMessage, &run.StartedAt, &run.CompletedAt,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning import run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}
