// Package sweepers contains background maintenance loops.
package sweepers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// TaskQueueSweeper periodically recovers orphaned tasks. A task is
// orphaned when its worker died after claiming it.
type TaskQueueSweeper struct {
	pool     *pgxpool.Pool
	logger   *zerolog.Logger
	interval time.Duration
	claimTTL time.Duration
	stopChan chan struct{}
}

// NewTaskQueueSweeper creates a new sweeper for task queue maintenance
func NewTaskQueueSweeper(pool *pgxpool.Pool, logger *zerolog.Logger, interval, claimTTL time.Duration) *TaskQueueSweeper {
	return &TaskQueueSweeper{
		pool:     pool,
		logger:   logger,
		interval: interval,
		claimTTL: claimTTL,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic recovery sweep
func (s *TaskQueueSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("claim_ttl", s.claimTTL).
		Msg("Starting task queue sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Task queue sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Task queue sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.RecoverOrphanedTasks(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to recover orphaned tasks")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *TaskQueueSweeper) Stop() {
	close(s.stopChan)
}

// RecoverOrphanedTasks requeues stuck claims with retry budget left and
// fails the rest.
func (s *TaskQueueSweeper) RecoverOrphanedTasks(ctx context.Context) error {
	s.logger.Debug().Msg("Running orphaned task recovery")

	cutoff := time.Now().Add(-s.claimTTL)

	recovered, err := s.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'pending',
		    worker_id = NULL,
		    started_at = NULL,
		    retry_count = retry_count + 1,
		    scheduled_for = NOW(),
		    updated_at = NOW()
		WHERE status IN ('claimed', 'processing')
		  AND started_at < $1
		  AND retry_count < max_retries
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to requeue orphaned tasks: %w", err)
	}

	failed, err := s.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'failed',
		    failed_at = NOW(),
		    error_message = 'orphaned: worker did not finish within claim TTL',
		    updated_at = NOW()
		WHERE status IN ('claimed', 'processing')
		  AND started_at < $1
		  AND retry_count >= max_retries
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to fail orphaned tasks: %w", err)
	}

	recoveredCount := recovered.RowsAffected()
	failedCount := failed.RowsAffected()
	if recoveredCount > 0 || failedCount > 0 {
		s.logger.Info().
			Int64("recovered", recoveredCount).
			Int64("failed", failedCount).
			Msg("Recovered orphaned tasks")
	}

	return nil
}
