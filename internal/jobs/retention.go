// Package jobs runs background maintenance on the database.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/casalista/purchase-service/internal/insights"
)

// RetentionConfig holds retention policies for background maintenance
type RetentionConfig struct {
	Interval               time.Duration // How often to run the maintenance sweep
	ImportRunRetentionDays int           // How long finished import runs are kept
	TaskRetentionDays      int           // How long finished queue tasks are kept
	Enabled                bool
}

// DefaultRetentionConfig returns sensible retention defaults
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Interval:               1 * time.Hour,
		ImportRunRetentionDays: 90,
		TaskRetentionDays:      7,
		Enabled:                true,
	}
}

// RetentionManager periodically prunes finished import runs and queue
// tasks and publishes the current queue depth.
type RetentionManager struct {
	pool   *pgxpool.Pool
	config RetentionConfig
	logger *zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRetentionManager creates a new retention manager
func NewRetentionManager(pool *pgxpool.Pool, config RetentionConfig, logger *zerolog.Logger) *RetentionManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &RetentionManager{
		pool:   pool,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start begins the background maintenance loop
func (rm *RetentionManager) Start() {
	if !rm.config.Enabled {
		rm.logger.Info().Msg("Retention jobs are disabled, not starting")
		close(rm.done)
		return
	}

	rm.logger.Info().
		Dur("interval", rm.config.Interval).
		Int("import_run_days", rm.config.ImportRunRetentionDays).
		Int("task_days", rm.config.TaskRetentionDays).
		Msg("Starting retention jobs")

	go rm.loop()
}

// Stop signals the loop to exit and waits for it
func (rm *RetentionManager) Stop() {
	rm.cancel()
	<-rm.done
	rm.logger.Info().Msg("Retention jobs stopped")
}

func (rm *RetentionManager) loop() {
	defer close(rm.done)

	ticker := time.NewTicker(rm.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-rm.ctx.Done():
			return
		case <-ticker.C:
			rm.runOnce(rm.ctx)
		}
	}
}

// runOnce executes one maintenance sweep. Failures are logged and the
// next tick retries.
func (rm *RetentionManager) runOnce(ctx context.Context) {
	if count, err := rm.pruneImportRuns(ctx); err != nil {
		rm.logger.Error().Err(err).Msg("Failed to prune import runs")
	} else if count > 0 {
		rm.logger.Info().Int("count", count).Msg("Pruned old import runs")
	}

	if count, err := rm.pruneTasks(ctx); err != nil {
		rm.logger.Error().Err(err).Msg("Failed to prune queue tasks")
	} else if count > 0 {
		rm.logger.Info().Int("count", count).Msg("Pruned old queue tasks")
	}

	if err := rm.publishQueueDepth(ctx); err != nil {
		rm.logger.Error().Err(err).Msg("Failed to read queue depth")
	}
}

func (rm *RetentionManager) pruneImportRuns(ctx context.Context) (int, error) {
	result, err := rm.pool.Exec(ctx, `
		DELETE FROM import_runs
		WHERE status IN ('completed', 'failed')
		  AND created_at < NOW() - ($1 || ' days')::INTERVAL
	`, rm.config.ImportRunRetentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to prune import runs: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (rm *RetentionManager) pruneTasks(ctx context.Context) (int, error) {
	result, err := rm.pool.Exec(ctx, `
		DELETE FROM task_queue
		WHERE status IN ('completed', 'failed', 'cancelled')
		  AND updated_at < NOW() - ($1 || ' days')::INTERVAL
	`, rm.config.TaskRetentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to prune queue tasks: %w", err)
	}
	return int(result.RowsAffected()), nil
}

func (rm *RetentionManager) publishQueueDepth(ctx context.Context) error {
	rows, err := rm.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM task_queue
		GROUP BY status
	`)
	if err != nil {
		return fmt.Errorf("failed to query queue depth: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var depth int
		if err := rows.Scan(&status, &depth); err != nil {
			return fmt.Errorf("failed to scan queue depth: %w", err)
		}
		insights.Metrics.SetQueueDepth(status, depth)
	}
	return nil
}
