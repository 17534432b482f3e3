// Package taskqueue implements a PostgreSQL-backed task queue. Claims
// use FOR UPDATE SKIP LOCKED so multiple workers can poll concurrently.
package taskqueue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskQueue struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *TaskQueue {
	return &TaskQueue{pool: pool}
}

func (q *TaskQueue) GetPool() *pgxpool.Pool {
	return q.pool
}

type ScheduleTaskInput struct {
	TaskType    TaskType
	Payload     interface{}
	Priority    int
	ScheduledAt *time.Time
	MaxRetries  int
}

type ScheduleTaskResult struct {
	ID  string
	Err error
}

func (q *TaskQueue) ScheduleTask(ctx context.Context, input ScheduleTaskInput) ScheduleTaskResult {
	payload, err := json.Marshal(input.Payload)
	if err != nil {
		return ScheduleTaskResult{Err: err}
	}

	maxRetries := 3
	if input.MaxRetries > 0 {
		maxRetries = input.MaxRetries
	}

	priority := 0
	if input.Priority > 0 {
		priority = input.Priority
	}

	id := uuid.New().String()
	if input.ScheduledAt != nil {
		_, err = q.pool.Exec(ctx, `
			INSERT INTO task_queue (id, task_type, payload, priority, scheduled_for, max_retries)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, input.TaskType, payload, priority, *input.ScheduledAt, maxRetries)
	} else {
		_, err = q.pool.Exec(ctx, `
			INSERT INTO task_queue (id, task_type, payload, priority, scheduled_for, max_retries)
			VALUES ($1, $2, $3, $4, NOW(), $5)
		`, id, input.TaskType, payload, priority, maxRetries)
	}

	if err != nil {
		return ScheduleTaskResult{Err: err}
	}

	return ScheduleTaskResult{ID: id}
}

type ClaimTasksInput struct {
	WorkerID  string
	TaskTypes []string
	MaxTasks  int
}

type ClaimTasksResult struct {
	Tasks []ClaimedTask
	Err   error
}

// ClaimTasks atomically moves up to MaxTasks due tasks to 'claimed' for
// this worker. SKIP LOCKED keeps concurrent workers from blocking on
// each other's claims.
func (q *TaskQueue) ClaimTasks(ctx context.Context, input ClaimTasksInput) ClaimTasksResult {
	rows, err := q.pool.Query(ctx, `
		UPDATE task_queue
		SET status = 'claimed', worker_id = $1, started_at = NOW(), updated_at = NOW()
		WHERE id IN (
			SELECT id FROM task_queue
			WHERE status = 'pending'
			  AND task_type = ANY($2)
			  AND scheduled_for <= NOW()
			ORDER BY priority DESC, scheduled_for
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, task_type, payload
	`, input.WorkerID, input.TaskTypes, input.MaxTasks)
	if err != nil {
		return ClaimTasksResult{Err: err}
	}
	defer rows.Close()

	tasks := make([]ClaimedTask, 0)
	for rows.Next() {
		var task ClaimedTask
		if err := rows.Scan(&task.ID, &task.TaskType, &task.Payload); err != nil {
			return ClaimTasksResult{Err: err}
		}
		tasks = append(tasks, task)
	}

	return ClaimTasksResult{Tasks: tasks}
}

func (q *TaskQueue) CompleteTask(ctx context.Context, taskID string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'completed', completed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, taskID)
	return err
}

// FailTask records a failure. Retryable tasks below their retry budget
// go back to 'pending' with a delay; everything else fails permanently.
func (q *TaskQueue) FailTask(ctx context.Context, taskID, errorMessage string, shouldRetry bool) error {
	if shouldRetry {
		result, err := q.pool.Exec(ctx, `
			UPDATE task_queue
			SET status = 'pending',
			    retry_count = retry_count + 1,
			    worker_id = NULL,
			    started_at = NULL,
			    error_message = $2,
			    scheduled_for = NOW() + (INTERVAL '30 seconds' * POWER(2, retry_count)),
			    updated_at = NOW()
			WHERE id = $1 AND retry_count < max_retries
		`, taskID, errorMessage)
		if err != nil {
			return err
		}
		if result.RowsAffected() > 0 {
			return nil
		}
	}

	_, err := q.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'failed', failed_at = NOW(), error_message = $2, updated_at = NOW()
		WHERE id = $1
	`, taskID, errorMessage)
	return err
}

// CleanupOldTasks removes finished tasks older than daysToKeep
func (q *TaskQueue) CleanupOldTasks(ctx context.Context, daysToKeep int) (int, error) {
	result, err := q.pool.Exec(ctx, `
		DELETE FROM task_queue
		WHERE status IN ('completed', 'failed', 'cancelled')
		  AND updated_at < NOW() - ($1 || ' days')::INTERVAL
	`, daysToKeep)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (q *TaskQueue) CancelTask(ctx context.Context, taskID string) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE task_queue
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'claimed')
	`, taskID)
	return err
}

func (q *TaskQueue) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	err := q.pool.QueryRow(ctx, `
		SELECT id, task_type, payload, priority, status,
		       scheduled_for, started_at, completed_at, failed_at,
		       worker_id, retry_count, max_retries, error_message,
		       created_at, updated_at
		FROM task_queue
		WHERE id = $1
	`, taskID).Scan(
		&task.ID, &task.TaskType, &task.Payload, &task.Priority, &task.Status,
		&task.ScheduledFor, &task.StartedAt, &task.CompletedAt, &task.FailedAt,
		&task.WorkerID, &task.RetryCount, &task.MaxRetries, &task.ErrorMessage,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
