package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UpsertBudget creates or updates the budget for a family and month
func UpsertBudget(ctx context.Context, familyID, monthKey string, amount float64) (*Budget, error) {
	pool := Pool()

	now := time.Now()
	budget := Budget{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		MonthKey:  monthKey,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := pool.QueryRow(ctx, `
		INSERT INTO budgets (id, family_id, month_key, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (family_id, month_key) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, budget.ID, familyID, monthKey, amount, now).Scan(&budget.ID, &budget.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget: %w", err)
	}

	return &budget, nil
}

// ListBudgets lists a family's budgets within an inclusive month key range
func ListBudgets(ctx context.Context, familyID, fromKey, toKey string) ([]Budget, error) {
	pool := Pool()

	rows, err := pool.Query(ctx, `
		SELECT id, family_id, month_key, amount, created_at, updated_at
		FROM budgets
		WHERE family_id = $1 AND month_key >= $2 AND month_key <= $3
		ORDER BY month_key
	`, familyID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("error querying budgets: %w", err)
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		var budget Budget
		err := rows.Scan(
			&budget.ID, &budget.FamilyID, &budget.MonthKey,
			&budget.Amount, &budget.CreatedAt, &budget.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning budget: %w", err)
		}
		budgets = append(budgets, budget)
	}

	return budgets, nil
}
