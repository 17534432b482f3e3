package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateShoppingList inserts a new open shopping list
func CreateShoppingList(ctx context.Context, familyID, name string) (*ShoppingList, error) {
	pool := Pool()

	now := time.Now()
	list := ShoppingList{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		Name:      name,
		Status:    "open",
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO shopping_lists (id, family_id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, list.ID, list.FamilyID, list.Name, list.Status, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	return &list, nil
}

// GetShoppingList retrieves a list with its entries
func GetShoppingList(ctx context.Context, familyID, listID string) (*ShoppingList, []ShoppingListEntry, error) {
	pool := Pool()

	var list ShoppingList
	err := pool.QueryRow(ctx, `
		SELECT id, family_id, name, status, created_at, updated_at
		FROM shopping_lists
		WHERE id = $1 AND family_id = $2
	`, listID, familyID).Scan(
		&list.ID, &list.FamilyID, &list.Name, &list.Status,
		&list.CreatedAt, &list.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("shopping list not found: %s", listID)
		}
		return nil, nil, fmt.Errorf("error querying shopping list: %w", err)
	}

	rows, err := pool.Query(ctx, `
		SELECT id, list_id, barcode, name, quantity, checked, checked_at, created_at
		FROM shopping_list_entries
		WHERE list_id = $1
		ORDER BY created_at, id
	`, listID)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]ShoppingListEntry, 0)
	for rows.Next() {
		var entry ShoppingListEntry
		err := rows.Scan(
			&entry.ID, &entry.ListID, &entry.Barcode, &entry.Name,
			&entry.Quantity, &entry.Checked, &entry.CheckedAt, &entry.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("error scanning list entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return &list, entries, nil
}

// ListShoppingLists lists a family's shopping lists, newest first
func ListShoppingLists(ctx context.Context, familyID string, status string) ([]ShoppingList, error) {
	pool := Pool()

	query := `
		SELECT id, family_id, name, status, created_at, updated_at
		FROM shopping_lists
		WHERE family_id = $1
	`
	args := []any{familyID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying shopping lists: %w", err)
	}
	defer rows.Close()

	lists := make([]ShoppingList, 0)
	for rows.Next() {
		var list ShoppingList
		err := rows.Scan(
			&list.ID, &list.FamilyID, &list.Name, &list.Status,
			&list.CreatedAt, &list.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning shopping list: %w", err)
		}
		lists = append(lists, list)
	}

	return lists, nil
}

// AddShoppingListEntry adds an entry to a list
func AddShoppingListEntry(ctx context.Context, listID string, entry *ShoppingListEntry) (*ShoppingListEntry, error) {
	pool := Pool()

	entry.ID = uuid.New().String()
	entry.ListID = listID
	entry.CreatedAt = time.Now()

	_, err := pool.Exec(ctx, `
		INSERT INTO shopping_list_entries (id, list_id, barcode, name, quantity, checked, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`, entry.ID, entry.ListID, entry.Barcode, entry.Name, entry.Quantity, entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert list entry: %w", err)
	}

	return entry, nil
}

// SetEntryChecked marks a list entry as checked or unchecked
func SetEntryChecked(ctx context.Context, listID, entryID string, checked bool) error {
	pool := Pool()

	var checkedAt *time.Time
	if checked {
		now := time.Now()
		checkedAt = &now
	}

	result, err := pool.Exec(ctx, `
		UPDATE shopping_list_entries
		SET checked = $1, checked_at = $2
		WHERE id = $3 AND list_id = $4
	`, checked, checkedAt, entryID, listID)
	if err != nil {
		return fmt.Errorf("failed to update list entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("list entry not found: %s", entryID)
	}

	return nil
}

// RemoveShoppingListEntry deletes an entry from a list
func RemoveShoppingListEntry(ctx context.Context, listID, entryID string) error {
	pool := Pool()

	result, err := pool.Exec(ctx, `
		DELETE FROM shopping_list_entries
		WHERE id = $1 AND list_id = $2
	`, entryID, listID)
	if err != nil {
		return fmt.Errorf("failed to delete list entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("list entry not found: %s", entryID)
	}

	return nil
}

// SetListStatus updates the status of a shopping list
func SetListStatus(ctx context.Context, familyID, listID, status string) error {
	pool := Pool()

	result, err := pool.Exec(ctx, `
		UPDATE shopping_lists
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND family_id = $3
	`, status, listID, familyID)
	if err != nil {
		return fmt.Errorf("failed to update shopping list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("shopping list not found: %s", listID)
	}

	return nil
}
