package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateFamily inserts a new family
func CreateFamily(ctx context.Context, name, timezone string) (*Family, error) {
	pool := Pool()

	if timezone == "" {
		timezone = "America/Sao_Paulo"
	}

	now := time.Now()
	family := Family{
		ID:        uuid.New().String(),
		Name:      name,
		Timezone:  timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO families (id, name, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, family.ID, family.Name, family.Timezone, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert family: %w", err)
	}

	return &family, nil
}

// GetFamilyByID retrieves a family by its ID
func GetFamilyByID(ctx context.Context, familyID string) (*Family, error) {
	pool := Pool()

	var family Family
	err := pool.QueryRow(ctx, `
		SELECT id, name, timezone, created_at, updated_at
		FROM families
		WHERE id = $1
	`, familyID).Scan(
		&family.ID, &family.Name, &family.Timezone,
		&family.CreatedAt, &family.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("family not found: %s", familyID)
		}
		return nil, fmt.Errorf("error querying family: %w", err)
	}

	return &family, nil
}

// ListFamilies lists all families, oldest first
func ListFamilies(ctx context.Context) ([]Family, error) {
	pool := Pool()

	rows, err := pool.Query(ctx, `
		SELECT id, name, timezone, created_at, updated_at
		FROM families
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying families: %w", err)
	}
	defer rows.Close()

	families := make([]Family, 0)
	for rows.Next() {
		var family Family
		err := rows.Scan(
			&family.ID, &family.Name, &family.Timezone,
			&family.CreatedAt, &family.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning family: %w", err)
		}
		families = append(families, family)
	}

	return families, nil
}
