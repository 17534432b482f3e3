package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicatePurchase is returned when a receipt with the same access
// key or content hash was already imported for the family.
var ErrDuplicatePurchase = fmt.Errorf("purchase already imported")

// CreatePurchase inserts a purchase and all of its items in a single
// transaction. Duplicate receipts (same access key or content hash for
// the family) return ErrDuplicatePurchase.
func CreatePurchase(ctx context.Context, purchase *Purchase, items []PurchaseItem) (*Purchase, error) {
	pool := Pool()

	if purchase.AccessKey != nil {
		var exists bool
		err := pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM purchases
				WHERE family_id = $1 AND access_key = $2
			)
		`, purchase.FamilyID, *purchase.AccessKey).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("error checking for duplicate purchase: %w", err)
		}
		if exists {
			return nil, ErrDuplicatePurchase
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	purchase.ID = uuid.New().String()
	purchase.CreatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO purchases (
			id, family_id, access_key, source, store_name, store_cnpj,
			total_amount, purchased_at, content_hash, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, purchase.ID, purchase.FamilyID, purchase.AccessKey, purchase.Source,
		purchase.StoreName, purchase.StoreCNPJ, purchase.TotalAmount,
		purchase.PurchasedAt, purchase.ContentHash, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range items {
		items[i].ID = uuid.New().String()
		items[i].PurchaseID = purchase.ID
		items[i].CreatedAt = now
		batch.Queue(`
			INSERT INTO purchase_items (
				id, purchase_id, code, barcode, name, normalized_name,
				unit, quantity, unit_price, total_price, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, items[i].ID, items[i].PurchaseID, items[i].Code, items[i].Barcode,
			items[i].Name, items[i].NormalizedName, items[i].Unit,
			items[i].Quantity, items[i].UnitPrice, items[i].TotalPrice, now)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(items); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return nil, fmt.Errorf("failed to insert purchase item %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return purchase, nil
}

// GetPurchaseByID retrieves a purchase and its items
func GetPurchaseByID(ctx context.Context, familyID, purchaseID string) (*Purchase, []PurchaseItem, error) {
	pool := Pool()

	var purchase Purchase
	err := pool.QueryRow(ctx, `
		SELECT id, family_id, access_key, source, store_name, store_cnpj,
		       total_amount, purchased_at, content_hash, created_at
		FROM purchases
		WHERE id = $1 AND family_id = $2
	`, purchaseID, familyID).Scan(
		&purchase.ID, &purchase.FamilyID, &purchase.AccessKey, &purchase.Source,
		&purchase.StoreName, &purchase.StoreCNPJ, &purchase.TotalAmount,
		&purchase.PurchasedAt, &purchase.ContentHash, &purchase.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("purchase not found: %s", purchaseID)
		}
		return nil, nil, fmt.Errorf("error querying purchase: %w", err)
	}

	rows, err := pool.Query(ctx, `
		SELECT id, purchase_id, code, barcode, name, normalized_name,
		       unit, quantity, unit_price, total_price, created_at
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY created_at, id
	`, purchaseID)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying purchase items: %w", err)
	}
	defer rows.Close()

	items := make([]PurchaseItem, 0)
	for rows.Next() {
		var item PurchaseItem
		err := rows.Scan(
			&item.ID, &item.PurchaseID, &item.Code, &item.Barcode,
			&item.Name, &item.NormalizedName, &item.Unit,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("error scanning purchase item: %w", err)
		}
		items = append(items, item)
	}

	return &purchase, items, nil
}

// ListPurchases lists a family's purchases, newest first, with pagination
func ListPurchases(ctx context.Context, familyID string, limit, offset int) ([]Purchase, error) {
	pool := Pool()

	rows, err := pool.Query(ctx, `
		SELECT id, family_id, access_key, source, store_name, store_cnpj,
		       total_amount, purchased_at, content_hash, created_at
		FROM purchases
		WHERE family_id = $1
		ORDER BY purchased_at DESC
		LIMIT $2 OFFSET $3
	`, familyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]Purchase, 0)
	for rows.Next() {
		var p Purchase
		err := rows.Scan(
			&p.ID, &p.FamilyID, &p.AccessKey, &p.Source,
			&p.StoreName, &p.StoreCNPJ, &p.TotalAmount,
			&p.PurchasedAt, &p.ContentHash, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	return purchases, nil
}

// GetItemHistory loads all purchase items of a family since a cutoff,
// joined with purchase metadata. This is the input for price series.
func GetItemHistory(ctx context.Context, familyID string, since time.Time) ([]ItemHistoryRow, error) {
	pool := Pool()

	rows, err := pool.Query(ctx, `
		SELECT pi.id, pi.barcode, pi.name, pi.quantity, pi.unit_price,
		       pi.total_price, p.store_name, p.purchased_at
		FROM purchase_items pi
		JOIN purchases p ON p.id = pi.purchase_id
		WHERE p.family_id = $1 AND p.purchased_at >= $2
		ORDER BY p.purchased_at
	`, familyID, since)
	if err != nil {
		return nil, fmt.Errorf("error querying item history: %w", err)
	}
	defer rows.Close()

	history := make([]ItemHistoryRow, 0)
	for rows.Next() {
		var row ItemHistoryRow
		err := rows.Scan(
			&row.ItemID, &row.Barcode, &row.Name, &row.Quantity,
			&row.UnitPrice, &row.TotalPrice, &row.StoreName, &row.PurchasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning item history row: %w", err)
		}
		history = append(history, row)
	}

	return history, nil
}

// GetMonthlySpend aggregates spending per month for a family since a cutoff
func GetMonthlySpend(ctx context.Context, familyID string, since time.Time) ([]MonthlySpendRow, error) {
	pool := Pool()

	rows, err := pool.Query(ctx, `
		SELECT to_char(purchased_at, 'YYYY-MM') AS month_key,
		       COALESCE(SUM(total_amount), 0),
		       COUNT(*)
		FROM purchases
		WHERE family_id = $1 AND purchased_at >= $2
		GROUP BY month_key
		ORDER BY month_key
	`, familyID, since)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly spend: %w", err)
	}
	defer rows.Close()

	result := make([]MonthlySpendRow, 0)
	for rows.Next() {
		var row MonthlySpendRow
		if err := rows.Scan(&row.MonthKey, &row.TotalSpent, &row.Purchases); err != nil {
			return nil, fmt.Errorf("error scanning monthly spend row: %w", err)
		}
		result = append(result, row)
	}

	return result, nil
}

// DeletePurchase removes a purchase and its items
func DeletePurchase(ctx context.Context, familyID, purchaseID string) error {
	pool := Pool()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, purchaseID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase items: %w", err)
	}

	result, err := tx.Exec(ctx, `
		DELETE FROM purchases WHERE id = $1 AND family_id = $2
	`, purchaseID, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("purchase not found: %s", purchaseID)
	}

	return tx.Commit(ctx)
}
