package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container, connects the package pool
// and returns a cleanup function.
func setupTestDB(t *testing.T) func() {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	err = Connect(ctx, connStr, 5, 1, time.Hour, 30*time.Minute)
	require.NoError(t, err, "Failed to connect pool")

	err = runTestMigrations(ctx)
	require.NoError(t, err, "Failed to run migrations")

	return func() {
		Close()
		testcontainers.TerminateContainer(container)
	}
}

// runTestMigrations creates the schema used by the service.
func runTestMigrations(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS families (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'America/Sao_Paulo',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id TEXT PRIMARY KEY,
		family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		access_key TEXT,
		source TEXT NOT NULL,
		store_name TEXT NOT NULL,
		store_cnpj TEXT,
		total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		purchased_at TIMESTAMPTZ NOT NULL,
		content_hash TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (family_id, access_key)
	);

	CREATE TABLE IF NOT EXISTS purchase_items (
		id TEXT PRIMARY KEY,
		purchase_id TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
		code TEXT,
		barcode TEXT,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		unit TEXT,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS shopping_lists (
		id TEXT PRIMARY KEY,
		family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS shopping_list_entries (
		id TEXT PRIMARY KEY,
		list_id TEXT NOT NULL REFERENCES shopping_lists(id) ON DELETE CASCADE,
		barcode TEXT,
		name TEXT NOT NULL,
		quantity DOUBLE PRECISION NOT NULL DEFAULT 1,
		checked BOOLEAN NOT NULL DEFAULT false,
		checked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		month_key TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE (family_id, month_key)
	);

	CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		family_id TEXT NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		source TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reference TEXT,
		item_count INTEGER,
		error_message TEXT,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS task_queue (
		id TEXT PRIMARY KEY,
		task_type TEXT NOT NULL,
		payload JSONB NOT NULL DEFAULT '{}',
		priority INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		scheduled_for TIMESTAMPTZ DEFAULT NOW(),
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		failed_at TIMESTAMPTZ,
		worker_id TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		max_retries INTEGER NOT NULL DEFAULT 3,
		error_message TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS purchases_family_idx ON purchases(family_id, purchased_at DESC);
	CREATE INDEX IF NOT EXISTS purchase_items_purchase_idx ON purchase_items(purchase_id);
	CREATE INDEX IF NOT EXISTS task_queue_claim_idx ON task_queue(status, priority DESC, scheduled_for) WHERE status = 'pending';
	`

	_, err := Pool().Exec(ctx, schema)
	return err
}

func strPtr(s string) *string { return &s }

func TestPurchaseRoundTrip(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	family, err := CreateFamily(ctx, "Silva", "")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", family.Timezone)

	purchasedAt := time.Date(2026, time.January, 10, 14, 32, 5, 0, time.UTC)
	purchase := &Purchase{
		FamilyID:    family.ID,
		AccessKey:   strPtr("35260145543915000181650010000123451765432101"),
		Source:      "nfce",
		StoreName:   "Bom Preco",
		StoreCNPJ:   strPtr("45543915000181"),
		TotalAmount: 18.01,
		PurchasedAt: purchasedAt,
	}
	items := []PurchaseItem{
		{
			Barcode:        strPtr("7891000100103"),
			Name:           "LEITE INTEGRAL 1L",
			NormalizedName: "leite integral 1l",
			Unit:           strPtr("un"),
			Quantity:       2,
			UnitPrice:      4.99,
			TotalPrice:     9.98,
		},
		{
			Name:           "BANANA PRATA KG",
			NormalizedName: "banana prata kg",
			Unit:           strPtr("kg"),
			Quantity:       1.235,
			UnitPrice:      6.5,
			TotalPrice:     8.03,
		},
	}

	created, err := CreatePurchase(ctx, purchase, items)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// Second import of the same access key must be rejected.
	_, err = CreatePurchase(ctx, &Purchase{
		FamilyID:    family.ID,
		AccessKey:   purchase.AccessKey,
		Source:      "nfce",
		StoreName:   "Bom Preco",
		PurchasedAt: purchasedAt,
	}, nil)
	assert.ErrorIs(t, err, ErrDuplicatePurchase)

	got, gotItems, err := GetPurchaseByID(ctx, family.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bom Preco", got.StoreName)
	require.Len(t, gotItems, 2)
	assert.Equal(t, "LEITE INTEGRAL 1L", gotItems[0].Name)

	history, err := GetItemHistory(ctx, family.ID, purchasedAt.AddDate(-2, 0, 0))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Bom Preco", history[0].StoreName)

	spend, err := GetMonthlySpend(ctx, family.ID, purchasedAt.AddDate(0, -6, 0))
	require.NoError(t, err)
	require.Len(t, spend, 1)
	assert.Equal(t, "2026-01", spend[0].MonthKey)
	assert.InDelta(t, 18.01, spend[0].TotalSpent, 1e-9)

	require.NoError(t, DeletePurchase(ctx, family.ID, created.ID))
	_, _, err = GetPurchaseByID(ctx, family.ID, created.ID)
	assert.Error(t, err)
}

func TestShoppingListFlow(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	family, err := CreateFamily(ctx, "Souza", "America/Fortaleza")
	require.NoError(t, err)

	list, err := CreateShoppingList(ctx, family.ID, "Feira da semana")
	require.NoError(t, err)
	assert.Equal(t, "open", list.Status)

	entry, err := AddShoppingListEntry(ctx, list.ID, &ShoppingListEntry{
		Name:     "Arroz branco 5kg",
		Quantity: 1,
	})
	require.NoError(t, err)

	require.NoError(t, SetEntryChecked(ctx, list.ID, entry.ID, true))

	_, entries, err := GetShoppingList(ctx, family.ID, list.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Checked)
	assert.NotNil(t, entries[0].CheckedAt)

	require.NoError(t, SetListStatus(ctx, family.ID, list.ID, "done"))

	open, err := ListShoppingLists(ctx, family.ID, "open")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestBudgetUpsert(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	family, err := CreateFamily(ctx, "Oliveira", "")
	require.NoError(t, err)

	_, err = UpsertBudget(ctx, family.ID, "2026-01", 1200)
	require.NoError(t, err)

	// Same month updates in place.
	_, err = UpsertBudget(ctx, family.ID, "2026-01", 1500)
	require.NoError(t, err)

	budgets, err := ListBudgets(ctx, family.ID, "2026-01", "2026-12")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.InDelta(t, 1500, budgets[0].Amount, 1e-9)
}

func TestImportRunLifecycle(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	family, err := CreateFamily(ctx, "Costa", "")
	require.NoError(t, err)

	run, err := CreateImportRun(ctx, family.ID, "nfce", strPtr("35260145543915000181650010000123451765432101"))
	require.NoError(t, err)
	assert.Equal(t, "pending", run.Status)

	require.NoError(t, StartImportRun(ctx, run.ID))
	require.NoError(t, CompleteImportRun(ctx, run.ID, 12))

	got, err := GetImportRun(ctx, family.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, got.ItemCount)
	assert.Equal(t, 12, *got.ItemCount)
	assert.NotNil(t, got.CompletedAt)

	runs, err := ListImportRuns(ctx, family.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
