package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/priceseries"
)

func TestBuildSpendingWorkbook(t *testing.T) {
	ref := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	window := priceseries.MonthWindow(ref, 3, priceseries.DefaultLabel)

	data := &SpendingData{
		FamilyName: "Família Souza",
		RefTime:    ref,
		Window:     window,
		Spend: []database.MonthlySpendRow{
			{MonthKey: "2026-02", TotalSpent: 820.50, Purchases: 6},
			{MonthKey: "2026-03", TotalSpent: 312.75, Purchases: 2},
		},
		Budgets: []database.Budget{
			{MonthKey: "2026-02", Amount: 900},
		},
		Purchases: []database.Purchase{
			{
				StoreName:   "Supermercado Pague Menos",
				Source:      "nfce",
				TotalAmount: 184.32,
				PurchasedAt: time.Date(2026, 3, 2, 18, 40, 0, 0, time.UTC),
			},
		},
		Items: []priceseries.LineItem{
			{
				Name: "ARROZ TIO JOAO 5KG", Barcode: "7896006711131",
				Quantity: 1, UnitPrice: 24.90, TotalPrice: 24.90,
				PurchaseDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			},
			{
				Name: "ARROZ TIO JOAO 5KG", Barcode: "7896006711131",
				Quantity: 2, UnitPrice: 26.00, TotalPrice: 52.00,
				PurchaseDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			},
			{
				Name: "Feijão Carioca 1kg",
				Quantity: 1, UnitPrice: 8.50, TotalPrice: 8.50,
				PurchaseDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	content, err := BuildSpendingWorkbook(context.Background(), data)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), summarySheet)
	assert.Contains(t, f.GetSheetList(), purchasesSheet)

	// Header plus one row per window month, oldest first
	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Mês", rows[0][0])

	// January has no spend and no budget
	assert.Equal(t, "0", rows[1][1])

	// February carries spend, budget and remaining balance
	assert.Equal(t, "820.5", rows[2][1])
	assert.Equal(t, "6", rows[2][2])
	assert.Equal(t, "900", rows[2][3])
	assert.Equal(t, "79.5", rows[2][4])

	purchaseRows, err := f.GetRows(purchasesSheet)
	require.NoError(t, err)
	require.Len(t, purchaseRows, 2)
	assert.Equal(t, "02/03/2026", purchaseRows[1][0])
	assert.Equal(t, "Supermercado Pague Menos", purchaseRows[1][1])
	assert.Equal(t, "nfce", purchaseRows[1][2])

	// History rows come most-bought first, one price column per month
	historyRows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, historyRows, 3)
	assert.Equal(t, "Produto", historyRows[0][0])
	assert.Equal(t, window[0].Label, historyRows[0][1])

	assert.Equal(t, "ARROZ TIO JOAO 5KG", historyRows[1][0])
	assert.Equal(t, "24.9", historyRows[1][2])
	assert.Equal(t, "26", historyRows[1][3])

	assert.Equal(t, "Feijão Carioca 1kg", historyRows[2][0])
	assert.Equal(t, "8.5", historyRows[2][2])
}

func TestBuildSpendingWorkbookCancelledContext(t *testing.T) {
	ref := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	data := &SpendingData{
		FamilyName: "Família Souza",
		RefTime:    ref,
		Window:     priceseries.MonthWindow(ref, 3, priceseries.DefaultLabel),
		Items: []priceseries.LineItem{
			{
				Name: "ARROZ TIO JOAO 5KG", Barcode: "7896006711131",
				Quantity: 1, UnitPrice: 24.90, TotalPrice: 24.90,
				PurchaseDate: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildSpendingWorkbook(ctx, data)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildSpendingWorkbookEmptyData(t *testing.T) {
	ref := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	data := &SpendingData{
		FamilyName: "Família Lima",
		Window:     priceseries.MonthWindow(ref, 6, priceseries.DefaultLabel),
	}

	content, err := BuildSpendingWorkbook(context.Background(), data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}
