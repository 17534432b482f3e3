// Package reports builds spreadsheet exports of family spending.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/priceseries"
)

const (
	summarySheet   = "Resumo Mensal"
	purchasesSheet = "Compras"
	historySheet   = "Histórico de Preços"

	// purchaseRowLimit caps the purchases sheet
	purchaseRowLimit = 500

	// historyProductLimit caps how many products get a history row
	historyProductLimit = 30
)

// SpendingData holds everything the spending workbook needs
type SpendingData struct {
	FamilyName string
	RefTime    time.Time
	Window     []priceseries.MonthBucket
	Spend      []database.MonthlySpendRow
	Budgets    []database.Budget
	Purchases  []database.Purchase
	Items      []priceseries.LineItem
}

// LoadSpendingData gathers report inputs for the trailing months window.
// The three queries are independent and run concurrently.
func LoadSpendingData(ctx context.Context, familyID string, months int, now time.Time) (*SpendingData, error) {
	family, err := database.GetFamilyByID(ctx, familyID)
	if err != nil {
		return nil, err
	}

	window := priceseries.MonthWindow(now, months, priceseries.DefaultLabel)
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)

	data := &SpendingData{
		FamilyName: family.Name,
		RefTime:    now,
		Window:     window,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := database.GetMonthlySpend(gctx, familyID, since)
		if err != nil {
			return fmt.Errorf("load monthly spend: %w", err)
		}
		data.Spend = rows
		return nil
	})
	g.Go(func() error {
		budgets, err := database.ListBudgets(gctx, familyID, window[0].Key, window[len(window)-1].Key)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		data.Budgets = budgets
		return nil
	})
	g.Go(func() error {
		purchases, err := database.ListPurchases(gctx, familyID, purchaseRowLimit, 0)
		if err != nil {
			return fmt.Errorf("load purchases: %w", err)
		}
		data.Purchases = purchases
		return nil
	})
	g.Go(func() error {
		history, err := database.GetItemHistory(gctx, familyID, since)
		if err != nil {
			return fmt.Errorf("load item history: %w", err)
		}
		items := make([]priceseries.LineItem, 0, len(history))
		for _, row := range history {
			item := priceseries.LineItem{
				ID:           row.ItemID,
				Name:         row.Name,
				Quantity:     row.Quantity,
				UnitPrice:    row.UnitPrice,
				TotalPrice:   row.TotalPrice,
				PurchaseDate: row.PurchasedAt,
				StoreName:    row.StoreName,
			}
			if row.Barcode != nil {
				item.Barcode = *row.Barcode
			}
			items = append(items, item)
		}
		data.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return data, nil
}

// BuildSpendingWorkbook renders the spending data as an xlsx workbook
func BuildSpendingWorkbook(ctx context.Context, data *SpendingData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(purchasesSheet); err != nil {
		return nil, fmt.Errorf("create purchases sheet: %w", err)
	}
	if _, err := f.NewSheet(historySheet); err != nil {
		return nil, fmt.Errorf("create history sheet: %w", err)
	}

	if err := writeSummarySheet(f, data); err != nil {
		return nil, err
	}
	if err := writePurchasesSheet(f, data); err != nil {
		return nil, err
	}
	if err := writeHistorySheet(ctx, f, data); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, data *SpendingData) error {
	header := []interface{}{"Mês", "Total Gasto (R$)", "Compras", "Orçamento (R$)", "Saldo (R$)"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}

	spendByKey := make(map[string]database.MonthlySpendRow, len(data.Spend))
	for _, row := range data.Spend {
		spendByKey[row.MonthKey] = row
	}
	budgetByKey := make(map[string]float64, len(data.Budgets))
	for _, budget := range data.Budgets {
		budgetByKey[budget.MonthKey] = budget.Amount
	}

	for i, bucket := range data.Window {
		row := []interface{}{bucket.Label, 0.0, 0, nil, nil}
		if spend, ok := spendByKey[bucket.Key]; ok {
			row[1] = spend.TotalSpent
			row[2] = spend.Purchases
		}
		if amount, ok := budgetByKey[bucket.Key]; ok {
			row[3] = amount
			row[4] = amount - row[1].(float64)
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+2, err)
		}
	}

	return nil
}

// productHistory is one product's monthly average price across the
// report window, in window order.
type productHistory struct {
	name   string
	prices []*float64
}

// computeProductHistories aggregates a monthly price row for each of the
// most frequently bought products. Products are keyed by barcode when one
// exists and by normalized name otherwise. Aggregation runs in parallel
// since each product scans the full item slice independently.
func computeProductHistories(ctx context.Context, data *SpendingData) ([]productHistory, error) {
	type group struct {
		key   priceseries.ProductKey
		name  string
		count int
	}

	groups := make(map[string]*group)
	for _, item := range data.Items {
		id := item.Barcode
		if id == "" {
			id = "name:" + strings.ToLower(strings.TrimSpace(item.Name))
		}
		g, ok := groups[id]
		if !ok {
			g = &group{name: item.Name}
			if item.Barcode != "" {
				g.key = priceseries.ProductKey{Barcode: item.Barcode}
			} else {
				g.key = priceseries.ProductKey{Name: item.Name}
			}
			groups[id] = g
		}
		g.count++
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].name < ordered[j].name
	})
	if len(ordered) > historyProductLimit {
		ordered = ordered[:historyProductLimit]
	}

	histories := make([]productHistory, len(ordered))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for i, g := range ordered {
		i, g := i, g
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prices := make([]*float64, len(data.Window))
			for j, bucket := range data.Window {
				agg := priceseries.AggregateMonth(data.Items, g.key, bucket)
				prices[j] = agg.AvgPrice
			}
			histories[i] = productHistory{name: g.name, prices: prices}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return histories, nil
}

func writeHistorySheet(ctx context.Context, f *excelize.File, data *SpendingData) error {
	header := make([]interface{}, 0, len(data.Window)+1)
	header = append(header, "Produto")
	for _, bucket := range data.Window {
		header = append(header, bucket.Label)
	}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}

	histories, err := computeProductHistories(ctx, data)
	if err != nil {
		return err
	}

	for i, history := range histories {
		row := make([]interface{}, 0, len(history.prices)+1)
		row = append(row, history.name)
		for _, price := range history.prices {
			if price != nil {
				row = append(row, *price)
			} else {
				row = append(row, nil)
			}
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return fmt.Errorf("write history row %d: %w", i+2, err)
		}
	}

	return nil
}

func writePurchasesSheet(f *excelize.File, data *SpendingData) error {
	header := []interface{}{"Data", "Loja", "Origem", "Total (R$)"}
	if err := f.SetSheetRow(purchasesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write purchases header: %w", err)
	}

	for i, purchase := range data.Purchases {
		row := []interface{}{
			purchase.PurchasedAt.Format("02/01/2006"),
			purchase.StoreName,
			purchase.Source,
			purchase.TotalAmount,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(purchasesSheet, cell, &row); err != nil {
			return fmt.Errorf("write purchase row %d: %w", i+2, err)
		}
	}

	return nil
}
