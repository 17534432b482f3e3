package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/matching"
	"github.com/casalista/purchase-service/internal/parsers/csv"
	"github.com/casalista/purchase-service/internal/priceseries"
)

var (
	compareFamilyID string
	compareBarcode  string
	compareName     string
)

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Show the month-over-month price history for a product",
	Long: `Build the price comparison for one product out of a family's purchase
history. The product is matched by barcode when given, otherwise by name. The
summary covers the last six months; the trend series covers two years.`,
	Example: `  purchase-service compare --family 6f1c... --barcode 7891000100103
  purchase-service compare --family 6f1c... --name "Leite Integral 1L"`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareFamilyID, "family", "", "Family ID (required)")
	compareCmd.Flags().StringVar(&compareBarcode, "barcode", "", "Product barcode")
	compareCmd.Flags().StringVar(&compareName, "name", "", "Product name")
	compareCmd.MarkFlagRequired("family")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareBarcode == "" && compareName == "" {
		return fmt.Errorf("either --barcode or --name is required")
	}
	// A rejected barcode must not fall back to name matching
	barcode := matching.NormalizeBarcode(compareBarcode)
	if compareBarcode != "" && barcode == "" {
		return fmt.Errorf("barcode %q is not a valid product code", compareBarcode)
	}
	ctx := cmd.Context()

	ref := time.Now()
	since := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(priceseries.SeriesMonths - 1), 0)

	history, err := database.GetItemHistory(ctx, compareFamilyID, since)
	if err != nil {
		return fmt.Errorf("failed to load purchase history: %w", err)
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

	key := priceseries.ProductKey{
		Barcode: barcode,
		Name:    compareName,
	}
	cmp := priceseries.Compare(items, key, ref, priceseries.DefaultLabel)

	fmt.Println("\nLast six months")
	fmt.Println(strings.Repeat("-", 60))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Month\tAvg Price\tQty\n")
	for _, agg := range cmp.Summary {
		price := "-"
		if agg.AvgPrice != nil {
			price = csv.FormatBRL(*agg.AvgPrice)
		}
		marker := ""
		if agg.Current {
			marker = " *"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%.2f\n", agg.Label, marker, price, agg.TotalQty)
	}
	w.Flush()

	if cmp.PriceDeltaPct != nil {
		fmt.Printf("\nPrice change vs baseline: %+.1f%%\n", *cmp.PriceDeltaPct)
	} else {
		fmt.Println("\nNot enough history for a baseline comparison")
	}

	return nil
}
