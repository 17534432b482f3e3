package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/casalista/purchase-service/internal/nfce"
	"github.com/casalista/purchase-service/internal/parsers/csv"
)

var parseOutput string

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a local receipt or CSV file without importing it",
	Long: `Parse a local file and show what an import would produce. NFC-e XML
documents (.xml) are decoded into a receipt with line items; CSV exports are
parsed with automatic delimiter and encoding detection. Nothing is written to
the database.`,
	Example: `  purchase-service parse ./data/receipt.xml
  purchase-service parse ./data/historico.csv
  purchase-service parse ./data/historico.csv --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseOutput, "output", "table", "Output format: table or json")
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	logger.Info().Str("file", filePath).Msg("Reading file")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(filePath), ".xml") {
		return parseReceipt(content)
	}
	return parseCSV(content)
}

func parseReceipt(content []byte) error {
	doc, err := nfce.ParseDocument(content)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if strings.EqualFold(parseOutput, "json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	}

	fmt.Printf("\nReceipt %s\n", doc.AccessKey)
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Store:  %s\n", doc.StoreName)
	fmt.Printf("Issued: %s\n", doc.IssuedAt.Format("02/01/2006 15:04"))
	fmt.Printf("Total:  %s\n\n", csv.FormatBRL(doc.TotalAmount))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Item\tBarcode\tQty\tUnit Price\tTotal\n")
	for _, item := range doc.Items {
		barcode := item.Barcode
		if barcode == "" {
			barcode = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			item.Name, barcode, item.Quantity,
			csv.FormatBRL(item.UnitPrice), csv.FormatBRL(item.TotalPrice))
	}
	return w.Flush()
}

func parseCSV(content []byte) error {
	result, err := csv.Parse(content, csv.DefaultOptions())
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if strings.EqualFold(parseOutput, "json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	fmt.Println("\nParse Results")
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Total Rows\t%d\n", result.TotalRows)
	fmt.Fprintf(w, "Valid Rows\t%d\n", result.ValidRows)
	fmt.Fprintf(w, "Errors\t%d\n", len(result.Errors))
	w.Flush()

	if len(result.Errors) > 0 {
		limit := len(result.Errors)
		if limit > 10 {
			limit = 10
		}
		fmt.Printf("\nFirst %d Errors:\n", limit)
		fmt.Println(strings.Repeat("-", 60))
		for _, rowErr := range result.Errors[:limit] {
			fmt.Printf("Line %d: %s\n", rowErr.Line, rowErr.Message)
		}
		if len(result.Errors) > limit {
			fmt.Printf("... and %d more errors\n", len(result.Errors)-limit)
		}
	}

	if len(result.Rows) > 0 {
		limit := len(result.Rows)
		if limit > 5 {
			limit = 5
		}
		fmt.Printf("\nSample Rows (first %d):\n", limit)
		fmt.Println(strings.Repeat("-", 60))
		for i, row := range result.Rows[:limit] {
			fmt.Printf("%d. %s - %s (%.2f x %s)\n",
				i+1, row.PurchasedAt.Format("02/01/2006"), row.Name,
				row.Quantity, csv.FormatBRL(row.UnitPrice))
		}
	}

	return nil
}
