package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/casalista/purchase-service/internal/priceseries"
	"github.com/casalista/purchase-service/internal/reports"
)

var (
	exportFamilyID string
	exportMonths   int
	exportOut      string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a family's spending report as an xlsx workbook",
	Example: `  purchase-service export --family 6f1c... --out gastos.xlsx
  purchase-service export --family 6f1c... --months 12 --out gastos-ano.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFamilyID, "family", "", "Family ID (required)")
	exportCmd.Flags().IntVar(&exportMonths, "months", priceseries.SummaryMonths, "Number of trailing months to include")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file path (required)")
	exportCmd.MarkFlagRequired("family")
	exportCmd.MarkFlagRequired("out")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportMonths < 1 || exportMonths > priceseries.SeriesMonths {
		return fmt.Errorf("months must be between 1 and %d", priceseries.SeriesMonths)
	}
	ctx := cmd.Context()

	data, err := reports.LoadSpendingData(ctx, exportFamilyID, exportMonths, time.Now())
	if err != nil {
		return err
	}

	content, err := reports.BuildSpendingWorkbook(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if err := os.WriteFile(exportOut, content, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info().
		Str("family_id", exportFamilyID).
		Str("file", exportOut).
		Int("months", exportMonths).
		Msg("Spending report exported")
	return nil
}
