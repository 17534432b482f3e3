package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/importer"
	"github.com/casalista/purchase-service/internal/nfce"
	"github.com/casalista/purchase-service/internal/parsers/csv"
	"github.com/casalista/purchase-service/internal/taskqueue"
)

var importFamilyID string

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file|access-key|qrcode-url>",
	Short: "Import a receipt or CSV file into the database",
	Long: `Import purchase data for a family.

Local files are imported directly, without going through the task queue:
NFC-e XML documents (.xml) become a single purchase; CSV exports become one
purchase per store and day.

A 44-digit access key or an NFC-e QR code URL instead enqueues a portal
fetch task, picked up by a running server's import worker.`,
	Example: `  purchase-service import ./data/receipt.xml --family 6f1c...
  purchase-service import ./data/historico.csv --family 6f1c...
  purchase-service import 35260312345678000190650010000012341000012349 --family 6f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFamilyID, "family", "", "Family ID (required)")
	importCmd.MarkFlagRequired("family")
}

func runImport(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	ctx := cmd.Context()

	if _, err := database.GetFamilyByID(ctx, importFamilyID); err != nil {
		return err
	}

	if key, qrURL, ok := parseImportReference(filePath); ok {
		return enqueueNFCeImport(ctx, key, qrURL)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(filePath), ".xml") {
		purchase, itemCount, err := importer.ImportNFCeDocument(ctx, importFamilyID, content)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		logger.Info().
			Str("purchase_id", purchase.ID).
			Str("store", purchase.StoreName).
			Int("items", itemCount).
			Msg("Receipt imported")
		return nil
	}

	itemCount, rowErrors, err := importer.ImportCSV(ctx, importFamilyID, content, csv.DefaultOptions())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	logger.Info().Int("items", itemCount).Msg("CSV imported")
	for _, rowErr := range rowErrors {
		logger.Warn().Int("line", rowErr.Line).Str("reason", rowErr.Message).Msg("Row skipped")
	}
	return nil
}

// parseImportReference recognizes a QR code URL or a bare access key.
// Anything else is treated as a file path by the caller.
func parseImportReference(arg string) (key nfce.AccessKey, qrURL string, ok bool) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		parsed, err := nfce.ParseQRCodeURL(arg)
		if err != nil {
			return "", "", false
		}
		return parsed, arg, true
	}
	if parsed, err := nfce.ParseAccessKey(arg); err == nil {
		return parsed, "", true
	}
	return "", "", false
}

// enqueueNFCeImport creates an import run and schedules a portal fetch
// on the shared task queue.
func enqueueNFCeImport(ctx context.Context, key nfce.AccessKey, qrURL string) error {
	reference := key.String()
	run, err := database.CreateImportRun(ctx, importFamilyID, "nfce", &reference)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}

	queue := taskqueue.New(database.Pool())
	result := queue.ScheduleTask(ctx, taskqueue.ScheduleTaskInput{
		TaskType: taskqueue.TaskTypeNFCeImport,
		Payload: taskqueue.NFCeImportPayload{
			FamilyID:  importFamilyID,
			RunID:     run.ID,
			AccessKey: key.String(),
			QRCodeURL: qrURL,
		},
	})
	if result.Err != nil {
		_ = database.FailImportRun(ctx, run.ID, "failed to schedule import task")
		return fmt.Errorf("failed to schedule import: %w", result.Err)
	}

	logger.Info().
		Str("run_id", run.ID).
		Str("access_key", key.String()).
		Str("task_id", result.ID).
		Msg("Import scheduled, a running server worker will fetch the receipt")
	return nil
}
