package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/fetcher"
	"github.com/casalista/purchase-service/internal/importer"
	"github.com/casalista/purchase-service/internal/insights"
	"github.com/casalista/purchase-service/internal/parsers/archive"
	"github.com/casalista/purchase-service/internal/parsers/csv"
	"github.com/casalista/purchase-service/internal/storage"
	"github.com/casalista/purchase-service/internal/taskqueue"
)

// StartImportWorker wires the import handlers and starts polling.
// portalURL is the NFC-e consultation endpoint of the state portal.
func StartImportWorker(ctx context.Context, queue *taskqueue.TaskQueue, client *fetcher.Client, portalURL string, store storage.Storage) *Worker {
	config := WorkerConfig{
		WorkerID: "import-worker",
		TaskTypes: []string{
			string(taskqueue.TaskTypeNFCeImport),
			string(taskqueue.TaskTypeCSVImport),
			string(taskqueue.TaskTypeCleanup),
		},
		MaxTasks:   5,
		NumWorkers: 2,
		PollDelay:  5 * time.Second,
	}

	worker := New(queue, config)
	worker.RegisterHandler(taskqueue.TaskTypeNFCeImport, NewNFCeImportHandler(client, portalURL, store))
	worker.RegisterHandler(taskqueue.TaskTypeCSVImport, NewCSVImportHandler(store))
	worker.RegisterHandler(taskqueue.TaskTypeCleanup, NewCleanupHandler(queue))

	worker.Start(ctx)
	return worker
}

// NewNFCeImportHandler fetches a receipt from the fiscal portal and
// stores it. Duplicate receipts complete the run instead of retrying.
func NewNFCeImportHandler(client *fetcher.Client, portalURL string, store storage.Storage) func(context.Context, []byte) error {
	return func(ctx context.Context, payload []byte) error {
		var req taskqueue.NFCeImportPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("unmarshal nfce import payload: %w", err)
		}

		if err := database.StartImportRun(ctx, req.RunID); err != nil {
			return err
		}
		start := time.Now()

		fetchURL := req.QRCodeURL
		if fetchURL == "" {
			fetchURL = fmt.Sprintf("%s?p=%s", portalURL, url.QueryEscape(req.AccessKey))
		}

		content, err := client.GetBytes(ctx, fetchURL)
		insights.Metrics.RecordFetch(err == nil)
		if err != nil {
			database.FailImportRun(ctx, req.RunID, err.Error())
			insights.Metrics.RecordImport("nfce", time.Since(start), 0, false)
			return err
		}

		// Keep the raw document so imports can be replayed
		receiptKey := storage.BuildReceiptKey(req.FamilyID, req.AccessKey, time.Now())
		if err := store.Put(ctx, receiptKey, content, &storage.Metadata{
			ContentType: "application/xml",
			FamilyID:    req.FamilyID,
			UploadedAt:  time.Now(),
		}); err != nil {
			log.Warn().Err(err).Str("key", receiptKey).Msg("Failed to archive raw receipt")
		}

		_, itemCount, err := importer.ImportNFCeDocument(ctx, req.FamilyID, content)
		if err != nil {
			if errors.Is(err, database.ErrDuplicatePurchase) {
				database.FailImportRun(ctx, req.RunID, "receipt already imported")
				return nil
			}
			database.FailImportRun(ctx, req.RunID, err.Error())
			insights.Metrics.RecordImport("nfce", time.Since(start), 0, false)
			return err
		}

		insights.Metrics.RecordImport("nfce", time.Since(start), itemCount, true)
		return database.CompleteImportRun(ctx, req.RunID, itemCount)
	}
}

// NewCSVImportHandler imports an uploaded CSV file from storage
func NewCSVImportHandler(store storage.Storage) func(context.Context, []byte) error {
	return func(ctx context.Context, payload []byte) error {
		var req taskqueue.CSVImportPayload
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("unmarshal csv import payload: %w", err)
		}

		if err := database.StartImportRun(ctx, req.RunID); err != nil {
			return err
		}
		start := time.Now()

		content, err := store.Get(ctx, req.StorageKey)
		if err != nil {
			database.FailImportRun(ctx, req.RunID, err.Error())
			return fmt.Errorf("read uploaded file: %w", err)
		}
		defer store.Delete(ctx, req.StorageKey)

		// Zipped uploads may hold several CSV exports
		var itemCount int
		if strings.HasSuffix(strings.ToLower(req.StorageKey), ".zip") {
			files, err := archive.Expand(ctx, content, archive.DefaultExpandOptions())
			if err != nil {
				database.FailImportRun(ctx, req.RunID, err.Error())
				insights.Metrics.RecordImport("csv", time.Since(start), 0, false)
				return err
			}
			for _, file := range files {
				count, _, err := importer.ImportCSV(ctx, req.FamilyID, file.Content, csv.DefaultOptions())
				if err != nil {
					database.FailImportRun(ctx, req.RunID, fmt.Sprintf("%s: %v", file.Name, err))
					insights.Metrics.RecordImport("csv", time.Since(start), 0, false)
					return err
				}
				itemCount += count
			}
		} else {
			itemCount, _, err = importer.ImportCSV(ctx, req.FamilyID, content, csv.DefaultOptions())
			if err != nil {
				database.FailImportRun(ctx, req.RunID, err.Error())
				insights.Metrics.RecordImport("csv", time.Since(start), 0, false)
				return err
			}
		}

		insights.Metrics.RecordImport("csv", time.Since(start), itemCount, true)
		return database.CompleteImportRun(ctx, req.RunID, itemCount)
	}
}

// NewCleanupHandler removes finished tasks older than a week
func NewCleanupHandler(queue *taskqueue.TaskQueue) func(context.Context, []byte) error {
	return func(ctx context.Context, _ []byte) error {
		count, err := queue.CleanupOldTasks(ctx, 7)
		if err != nil {
			return fmt.Errorf("cleanup old tasks: %w", err)
		}
		if count > 0 {
			log.Info().Int("count", count).Msg("Cleaned up old tasks")
		}
		return nil
	}
}
