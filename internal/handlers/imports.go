package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/nfce"
	"github.com/casalista/purchase-service/internal/storage"
	"github.com/casalista/purchase-service/internal/taskqueue"
)

// maxCSVUploadBytes caps uploaded CSV files at 10 MB
const maxCSVUploadBytes = 10 << 20

// uploadStorage holds uploaded import files until a worker consumes them
var uploadStorage storage.Storage

// SetUploadStorage configures the store used for uploaded import files
func SetUploadStorage(s storage.Storage) {
	uploadStorage = s
}

// ImportNFCeRequest represents the request body for an NFCe import
type ImportNFCeRequest struct {
	AccessKey string `json:"accessKey"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// ImportNFCe schedules a receipt import from the fiscal portal
// POST /internal/families/:familyId/imports/nfce
func ImportNFCe(c *gin.Context) {
	familyID := c.Param("familyId")
	ctx := c.Request.Context()

	var req ImportNFCeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var key nfce.AccessKey
	var err error
	switch {
	case req.QRCodeURL != "":
		key, err = nfce.ParseQRCodeURL(req.QRCodeURL)
	case req.AccessKey != "":
		key, err = nfce.ParseAccessKey(req.AccessKey)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "accessKey or qrCodeUrl is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reference := key.String()
	run, err := database.CreateImportRun(ctx, familyID, "nfce", &reference)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import run"})
		return
	}

	queue := taskqueue.New(database.Pool())
	result := queue.ScheduleTask(ctx, taskqueue.ScheduleTaskInput{
		TaskType: taskqueue.TaskTypeNFCeImport,
		Payload: taskqueue.NFCeImportPayload{
			FamilyID:  familyID,
			RunID:     run.ID,
			AccessKey: key.String(),
			QRCodeURL: req.QRCodeURL,
		},
	})
	if result.Err != nil {
		_ = database.FailImportRun(ctx, run.ID, "failed to schedule import task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule import"})
		return
	}

	log.Info().
		Str("family_id", familyID).
		Str("run_id", run.ID).
		Str("access_key", key.String()).
		Str("task_id", result.ID).
		Msg("Scheduled NFCe import")

	c.JSON(http.StatusAccepted, gin.H{"run": run, "taskId": result.ID})
}

// ImportCSV schedules importing an uploaded purchase history file,
// either a single CSV or a zip of CSVs
// POST /internal/families/:familyId/imports/csv  (multipart, field "file")
func ImportCSV(c *gin.Context) {
	familyID := c.Param("familyId")
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxCSVUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 10 MB limit"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxCSVUploadBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	reference := fileHeader.Filename
	run, err := database.CreateImportRun(ctx, familyID, "csv", &reference)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import run"})
		return
	}

	key := storage.BuildUploadKey(familyID, run.ID, fileHeader.Filename)
	err = uploadStorage.Put(ctx, key, content, &storage.Metadata{
		ContentType:  "text/csv",
		OriginalName: fileHeader.Filename,
		FamilyID:     familyID,
		UploadedAt:   time.Now(),
	})
	if err != nil {
		_ = database.FailImportRun(ctx, run.ID, "failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	queue := taskqueue.New(database.Pool())
	result := queue.ScheduleTask(ctx, taskqueue.ScheduleTaskInput{
		TaskType: taskqueue.TaskTypeCSVImport,
		Payload: taskqueue.CSVImportPayload{
			FamilyID:   familyID,
			RunID:      run.ID,
			StorageKey: key,
		},
	})
	if result.Err != nil {
		_ = uploadStorage.Delete(ctx, key)
		_ = database.FailImportRun(ctx, run.ID, "failed to schedule import task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule import"})
		return
	}

	log.Info().
		Str("family_id", familyID).
		Str("run_id", run.ID).
		Str("file_name", fileHeader.Filename).
		Int64("file_size", fileHeader.Size).
		Str("task_id", result.ID).
		Msg("Scheduled CSV import")

	c.JSON(http.StatusAccepted, gin.H{"run": run, "taskId": result.ID})
}

// GetImportRun returns one import run
// GET /internal/families/:familyId/imports/:runId
func GetImportRun(c *gin.Context) {
	familyID := c.Param("familyId")
	runID := c.Param("runId")

	run, err := database.GetImportRun(c.Request.Context(), familyID, runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListImportRuns returns a family's import runs, newest first
// GET /internal/families/:familyId/imports?limit=50&offset=0
func ListImportRuns(c *gin.Context) {
	familyID := c.Param("familyId")

	var req ListPurchasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	runs, err := database.ListImportRuns(c.Request.Context(), familyID, req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list import runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}
