package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/priceseries"
	"github.com/casalista/purchase-service/internal/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportSpendingReport streams the family spending workbook
// GET /internal/families/:familyId/reports/spending?months=6
func ExportSpendingReport(c *gin.Context) {
	familyID := c.Param("familyId")

	months := priceseries.SummaryMonths
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > priceseries.SeriesMonths {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("months must be between 1 and %d", priceseries.SeriesMonths),
			})
			return
		}
		months = parsed
	}

	data, err := reports.LoadSpendingData(c.Request.Context(), familyID, months, time.Now())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	content, err := reports.BuildSpendingWorkbook(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	filename := fmt.Sprintf("gastos-%s.xlsx", time.Now().Format("2006-01"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, content)
}
