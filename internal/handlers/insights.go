package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/priceseries"
)

// MonthlySpendDTO is one month of family spending with its budget
type MonthlySpendDTO struct {
	MonthKey   string   `json:"monthKey"`
	Label      string   `json:"label"`
	TotalSpent float64  `json:"totalSpent"`
	Purchases  int      `json:"purchases"`
	Budget     *float64 `json:"budget"`
	OverBudget bool     `json:"overBudget"`
}

// GetMonthlySpend returns spending per month with budgets for the last
// six months, including empty months
// GET /internal/families/:familyId/insights/monthly-spend
func GetMonthlySpend(c *gin.Context) {
	familyID := c.Param("familyId")
	ctx := c.Request.Context()
	ref := time.Now()

	window := priceseries.MonthWindow(ref, priceseries.SummaryMonths, priceseries.DefaultLabel)
	since := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(priceseries.SummaryMonths - 1), 0)

	spend, err := database.GetMonthlySpend(ctx, familyID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load monthly spend"})
		return
	}
	spendByKey := make(map[string]database.MonthlySpendRow, len(spend))
	for _, row := range spend {
		spendByKey[row.MonthKey] = row
	}

	budgets, err := database.ListBudgets(ctx, familyID, window[0].Key, window[len(window)-1].Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load budgets"})
		return
	}
	budgetByKey := make(map[string]float64, len(budgets))
	for _, budget := range budgets {
		budgetByKey[budget.MonthKey] = budget.Amount
	}

	months := make([]MonthlySpendDTO, 0, len(window))
	for _, bucket := range window {
		dto := MonthlySpendDTO{MonthKey: bucket.Key, Label: bucket.Label}
		if row, ok := spendByKey[bucket.Key]; ok {
			dto.TotalSpent = row.TotalSpent
			dto.Purchases = row.Purchases
		}
		if amount, ok := budgetByKey[bucket.Key]; ok {
			dto.Budget = &amount
			dto.OverBudget = dto.TotalSpent > amount
		}
		months = append(months, dto)
	}

	c.JSON(http.StatusOK, gin.H{"months": months})
}
