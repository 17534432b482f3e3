package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/priceseries"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// SetBudgetRequest represents the request body for setting a budget
type SetBudgetRequest struct {
	MonthKey string  `json:"monthKey" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// SetBudget creates or replaces the budget for one month
// PUT /internal/families/:familyId/budgets
func SetBudget(c *gin.Context) {
	familyID := c.Param("familyId")

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !monthKeyPattern.MatchString(req.MonthKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monthKey must be YYYY-MM"})
		return
	}

	budget, err := database.UpsertBudget(c.Request.Context(), familyID, req.MonthKey, req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store budget"})
		return
	}

	c.JSON(http.StatusOK, budget)
}

// ListBudgets returns a family's budgets for a month key range,
// defaulting to the last six months
// GET /internal/families/:familyId/budgets?from=2026-01&to=2026-06
func ListBudgets(c *gin.Context) {
	familyID := c.Param("familyId")

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		window := priceseries.MonthWindow(time.Now(), priceseries.SummaryMonths, priceseries.DefaultLabel)
		if from == "" {
			from = window[0].Key
		}
		if to == "" {
			to = window[len(window)-1].Key
		}
	}
	if !monthKeyPattern.MatchString(from) || !monthKeyPattern.MatchString(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be YYYY-MM"})
		return
	}

	budgets, err := database.ListBudgets(c.Request.Context(), familyID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list budgets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"budgets": budgets, "total": len(budgets)})
}
