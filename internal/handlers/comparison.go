package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/insights"
	"github.com/casalista/purchase-service/internal/matching"
	"github.com/casalista/purchase-service/internal/priceseries"
)

// ComparisonRequest represents query parameters for the price comparison
type ComparisonRequest struct {
	Barcode string `form:"barcode"`
	Name    string `form:"name"`
}

// MonthAggregateDTO is one month row of the comparison summary
type MonthAggregateDTO struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Current     bool     `json:"current"`
	AvgPrice    *float64 `json:"avgPrice"`
	TotalQty    float64  `json:"totalQty"`
	HasPurchase bool     `json:"hasPurchase"`
}

// SeriesPointDTO is one month of the long trend series
type SeriesPointDTO struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	AvgPrice   *float64 `json:"avgPrice"`
	TotalQty   float64  `json:"totalQty"`
	HasPrice   bool     `json:"hasPrice"`
	HasQty     bool     `json:"hasQty"`
	TrendPrice *float64 `json:"trendPrice"`
	TrendQty   *float64 `json:"trendQty"`
}

// ComparisonResponse represents the full comparison payload
type ComparisonResponse struct {
	Summary       []MonthAggregateDTO `json:"summary"`
	Current       *MonthAggregateDTO  `json:"current"`
	Baseline      *MonthAggregateDTO  `json:"baseline"`
	Series        []SeriesPointDTO    `json:"series"`
	PriceDeltaPct *float64            `json:"priceDeltaPct"`
}

// GetComparison builds the month-over-month price comparison for one
// product of a family
// GET /internal/families/:familyId/comparison?barcode=...&name=...
func GetComparison(c *gin.Context) {
	familyID := c.Param("familyId")

	var req ComparisonRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Barcode == "" && req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode or name is required"})
		return
	}

	// A barcode query must never degrade to name matching. A barcode
	// that fails normalization is rejected up front.
	barcode := matching.NormalizeBarcode(req.Barcode)
	if req.Barcode != "" && barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is not a valid product code"})
		return
	}

	start := time.Now()
	ref := time.Now()

	// The series window bounds how much history is needed
	since := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(priceseries.SeriesMonths - 1), 0)

	history, err := database.GetItemHistory(c.Request.Context(), familyID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load purchase history"})
		return
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
		Name:    req.Name,
	}

	cmp := priceseries.Compare(items, key, ref, priceseries.DefaultLabel)
	insights.Metrics.RecordComparison(time.Since(start), len(items))

	c.JSON(http.StatusOK, toComparisonResponse(cmp))
}

func toComparisonResponse(cmp priceseries.Comparison) ComparisonResponse {
	resp := ComparisonResponse{
		Summary:       make([]MonthAggregateDTO, 0, len(cmp.Summary)),
		Series:        make([]SeriesPointDTO, 0, len(cmp.Series)),
		PriceDeltaPct: cmp.PriceDeltaPct,
	}
	for _, agg := range cmp.Summary {
		resp.Summary = append(resp.Summary, toAggregateDTO(agg))
	}
	for _, point := range cmp.Series {
		resp.Series = append(resp.Series, SeriesPointDTO{
			Key:        point.Key,
			Label:      point.Label,
			AvgPrice:   point.AvgPrice,
			TotalQty:   point.TotalQty,
			HasPrice:   point.HasPrice,
			HasQty:     point.HasQty,
			TrendPrice: point.TrendPrice,
			TrendQty:   point.TrendQty,
		})
	}
	if cmp.Current != nil {
		dto := toAggregateDTO(*cmp.Current)
		resp.Current = &dto
	}
	if cmp.Baseline != nil {
		dto := toAggregateDTO(*cmp.Baseline)
		resp.Baseline = &dto
	}
	return resp
}

func toAggregateDTO(agg priceseries.MonthAggregate) MonthAggregateDTO {
	return MonthAggregateDTO{
		Key:         agg.Key,
		Label:       agg.Label,
		Current:     agg.Current,
		AvgPrice:    agg.AvgPrice,
		TotalQty:    agg.TotalQty,
		HasPurchase: agg.HasPurchase,
	}
}
