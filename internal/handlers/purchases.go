package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/matching"
)

// ListPurchasesRequest represents query parameters for listing purchases
type ListPurchasesRequest struct {
	Limit  int `form:"limit" binding:"min=0,max=500"`
	Offset int `form:"offset" binding:"min=0"`
}

// ListPurchases returns a family's purchases, newest first
// GET /internal/families/:familyId/purchases?limit=50&offset=0
func ListPurchases(c *gin.Context) {
	familyID := c.Param("familyId")

	var req ListPurchasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	purchases, err := database.ListPurchases(c.Request.Context(), familyID, req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list purchases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases, "total": len(purchases)})
}

// GetPurchase returns one purchase with its items
// GET /internal/families/:familyId/purchases/:purchaseId
func GetPurchase(c *gin.Context) {
	familyID := c.Param("familyId")
	purchaseID := c.Param("purchaseId")

	purchase, items, err := database.GetPurchaseByID(c.Request.Context(), familyID, purchaseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase": purchase, "items": items})
}

// ManualPurchaseItem is one item of a manually entered purchase
type ManualPurchaseItem struct {
	Name       string  `json:"name" binding:"required"`
	Barcode    string  `json:"barcode"`
	Unit       string  `json:"unit"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice  float64 `json:"unitPrice" binding:"min=0"`
	TotalPrice float64 `json:"totalPrice" binding:"min=0"`
}

// CreateManualPurchaseRequest represents a manually entered purchase
type CreateManualPurchaseRequest struct {
	StoreName   string               `json:"storeName" binding:"required"`
	PurchasedAt time.Time            `json:"purchasedAt" binding:"required"`
	Items       []ManualPurchaseItem `json:"items" binding:"required,min=1,dive"`
}

// CreateManualPurchase stores a purchase entered by hand
// POST /internal/families/:familyId/purchases
func CreateManualPurchase(c *gin.Context) {
	familyID := c.Param("familyId")

	var req CreateManualPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var total float64
	items := make([]database.PurchaseItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.TotalPrice == 0 {
			item.TotalPrice = item.UnitPrice * item.Quantity
		}
		if item.UnitPrice == 0 && item.Quantity > 0 {
			item.UnitPrice = item.TotalPrice / item.Quantity
		}
		total += item.TotalPrice

		dbItem := database.PurchaseItem{
			Name:           item.Name,
			NormalizedName: matching.NormalizeProductName(item.Name),
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
		}
		if barcode := matching.NormalizeBarcode(item.Barcode); barcode != "" {
			dbItem.Barcode = &barcode
		}
		if item.Unit != "" {
			unit := item.Unit
			dbItem.Unit = &unit
		}
		items = append(items, dbItem)
	}

	purchase := &database.Purchase{
		FamilyID:    familyID,
		Source:      "manual",
		StoreName:   req.StoreName,
		TotalAmount: total,
		PurchasedAt: req.PurchasedAt,
	}

	stored, err := database.CreatePurchase(c.Request.Context(), purchase, items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store purchase"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"purchase": stored, "itemCount": len(items)})
}

// DeletePurchase removes a purchase and its items
// DELETE /internal/families/:familyId/purchases/:purchaseId
func DeletePurchase(c *gin.Context) {
	familyID := c.Param("familyId")
	purchaseID := c.Param("purchaseId")

	if err := database.DeletePurchase(c.Request.Context(), familyID, purchaseID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
