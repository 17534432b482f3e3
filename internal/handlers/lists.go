package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/database"
	"github.com/casalista/purchase-service/internal/matching"
)

// CreateListRequest represents the request body for creating a list
type CreateListRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateShoppingList creates a new shopping list
// POST /internal/families/:familyId/lists
func CreateShoppingList(c *gin.Context) {
	familyID := c.Param("familyId")

	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := database.CreateShoppingList(c.Request.Context(), familyID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
		return
	}

	c.JSON(http.StatusCreated, list)
}

// ListShoppingLists returns a family's lists
// GET /internal/families/:familyId/lists?status=open
func ListShoppingLists(c *gin.Context) {
	familyID := c.Param("familyId")
	status := c.Query("status")

	lists, err := database.ListShoppingLists(c.Request.Context(), familyID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list shopping lists"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lists": lists, "total": len(lists)})
}

// GetShoppingList returns one list with its entries
// GET /internal/families/:familyId/lists/:listId
func GetShoppingList(c *gin.Context) {
	familyID := c.Param("familyId")
	listID := c.Param("listId")

	list, entries, err := database.GetShoppingList(c.Request.Context(), familyID, listID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"list": list, "entries": entries})
}

// AddListEntryRequest represents the request body for adding an entry
type AddListEntryRequest struct {
	Name     string  `json:"name" binding:"required"`
	Barcode  string  `json:"barcode"`
	Quantity float64 `json:"quantity"`
}

// AddListEntry adds a product to a shopping list
// POST /internal/families/:familyId/lists/:listId/entries
func AddListEntry(c *gin.Context) {
	familyID := c.Param("familyId")
	listID := c.Param("listId")

	// List must belong to the family
	if _, _, err := database.GetShoppingList(c.Request.Context(), familyID, listID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	var req AddListEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	entry := &database.ShoppingListEntry{
		Name:     req.Name,
		Quantity: req.Quantity,
	}
	if barcode := matching.NormalizeBarcode(req.Barcode); barcode != "" {
		entry.Barcode = &barcode
	}

	stored, err := database.AddShoppingListEntry(c.Request.Context(), listID, entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add entry"})
		return
	}

	c.JSON(http.StatusCreated, stored)
}

// CheckListEntryRequest represents the request body for checking an entry
type CheckListEntryRequest struct {
	Checked bool `json:"checked"`
}

// CheckListEntry marks an entry as checked or unchecked
// PATCH /internal/families/:familyId/lists/:listId/entries/:entryId
func CheckListEntry(c *gin.Context) {
	listID := c.Param("listId")
	entryID := c.Param("entryId")

	var req CheckListEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := database.SetEntryChecked(c.Request.Context(), listID, entryID, req.Checked); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveListEntry deletes an entry from a shopping list
// DELETE /internal/families/:familyId/lists/:listId/entries/:entryId
func RemoveListEntry(c *gin.Context) {
	familyID := c.Param("familyId")
	listID := c.Param("listId")
	entryID := c.Param("entryId")

	if _, _, err := database.GetShoppingList(c.Request.Context(), familyID, listID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if err := database.RemoveShoppingListEntry(c.Request.Context(), listID, entryID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// SetListStatusRequest represents the request body for a status change
type SetListStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open done archived"`
}

// SetListStatus updates the status of a shopping list
// PATCH /internal/families/:familyId/lists/:listId
func SetListStatus(c *gin.Context) {
	familyID := c.Param("familyId")
	listID := c.Param("listId")

	var req SetListStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := database.SetListStatus(c.Request.Context(), familyID, listID, req.Status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
