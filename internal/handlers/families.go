package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/casalista/purchase-service/internal/database"
)

// CreateFamilyRequest represents the request body for creating a family
type CreateFamilyRequest struct {
	Name     string `json:"name" binding:"required"`
	Timezone string `json:"timezone"`
}

// CreateFamily creates a new family
// POST /internal/families
func CreateFamily(c *gin.Context) {
	var req CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	family, err := database.CreateFamily(c.Request.Context(), req.Name, req.Timezone)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create family"})
		return
	}

	c.JSON(http.StatusCreated, family)
}

// GetFamily returns a family by ID
// GET /internal/families/:familyId
func GetFamily(c *gin.Context) {
	familyID := c.Param("familyId")

	family, err := database.GetFamilyByID(c.Request.Context(), familyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, family)
}

// ListFamilies returns all families
// GET /internal/families
func ListFamilies(c *gin.Context) {
	families, err := database.ListFamilies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list families"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"families": families, "total": len(families)})
}
