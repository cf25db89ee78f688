package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetadataRequest represents the structure for metadata update requests.
// It contains a required metadata field that holds key-value pairs for updating entity metadata.
type MetadataRequest struct {
	Metadata map[string]interface{} `json:"meta_data" binding:"required"`
}

// UpdateMetadata handles HTTP requests to update metadata for various entity
// types. The entity type is determined automatically from the entity ID
// prefix, so the same route serves transactions, accounts, members, savings
// accounts and loans.
//
// Responses:
// - 400 Bad Request: If the entity ID is missing or the request body is invalid.
// - 404 Not Found: If the specified entity doesn't exist.
// - 200 OK: If the metadata is successfully updated.
func (a Api) UpdateMetadata(c *gin.Context) {
	entityID := c.Param("entity-id")

	if entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity ID is required"})
		return
	}

	var req MetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updatedMetadata, err := a.ledger.UpdateMetadata(c.Request.Context(), entityID, req.Metadata)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metadata": updatedMetadata})
}
