package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
)

// IndexDirectoryRequest names the directory to walk for article files.
type IndexDirectoryRequest struct {
	Directory string `json:"directory" binding:"required"`
}

// IndexDirectoryHandler walks the requested directory and indexes every
// article file in it.
// Request Body: IndexDirectoryRequest
func (api *API) IndexDirectoryHandler(c *gin.Context) {
	var req IndexDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	stats, err := api.engine.IndexDirectory(c.Request.Context(), req.Directory)
	if err != nil {
		if errors.Is(err, internalErrors.ErrInvalidInput) {
			SendValidationError(c, "directory", err.Error())
			return
		}
		SendIndexingError(c, req.Directory, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Indexing completed for '" + req.Directory + "'",
		"stats":   stats,
	})
}

// SaveIndexesHandler persists all three indexes as text snapshots.
func (api *API) SaveIndexesHandler(c *gin.Context) {
	if err := api.engine.SaveIndexes(); err != nil {
		SendPersistenceError(c, "save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index snapshots saved"})
}

// LoadIndexesHandler replaces the in-memory indexes with the saved text
// snapshots.
func (api *API) LoadIndexesHandler(c *gin.Context) {
	if err := api.engine.LoadIndexes(); err != nil {
		if errors.Is(err, internalErrors.ErrSnapshotNotFound) {
			SendSnapshotNotFoundError(c, err)
			return
		}
		SendPersistenceError(c, "load", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Index snapshots loaded",
		"stats":   api.engine.Stats(),
	})
}
