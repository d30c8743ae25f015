package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
)

// GetDocumentHandler returns the stored article for a document ID passed
// as the id query parameter.
func (api *API) GetDocumentHandler(c *gin.Context) {
	docID := c.Query("id")
	if docID == "" {
		SendValidationError(c, "id", "id query parameter is required")
		return
	}

	article, err := api.engine.Document(docID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrDocumentNotFound) {
			SendDocumentNotFoundError(c, docID)
			return
		}
		SendInternalError(c, "document lookup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document_id": docID,
		"article":     article,
	})
}
