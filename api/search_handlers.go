package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ATKuehn/supersearch/services"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SearchHandler handles search requests.
// Request Body: SearchRequest (adapted for JSON from services.SearchQuery)
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	if req.Page < 0 {
		SendValidationError(c, "page", "page cannot be negative")
		return
	}
	if req.PageSize < 0 {
		SendValidationError(c, "page_size", "page_size cannot be negative")
		return
	}

	results, err := api.engine.Search(services.SearchQuery{
		QueryString: req.Query,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		SendSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
