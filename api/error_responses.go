package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeInvalidQuery     ErrorCode = "INVALID_QUERY"
	ErrorCodeRateLimited      ErrorCode = "RATE_LIMITED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
	ErrorCodeIndexingFailed    ErrorCode = "INDEXING_FAILED"
	ErrorCodeSearchFailed      ErrorCode = "SEARCH_FAILED"
	ErrorCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
)

// ErrorDetail provides additional context for an error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message string, details ...ErrorDetail) *APIError {
	return &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	errorResponse := APIErrorResponse(code, message, details...)

	// Add request ID if available
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			errorResponse.RequestID = id
		}
	}

	c.JSON(statusCode, errorResponse)
}

// SendValidationError sends a validation error for a single request field
func SendValidationError(c *gin.Context, field, message string) {
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed",
		ErrorDetail{Field: field, Message: message, Code: "VALIDATION_ERROR"})
}

// SendDocumentNotFoundError sends a standardized document not found error
func SendDocumentNotFoundError(c *gin.Context, documentID string) {
	SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound,
		"Document '"+documentID+"' not found")
}

// SendSnapshotNotFoundError sends a standardized missing snapshot error
func SendSnapshotNotFoundError(c *gin.Context, err error) {
	SendError(c, http.StatusNotFound, ErrorCodeSnapshotNotFound,
		"No saved index snapshots: "+err.Error())
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendInternalError sends a standardized internal server error
func SendInternalError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
		"Internal error during "+operation+": "+err.Error())
}

// SendIndexingError sends a standardized indexing error
func SendIndexingError(c *gin.Context, directory string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeIndexingFailed,
		"Indexing failed for directory '"+directory+"': "+err.Error())
}

// SendSearchError sends a standardized search error
func SendSearchError(c *gin.Context, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed,
		"Search failed: "+err.Error())
}

// SendPersistenceError sends a standardized snapshot persistence error
func SendPersistenceError(c *gin.Context, operation string, err error) {
	SendError(c, http.StatusInternalServerError, ErrorCodePersistenceFailed,
		"Snapshot "+operation+" failed: "+err.Error())
}
