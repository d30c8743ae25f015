package errors

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors for common error conditions
var (
	// ErrDocumentNotFound is returned when a document is not in the store
	ErrDocumentNotFound = errors.New("document not found")

	// ErrSnapshotNotFound is returned when a saved index snapshot file is
	// missing from the data directory
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// DocumentNotFoundError represents a document not found error with context
type DocumentNotFoundError struct {
	DocumentID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document with ID '%s' not found", e.DocumentID)
}

func (e *DocumentNotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// NewDocumentNotFoundError creates a new DocumentNotFoundError
func NewDocumentNotFoundError(documentID string) *DocumentNotFoundError {
	return &DocumentNotFoundError{DocumentID: documentID}
}

// SnapshotNotFoundError represents a missing index snapshot file with context
type SnapshotNotFoundError struct {
	Path string
}

func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("index snapshot '%s' not found", e.Path)
}

func (e *SnapshotNotFoundError) Is(target error) bool {
	return target == ErrSnapshotNotFound
}

// Unwrap lets callers that probe with os.ErrNotExist treat a missing
// snapshot like any other missing file.
func (e *SnapshotNotFoundError) Unwrap() error {
	return os.ErrNotExist
}

// NewSnapshotNotFoundError creates a new SnapshotNotFoundError
func NewSnapshotNotFoundError(path string) *SnapshotNotFoundError {
	return &SnapshotNotFoundError{Path: path}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
