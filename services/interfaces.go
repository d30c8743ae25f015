package services

import (
	"context"

	"github.com/ATKuehn/supersearch/model"
)

// SearchQuery is a single search request against the engine.
type SearchQuery struct {
	QueryString string `json:"query"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// HitResult represents a single document in the search results, including
// the article metadata needed to render it.
type HitResult struct {
	DocumentID string `json:"document_id"`
	Frequency  int    `json:"frequency"` // summed occurrence count across the query's required terms
	Title      string `json:"title,omitempty"`
	Published  string `json:"published,omitempty"`
	Site       string `json:"site,omitempty"`
}

type SearchResult struct {
	Hits     []HitResult `json:"hits"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Took     int64       `json:"took"`     // milliseconds
	QueryId  string      `json:"query_id"` // unique UUID for this search query
}

// IndexingStats reports one directory-indexing run.
type IndexingStats struct {
	FilesIndexed int   `json:"files_indexed"`
	FilesFailed  int   `json:"files_failed"`
	Took         int64 `json:"took"` // milliseconds
}

// EngineStats describes the current contents of the engine's indexes.
type EngineStats struct {
	Documents     int `json:"documents"`
	Words         int `json:"words"`
	Persons       int `json:"persons"`
	Organizations int `json:"organizations"`
}

// Indexer defines operations for feeding documents into the indexes
type Indexer interface {
	IndexDirectory(ctx context.Context, dir string) (IndexingStats, error)
}

// Searcher defines operations for querying the indexes
type Searcher interface {
	Search(query SearchQuery) (SearchResult, error)
}

// DocumentReader provides access to stored articles by document ID
type DocumentReader interface {
	Document(docID string) (*model.Article, error)
}

// SnapshotManager persists and restores the term indexes as text snapshots
type SnapshotManager interface {
	SaveIndexes() error
	LoadIndexes() error
}

// StatsProvider reports index sizes and document counts
type StatsProvider interface {
	Stats() EngineStats
}

// EngineService combines everything the API surface and the interactive
// driver need from the engine.
type EngineService interface {
	Indexer
	Searcher
	DocumentReader
	SnapshotManager
	StatsProvider
}
