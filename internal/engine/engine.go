// Package engine wires the term indexes, the document store, and the
// indexing and search services into a single orchestrator.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ATKuehn/supersearch/config"
	"github.com/ATKuehn/supersearch/index"
	"github.com/ATKuehn/supersearch/internal/analysis"
	"github.com/ATKuehn/supersearch/internal/indexing"
	"github.com/ATKuehn/supersearch/internal/logging"
	"github.com/ATKuehn/supersearch/internal/metrics"
	"github.com/ATKuehn/supersearch/internal/search"
	"github.com/ATKuehn/supersearch/model"
	"github.com/ATKuehn/supersearch/services"
	"github.com/ATKuehn/supersearch/store"
)

const (
	dataDirPerm       = 0o750
	wordsFile         = "words.txt"
	personsFile       = "persons.txt"
	organizationsFile = "organizations.txt"
	storeFile         = "documents.db"
)

// Engine owns the three term indexes, the document store, and the services
// operating on them. It implements the services.EngineService interface.
type Engine struct {
	// mu guards the tree pointers and the services built around them;
	// LoadIndexes swaps all of them together.
	mu            sync.RWMutex
	words         *index.TermIndex
	persons       *index.TermIndex
	organizations *index.TermIndex
	indexer       *indexing.Service
	searcher      *search.Service

	docs     *store.DocumentStore
	analyzer *analysis.Analyzer
	cache    *search.QueryCache
	metrics  *metrics.Metrics
	log      *slog.Logger

	dataDir     string
	workers     int
	pageSize    int
	maxPageSize int
}

// New builds a ready engine from the configuration. The data directory is
// created when absent and the document store opens its file inside it.
// m may be nil when metrics are disabled.
func New(cfg *config.Config, m *metrics.Metrics) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := os.MkdirAll(cfg.Data.Dir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", cfg.Data.Dir, err)
	}

	stop := analysis.DefaultStopWords()
	if cfg.Data.StopWordsFile != "" {
		loaded, err := analysis.LoadStopWords(cfg.Data.StopWordsFile)
		if err != nil {
			return nil, fmt.Errorf("loading stop words from %s: %w", cfg.Data.StopWordsFile, err)
		}
		stop = loaded
	}

	docs, err := store.Open(filepath.Join(cfg.Data.Dir, storeFile))
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}

	eng := &Engine{
		words:         index.NewTermIndex(),
		persons:       index.NewTermIndex(),
		organizations: index.NewTermIndex(),
		docs:          docs,
		analyzer:      analysis.NewAnalyzer(stop),
		cache:         search.NewQueryCache(time.Duration(cfg.Search.CacheTTL), cfg.Search.CacheMaxEntries, m),
		metrics:       m,
		log:           logging.WithComponent("engine"),
		dataDir:       cfg.Data.Dir,
		workers:       cfg.Index.Workers,
		pageSize:      cfg.Search.PageSize,
		maxPageSize:   cfg.Search.MaxPageSize,
	}

	indexer, searcher, err := eng.buildServices(eng.words, eng.persons, eng.organizations)
	if err != nil {
		_ = docs.Close()
		return nil, err
	}
	eng.indexer, eng.searcher = indexer, searcher
	return eng, nil
}

// Close releases the document store.
func (e *Engine) Close() error {
	return e.docs.Close()
}

// buildServices wires indexing and search services around the given trees.
func (e *Engine) buildServices(words, persons, organizations *index.TermIndex) (*indexing.Service, *search.Service, error) {
	indexer, err := indexing.NewService(words, persons, organizations, e.docs, e.analyzer, e.workers)
	if err != nil {
		return nil, nil, fmt.Errorf("creating indexing service: %w", err)
	}
	searcher, err := search.NewService(words, persons, organizations, e.analyzer, e.cache)
	if err != nil {
		return nil, nil, fmt.Errorf("creating search service: %w", err)
	}
	return indexer, searcher, nil
}

// IndexDirectory walks dir and feeds every article file into the indexes.
// Cached query results are dropped afterwards since rankings may change.
func (e *Engine) IndexDirectory(ctx context.Context, dir string) (services.IndexingStats, error) {
	e.mu.RLock()
	indexer := e.indexer
	e.mu.RUnlock()

	stats, err := indexer.IndexDirectory(ctx, dir)
	if err != nil {
		return stats, err
	}

	e.cache.Invalidate()
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Add(float64(stats.FilesIndexed))
	}
	e.mu.RLock()
	e.setIndexGauges()
	e.mu.RUnlock()
	return stats, nil
}

// Search runs a query and returns the requested page of hits enriched with
// stored article metadata. Pages beyond the last one come back with empty
// hit lists, not errors.
func (e *Engine) Search(query services.SearchQuery) (services.SearchResult, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = e.pageSize
	}
	if pageSize > e.maxPageSize {
		pageSize = e.maxPageSize
	}

	e.mu.RLock()
	searcher := e.searcher
	e.mu.RUnlock()

	res := searcher.Run(query.QueryString)

	scores := res.Slice((page-1)*pageSize, pageSize)
	hits := make([]services.HitResult, 0, len(scores))
	for _, score := range scores {
		hit := services.HitResult{
			DocumentID: score.DocumentID,
			Frequency:  score.Frequency,
		}
		if article, err := e.docs.Get(score.DocumentID); err == nil {
			hit.Title = article.Title
			hit.Published = article.Published
			hit.Site = article.Thread.SiteFull
		} else {
			e.log.Debug("no stored article for hit", "doc_id", score.DocumentID)
		}
		hits = append(hits, hit)
	}

	if e.metrics != nil {
		outcome := "hits"
		if res.Total() == 0 {
			outcome = "empty"
		}
		e.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
		e.metrics.SearchLatency.Observe(float64(res.Took) / 1000)
	}

	return services.SearchResult{
		Hits:     hits,
		Total:    res.Total(),
		Page:     page,
		PageSize: pageSize,
		Took:     res.Took,
		QueryId:  res.QueryID,
	}, nil
}

// Document returns the stored article for a document ID.
func (e *Engine) Document(docID string) (*model.Article, error) {
	return e.docs.Get(docID)
}

// Stats reports the current index and store sizes.
func (e *Engine) Stats() services.EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return services.EngineStats{
		Documents:     e.docs.Count(),
		Words:         e.words.Size(),
		Persons:       e.persons.Size(),
		Organizations: e.organizations.Size(),
	}
}

// setIndexGauges publishes current index and store sizes. Callers must
// hold mu.
func (e *Engine) setIndexGauges() {
	if e.metrics == nil {
		return
	}
	e.metrics.IndexSize.WithLabelValues("words").Set(float64(e.words.Size()))
	e.metrics.IndexSize.WithLabelValues("persons").Set(float64(e.persons.Size()))
	e.metrics.IndexSize.WithLabelValues("organizations").Set(float64(e.organizations.Size()))
	e.metrics.StoredDocuments.Set(float64(e.docs.Count()))
}
