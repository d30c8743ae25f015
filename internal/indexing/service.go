// Package indexing feeds article files into the term indexes and the
// document store.
package indexing

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ATKuehn/supersearch/index"
	"github.com/ATKuehn/supersearch/internal/analysis"
	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
	"github.com/ATKuehn/supersearch/model"
	"github.com/ATKuehn/supersearch/services"
	"github.com/ATKuehn/supersearch/store"
)

const defaultWorkers = 4

// Service walks article directories and fills the three term indexes and
// the document store. It fulfills the services.Indexer interface.
type Service struct {
	words         *index.TermIndex
	persons       *index.TermIndex
	organizations *index.TermIndex
	docs          *store.DocumentStore
	analyzer      *analysis.Analyzer
	workers       int
}

// NewService creates a new indexing Service. workers bounds the number of
// files parsed concurrently; values below 1 fall back to a small default.
func NewService(words, persons, organizations *index.TermIndex, docs *store.DocumentStore, analyzer *analysis.Analyzer, workers int) (*Service, error) {
	if words == nil || persons == nil || organizations == nil {
		return nil, fmt.Errorf("term indexes cannot be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Service{
		words:         words,
		persons:       persons,
		organizations: organizations,
		docs:          docs,
		analyzer:      analyzer,
		workers:       workers,
	}, nil
}

// IndexDirectory walks dir for .json article files and indexes each one.
// The file path doubles as the document ID. Unreadable or malformed files
// are counted and skipped; only walk or context failures abort the run.
func (s *Service) IndexDirectory(ctx context.Context, dir string) (services.IndexingStats, error) {
	if strings.TrimSpace(dir) == "" {
		return services.IndexingStats{}, internalErrors.NewValidationError("directory", "directory cannot be empty")
	}
	start := time.Now()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return services.IndexingStats{}, fmt.Errorf("walking %s: %w", dir, err)
	}

	var indexed, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.indexFile(path); err != nil {
				failed.Add(1)
				slog.Warn("skipping article file", "path", path, "error", err)
				return nil
			}
			indexed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return services.IndexingStats{}, err
	}

	stats := services.IndexingStats{
		FilesIndexed: int(indexed.Load()),
		FilesFailed:  int(failed.Load()),
		Took:         time.Since(start).Milliseconds(),
	}
	slog.Info("indexing finished", "dir", dir,
		"files_indexed", stats.FilesIndexed,
		"files_failed", stats.FilesFailed,
		"took_ms", stats.Took)
	return stats, nil
}

// indexFile decodes one article file, stores it, and inserts its
// aggregated term counts into the three indexes.
func (s *Service) indexFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- paths come from the walked directory
	if err != nil {
		return fmt.Errorf("reading article: %w", err)
	}
	var article model.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return fmt.Errorf("decoding article: %w", err)
	}

	docID := path
	if err := s.docs.Put(docID, &article); err != nil {
		return fmt.Errorf("storing article: %w", err)
	}

	for term, count := range s.countWords(article.Text) {
		s.words.Insert(term, docID, count)
	}
	for term, count := range s.countPersonTokens(article.Entities.Persons) {
		s.persons.Insert(term, docID, count)
	}
	for term, count := range s.countOrganizationTokens(article.Entities.Organizations) {
		s.organizations.Insert(term, docID, count)
	}
	return nil
}

// countWords aggregates stemmed term frequencies for the article body.
// Tokens are stripped to letters, stop words dropped, the rest stemmed.
func (s *Service) countWords(text string) map[string]int {
	counts := make(map[string]int)
	for _, token := range s.analyzer.Tokenize(text) {
		word := s.analyzer.CleanWord(token)
		if word == "" || s.analyzer.IsStopWord(word) {
			continue
		}
		counts[s.analyzer.Stem(word)]++
	}
	return counts
}

// countPersonTokens aggregates lower-cased person name tokens; PERSON:
// queries lower-case their argument the same way.
func (s *Service) countPersonTokens(persons []model.Entity) map[string]int {
	counts := make(map[string]int)
	for _, person := range persons {
		for _, token := range s.analyzer.Tokenize(person.Name) {
			word := s.analyzer.CleanWord(token)
			if word == "" {
				continue
			}
			counts[strings.ToLower(word)]++
		}
	}
	return counts
}

// countOrganizationTokens aggregates organization name tokens verbatim;
// ORG: lookups are case-sensitive.
func (s *Service) countOrganizationTokens(organizations []model.Entity) map[string]int {
	counts := make(map[string]int)
	for _, org := range organizations {
		for _, token := range s.analyzer.Tokenize(org.Name) {
			word := s.analyzer.CleanWord(token)
			if word == "" {
				continue
			}
			counts[word]++
		}
	}
	return counts
}
