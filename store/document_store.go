// Package store persists indexed articles in a bbolt database keyed by
// document ID, so search results can be rendered without re-reading the
// original source files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
	"github.com/ATKuehn/supersearch/model"
)

var articlesBucket = []byte("articles")

// DocumentStore wraps the bbolt database holding one record per indexed
// article. All methods are safe for concurrent use; bbolt serializes
// writers internally.
type DocumentStore struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) the store at path, creating parent directories
// as needed.
func Open(path string) (*DocumentStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open document store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(articlesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create articles bucket: %w", err)
	}

	return &DocumentStore{db: db, path: path}, nil
}

// Close flushes and closes the underlying database.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

// Path returns the location of the store's database file.
func (s *DocumentStore) Path() string {
	return s.path
}

// Put stores an article under docID, replacing any previous record.
func (s *DocumentStore) Put(docID string, article *model.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("failed to marshal article %s: %w", docID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(articlesBucket).Put([]byte(docID), data)
	})
}

// PutBatch stores a set of articles in a single transaction. Either every
// record lands or none does.
func (s *DocumentStore) PutBatch(articles map[string]*model.Article) error {
	if len(articles) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(articlesBucket)
		for docID, article := range articles {
			data, err := json.Marshal(article)
			if err != nil {
				return fmt.Errorf("failed to marshal article %s: %w", docID, err)
			}
			if err := bucket.Put([]byte(docID), data); err != nil {
				return fmt.Errorf("failed to store article %s: %w", docID, err)
			}
		}
		return nil
	})
}

// Get returns the article stored under docID. An unknown ID yields a
// DocumentNotFoundError matching the ErrDocumentNotFound sentinel.
func (s *DocumentStore) Get(docID string) (*model.Article, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(articlesBucket).Get([]byte(docID)); raw != nil {
			data = make([]byte, len(raw))
			copy(data, raw)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read article %s: %w", docID, err)
	}
	if data == nil {
		return nil, internalErrors.NewDocumentNotFoundError(docID)
	}

	var article model.Article
	if err := json.Unmarshal(data, &article); err != nil {
		return nil, fmt.Errorf("failed to unmarshal article %s: %w", docID, err)
	}
	return &article, nil
}

// Has reports whether docID is present in the store.
func (s *DocumentStore) Has(docID string) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(articlesBucket).Get([]byte(docID)) != nil
		return nil
	})
	return found
}

// Count returns the number of stored articles.
func (s *DocumentStore) Count() int {
	count := 0
	_ = s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(articlesBucket).Stats().KeyN
		return nil
	})
	return count
}

// Clear removes every stored article.
func (s *DocumentStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(articlesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(articlesBucket)
		return err
	})
}
