package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ATKuehn/supersearch/index"
	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
)

// SaveIndexes writes the three term indexes as text snapshots under the
// data directory. Each file is written atomically; a failure reports the
// snapshot that could not be written.
func (e *Engine) SaveIndexes() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshots := []struct {
		tree *index.TermIndex
		name string
	}{
		{e.words, wordsFile},
		{e.persons, personsFile},
		{e.organizations, organizationsFile},
	}
	for _, snap := range snapshots {
		if err := snap.tree.Save(filepath.Join(e.dataDir, snap.name)); err != nil {
			return fmt.Errorf("saving %s: %w", snap.name, err)
		}
	}

	e.log.Info("index snapshots written", "dir", e.dataDir,
		"words", e.words.Size(),
		"persons", e.persons.Size(),
		"organizations", e.organizations.Size())
	return nil
}

// LoadIndexes replaces the in-memory indexes with the text snapshots under
// the data directory. The swap happens only after all three files have
// been read; any failure leaves the current indexes untouched.
func (e *Engine) LoadIndexes() error {
	words := index.NewTermIndex()
	persons := index.NewTermIndex()
	organizations := index.NewTermIndex()

	snapshots := []struct {
		tree *index.TermIndex
		name string
	}{
		{words, wordsFile},
		{persons, personsFile},
		{organizations, organizationsFile},
	}
	for _, snap := range snapshots {
		path := filepath.Join(e.dataDir, snap.name)
		if err := snap.tree.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return internalErrors.NewSnapshotNotFoundError(path)
			}
			return fmt.Errorf("loading %s: %w", snap.name, err)
		}
	}

	indexer, searcher, err := e.buildServices(words, persons, organizations)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.words, e.persons, e.organizations = words, persons, organizations
	e.indexer, e.searcher = indexer, searcher
	e.setIndexGauges()
	e.mu.Unlock()

	e.cache.Invalidate()
	e.log.Info("index snapshots loaded", "dir", e.dataDir,
		"words", words.Size(),
		"persons", persons.Size(),
		"organizations", organizations.Size())
	return nil
}
