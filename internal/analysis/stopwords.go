package analysis

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultStopWords is the built-in English function-word list used when no
// stop-word file is configured.
var defaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by",
	"can", "do", "each", "for", "from", "had", "has", "have", "he",
	"her", "his", "if", "in", "is", "it", "its", "no", "not", "of",
	"on", "or", "she", "so", "that", "the", "their", "them", "they",
	"this", "to", "was", "were", "what", "when", "where", "which",
	"who", "will", "with", "you",
}

// StopWords is an immutable set of stop words. It is constructed once at
// startup and passed by reference into the indexing and search pipelines
// rather than living as hidden package state.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a set from the given words, lower-casing each one.
func NewStopWords(words []string) *StopWords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return &StopWords{words: set}
}

// DefaultStopWords returns the built-in stop-word set.
func DefaultStopWords() *StopWords {
	return NewStopWords(defaultStopWords)
}

// LoadStopWords reads a whitespace-separated stop-word file. If the file
// does not exist it returns os.ErrNotExist so callers can fall back to the
// default list.
func LoadStopWords(path string) (*StopWords, error) {
	file, err := os.Open(path) // #nosec G304 -- path comes from configuration, not request input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to open stop-word file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var words []string
	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stop-word file %s: %w", path, err)
	}
	return NewStopWords(words), nil
}

// Contains reports whether token is a stop word. Matching is
// case-insensitive.
func (s *StopWords) Contains(token string) bool {
	_, ok := s.words[strings.ToLower(token)]
	return ok
}

// Len returns the number of words in the set.
func (s *StopWords) Len() int {
	return len(s.words)
}
