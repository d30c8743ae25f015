// Package analysis provides the text pipeline shared by the indexer and the
// query engine: whitespace tokenization, punctuation stripping, Snowball
// (Porter2) English stemming, and stop-word filtering.
package analysis

import (
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Analyzer bundles the text transforms with an explicit stop-word set so a
// single constructed pipeline serves both indexing and search.
type Analyzer struct {
	stop *StopWords
}

// NewAnalyzer creates an analyzer using the given stop-word set. A nil set
// falls back to the built-in default list.
func NewAnalyzer(stop *StopWords) *Analyzer {
	if stop == nil {
		stop = DefaultStopWords()
	}
	return &Analyzer{stop: stop}
}

// Tokenize splits text on whitespace.
func (a *Analyzer) Tokenize(text string) []string {
	return strings.Fields(text)
}

// CleanWord strips a document-side token down to its letters. Digits and
// punctuation are removed outright, so "don't" becomes "dont" and "2024"
// becomes "".
func (a *Analyzer) CleanWord(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanQueryToken strips punctuation from a query token while keeping ':'
// and '-', which carry query syntax (entity prefixes and negation).
func (a *Analyzer) CleanQueryToken(token string) string {
	var b strings.Builder
	b.Grow(len(token))
	for _, r := range token {
		if unicode.IsPunct(r) && r != ':' && r != '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Stem lower-cases the token and reduces it to its Porter2 stem. The
// transform is deterministic and idempotent; an empty or whitespace-only
// token stems to "".
func (a *Analyzer) Stem(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return ""
	}
	return snowballeng.Stem(token, false)
}

// IsStopWord reports whether the token is in the analyzer's stop-word set.
// Matching is case-insensitive.
func (a *Analyzer) IsStopWord(token string) bool {
	return a.stop.Contains(token)
}

// StopWordCount returns the size of the configured stop-word set.
func (a *Analyzer) StopWordCount() int {
	return a.stop.Len()
}
