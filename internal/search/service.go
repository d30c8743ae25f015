// Package search implements the query engine: it classifies query tokens,
// resolves them against the term indexes, merges the per-term document sets
// with AND semantics and negation, ranks by summed frequency, and serves
// paginated results.
package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ATKuehn/supersearch/index"
)

// Prefixes of the query mini-language, matched case-sensitively.
const (
	orgPrefix      = "ORG:"
	personPrefix   = "PERSON:"
	negationPrefix = "-"
)

// Analyzer is the text pipeline the query engine consumes.
type Analyzer interface {
	Tokenize(text string) []string
	CleanQueryToken(token string) string
	Stem(token string) string
	IsStopWord(token string) bool
}

// Service implements ranked boolean search over the three term indexes. It
// only ever reads index data; indexes are owned and mutated elsewhere.
type Service struct {
	words         *index.TermIndex
	persons       *index.TermIndex
	organizations *index.TermIndex
	analyzer      Analyzer
	cache         *QueryCache
}

// NewService creates a new search Service. A nil cache disables query
// memoization.
func NewService(words, persons, organizations *index.TermIndex, analyzer Analyzer, cache *QueryCache) (*Service, error) {
	if words == nil || persons == nil || organizations == nil {
		return nil, fmt.Errorf("term indexes cannot be nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	return &Service{
		words:         words,
		persons:       persons,
		organizations: organizations,
		analyzer:      analyzer,
		cache:         cache,
	}, nil
}

// Run executes one query string through the full pipeline (classify,
// resolve, intersect, exclude, rank) and returns a fresh Result with its
// cursor at the start of the ranked sequence.
func (s *Service) Run(queryString string) *Result {
	startTime := time.Now()

	parsed := s.classify(queryString)

	var ranked []DocumentScore
	if s.cache != nil {
		ranked = s.cache.getOrCompute(parsed.cacheKey(), func() []DocumentScore {
			return s.ranked(parsed)
		})
	} else {
		ranked = s.ranked(parsed)
	}

	slog.Debug("Query executed",
		"required_terms", len(parsed.required),
		"excluded_terms", len(parsed.excluded),
		"matches", len(ranked))

	return &Result{
		QueryID: uuid.New().String(),
		Took:    time.Since(startTime).Milliseconds(),
		ranked:  ranked,
	}
}

// classify tokenizes the raw query, strips punctuation (keeping ':' and
// '-'), and sorts each token into its lookup class:
//
//	ORG:<name>    -> organizations index, name verbatim
//	PERSON:<name> -> persons index, name lower-cased
//	-<word>       -> words index, stemmed, excluded
//	<word>        -> words index, stemmed, required (stop words dropped)
func (s *Service) classify(raw string) parsedQuery {
	var parsed parsedQuery
	for _, token := range s.analyzer.Tokenize(raw) {
		token = s.analyzer.CleanQueryToken(token)

		switch {
		case strings.HasPrefix(token, orgPrefix):
			parsed.required = append(parsed.required, queryTerm{
				kind: kindOrganization,
				key:  strings.TrimPrefix(token, orgPrefix),
			})
		case strings.HasPrefix(token, personPrefix):
			parsed.required = append(parsed.required, queryTerm{
				kind: kindPerson,
				key:  strings.ToLower(strings.TrimPrefix(token, personPrefix)),
			})
		case strings.HasPrefix(token, negationPrefix):
			parsed.excluded = append(parsed.excluded, queryTerm{
				kind: kindExcludedWord,
				key:  s.analyzer.Stem(strings.TrimPrefix(token, negationPrefix)),
			})
		default:
			if token == "" || s.analyzer.IsStopWord(token) {
				continue
			}
			parsed.required = append(parsed.required, queryTerm{
				kind: kindWord,
				key:  s.analyzer.Stem(token),
			})
		}
	}
	return parsed
}

// ranked resolves a classified query to its final ranked document list.
func (s *Service) ranked(parsed parsedQuery) []DocumentScore {
	return rank(s.resolve(parsed))
}

// resolve looks up every classified term and merges the results: required
// maps are AND-intersected with frequency summing, then excluded maps
// remove their documents from the running result. A query with no required
// terms resolves to no matches.
func (s *Service) resolve(parsed parsedQuery) index.FrequencyMap {
	if len(parsed.required) == 0 {
		return index.FrequencyMap{}
	}

	merged := s.lookup(parsed.required[0])
	for _, term := range parsed.required[1:] {
		merged = intersect(merged, s.lookup(term))
	}
	for _, term := range parsed.excluded {
		merged = exclude(merged, s.lookup(term))
	}
	return merged
}

// lookup fetches the frequency-map copy for one term from the index its
// kind selects. Unknown terms yield an empty map, which the intersection
// then propagates as "no matches".
func (s *Service) lookup(term queryTerm) index.FrequencyMap {
	switch term.kind {
	case kindPerson:
		return s.persons.Frequencies(term.key)
	case kindOrganization:
		return s.organizations.Frequencies(term.key)
	default:
		return s.words.Frequencies(term.key)
	}
}

// intersect returns the AND of two frequency maps: only documents present
// in both survive, each with the sum of its two frequencies. Neither input
// is modified.
func intersect(a, b index.FrequencyMap) index.FrequencyMap {
	out := make(index.FrequencyMap)
	for docID, freq := range a {
		if other, ok := b[docID]; ok {
			out[docID] = freq + other
		}
	}
	return out
}

// exclude returns result minus every document keyed in excluded, regardless
// of the frequency recorded there. Neither input is modified.
func exclude(result, excluded index.FrequencyMap) index.FrequencyMap {
	out := make(index.FrequencyMap, len(result))
	for docID, freq := range result {
		if _, banned := excluded[docID]; !banned {
			out[docID] = freq
		}
	}
	return out
}

// rank orders the merged documents by frequency descending, breaking ties
// by ascending document ID so equal-frequency results are stable.
func rank(merged index.FrequencyMap) []DocumentScore {
	ranked := make([]DocumentScore, 0, len(merged))
	for docID, freq := range merged {
		ranked = append(ranked, DocumentScore{DocumentID: docID, Frequency: freq})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Frequency != ranked[j].Frequency {
			return ranked[i].Frequency > ranked[j].Frequency
		}
		return ranked[i].DocumentID < ranked[j].DocumentID
	})
	return ranked
}
