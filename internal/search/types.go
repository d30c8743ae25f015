package search

// tokenKind classifies a cleaned query token by the index it resolves
// against and whether it is required or excluded.
type tokenKind int

const (
	kindWord tokenKind = iota
	kindExcludedWord
	kindPerson
	kindOrganization
)

// queryTerm is one classified token with its final lookup key: stemmed for
// words, lower-cased for persons, verbatim for organizations.
type queryTerm struct {
	kind tokenKind
	key  string
}

// parsedQuery is the classified form of a raw query string. Term order is
// preserved from the query, though the merge result does not depend on it.
type parsedQuery struct {
	required []queryTerm
	excluded []queryTerm
}

// DocumentScore pairs a document with the summed occurrence count of the
// query's required terms in that document.
type DocumentScore struct {
	DocumentID string `json:"document_id"`
	Frequency  int    `json:"frequency"`
}

// Result holds one query's ranked documents together with the pagination
// cursor. A Result is built fresh per query; the cursor only moves forward.
type Result struct {
	QueryID string
	Took    int64 // milliseconds

	ranked []DocumentScore
	cursor int
}

// Total returns the number of matching documents.
func (r *Result) Total() int {
	return len(r.ranked)
}

// Next returns up to n entries starting at the cursor and advances the
// cursor past them. The boolean is false when the cursor was already at the
// end, which is the explicit no-more-matches condition; the cursor never
// rewinds.
func (r *Result) Next(n int) ([]DocumentScore, bool) {
	if r.cursor >= len(r.ranked) {
		return nil, false
	}
	end := r.cursor + n
	if n <= 0 {
		end = r.cursor
	} else if end > len(r.ranked) {
		end = len(r.ranked)
	}

	page := make([]DocumentScore, end-r.cursor)
	copy(page, r.ranked[r.cursor:end])
	r.cursor = end
	return page, true
}

// DocumentAt returns the ranked entry at position i. An out-of-range index
// yields a zero DocumentScore and false rather than a failure.
func (r *Result) DocumentAt(i int) (DocumentScore, bool) {
	if i < 0 || i >= len(r.ranked) {
		return DocumentScore{}, false
	}
	return r.ranked[i], true
}

// Slice returns up to limit entries starting at offset without touching the
// cursor. Out-of-range windows yield an empty slice.
func (r *Result) Slice(offset, limit int) []DocumentScore {
	if offset < 0 || limit <= 0 || offset >= len(r.ranked) {
		return []DocumentScore{}
	}
	end := offset + limit
	if end > len(r.ranked) {
		end = len(r.ranked)
	}
	out := make([]DocumentScore, end-offset)
	copy(out, r.ranked[offset:end])
	return out
}
