package index

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Text serialization of a TermIndex. Each term becomes one line:
//
//	<term>:(<docID>,<freq>)(<docID>,<freq>)...
//
// Terms are written in ascending order and document IDs are sorted within a
// line, so the output is deterministic for a given set of triples. Reading
// re-inserts every triple through the normal balanced-insert path, so the
// reconstructed tree may differ in shape but always holds the identical
// triple set. The format defines no escaping: ':', '(', ')' and ',' must not
// occur inside terms or document IDs.

// maxLineBytes bounds a single serialized term line. Very common terms can
// carry thousands of document pairs on one line.
const maxLineBytes = 16 * 1024 * 1024

// WriteText serializes the index to w in the flat text format.
func (t *TermIndex) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	var writeErr error
	t.Ascend(func(term string, docs FrequencyMap) bool {
		docIDs := make([]string, 0, len(docs))
		for docID := range docs {
			docIDs = append(docIDs, docID)
		}
		sort.Strings(docIDs)

		if _, err := bw.WriteString(term); err != nil {
			writeErr = err
			return false
		}
		if err := bw.WriteByte(':'); err != nil {
			writeErr = err
			return false
		}
		for _, docID := range docIDs {
			if _, err := fmt.Fprintf(bw, "(%s,%d)", docID, docs[docID]); err != nil {
				writeErr = err
				return false
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return fmt.Errorf("failed to write index data: %w", writeErr)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush index data: %w", err)
	}
	return nil
}

// ReadText parses the flat text format from r and inserts every recovered
// (term, docID, freq) triple into the index. Malformed lines are skipped
// with a diagnostic and parsing continues, so a partially corrupted file
// still yields every intact entry.
func (t *TermIndex) ReadText(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		sep := strings.IndexByte(line, ':')
		if sep < 0 {
			slog.Warn("Skipping malformed index line: missing ':' separator", "line", lineNo)
			continue
		}
		term := line[:sep]
		rest := line[sep+1:]

		for {
			open := strings.IndexByte(rest, '(')
			if open < 0 {
				break // no more pairs on this line
			}
			seg := rest[open+1:]

			comma := strings.IndexByte(seg, ',')
			if comma < 0 {
				slog.Warn("Skipping malformed index line: missing ',' in pair", "line", lineNo, "term", term)
				break
			}
			closing := strings.IndexByte(seg[comma+1:], ')')
			if closing < 0 {
				slog.Warn("Skipping malformed index line: missing ')' in pair", "line", lineNo, "term", term)
				break
			}

			docID := seg[:comma]
			freqStr := seg[comma+1 : comma+1+closing]
			rest = seg[comma+1+closing+1:]

			freq, err := strconv.Atoi(strings.TrimSpace(freqStr))
			if err != nil {
				slog.Warn("Skipping index pair with invalid frequency", "line", lineNo, "term", term, "doc_id", docID, "frequency", freqStr)
				continue
			}
			t.Insert(term, docID, freq)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read index data: %w", err)
	}
	return nil
}

// Save writes the index to path atomically: the data goes to a temporary
// file in the same directory which is renamed over path only after a clean
// write, so a failed save never leaves a partially written index behind.
func (t *TermIndex) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := t.WriteText(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to serialize index to %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Load reads the file at path into the index through ReadText. If the file
// does not exist it returns os.ErrNotExist so callers can treat a fresh
// start gracefully; on any open failure the index is left untouched.
func (t *TermIndex) Load(path string) error {
	file, err := os.Open(path) // #nosec G304 -- path is controlled by application, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return os.ErrNotExist
		}
		return fmt.Errorf("failed to open index file %s: %w", path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("Failed to close index file", "path", path, "error", closeErr)
		}
	}()

	if err := t.ReadText(file); err != nil {
		return fmt.Errorf("failed to parse index file %s: %w", path, err)
	}
	return nil
}
