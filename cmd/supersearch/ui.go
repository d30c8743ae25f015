package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ATKuehn/supersearch/config"
	"github.com/ATKuehn/supersearch/internal/engine"
	"github.com/ATKuehn/supersearch/services"
)

// Results are revealed a few at a time, as the original menu did.
const uiPageSize = 5

// ui drives the interactive menu over an engine. Input and output are
// injectable streams.
type ui struct {
	eng *engine.Engine
	in  *bufio.Scanner
	out io.Writer
}

func runUI(cfg *config.Config) error {
	eng, err := engine.New(cfg, nil)
	if err != nil {
		return err
	}
	defer closeEngine(eng)

	u := &ui{
		eng: eng,
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
	}
	return u.loop()
}

func (u *ui) loop() error {
	for {
		fmt.Fprintln(u.out)
		fmt.Fprintln(u.out, "SuperSearch")
		fmt.Fprintln(u.out, "  i - index a directory of articles")
		fmt.Fprintln(u.out, "  q - search")
		fmt.Fprintln(u.out, "  w - write index snapshots")
		fmt.Fprintln(u.out, "  r - read index snapshots")
		fmt.Fprintln(u.out, "  e - exit")

		choice, ok := u.prompt("> ")
		if !ok {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "i":
			u.indexDirectory()
		case "q":
			u.querySession()
		case "w":
			if err := u.eng.SaveIndexes(); err != nil {
				fmt.Fprintf(u.out, "Could not write snapshots: %v\n", err)
				continue
			}
			fmt.Fprintln(u.out, "Index snapshots written.")
		case "r":
			if err := u.eng.LoadIndexes(); err != nil {
				fmt.Fprintf(u.out, "Could not read snapshots: %v\n", err)
				continue
			}
			fmt.Fprintln(u.out, "Index snapshots loaded.")
			printStatsTo(u.out, u.eng.Stats())
		case "e":
			return nil
		default:
			fmt.Fprintln(u.out, "Unknown option.")
		}
	}
}

func (u *ui) indexDirectory() {
	dir, ok := u.prompt("Directory to index: ")
	if !ok || strings.TrimSpace(dir) == "" {
		return
	}

	stats, err := u.eng.IndexDirectory(context.Background(), strings.TrimSpace(dir))
	if err != nil {
		fmt.Fprintf(u.out, "Indexing failed: %v\n", err)
		return
	}
	fmt.Fprintf(u.out, "Indexed %d files (%d failed) in %d ms\n",
		stats.FilesIndexed, stats.FilesFailed, stats.Took)
	printStatsTo(u.out, u.eng.Stats())
}

// querySession runs one search and its result sub-menu: page further
// results, inspect a document, start a new search, or go back.
func (u *ui) querySession() {
	query, ok := u.prompt("Search: ")
	if !ok {
		return
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	var shown []services.HitResult
	page := 0
	total := 0

	// fetchNext pulls the next result page and renders it. It reports
	// whether the session should continue.
	fetchNext := func() bool {
		page++
		result, err := u.eng.Search(services.SearchQuery{
			QueryString: query,
			Page:        page,
			PageSize:    uiPageSize,
		})
		if err != nil {
			fmt.Fprintf(u.out, "Search failed: %v\n", err)
			return false
		}
		if page == 1 {
			total = result.Total
			if total == 0 {
				fmt.Fprintln(u.out, "No documents match the search criteria.")
				return false
			}
			fmt.Fprintf(u.out, "%d matching documents (%d ms)\n", result.Total, result.Took)
		}
		if len(result.Hits) == 0 {
			fmt.Fprintln(u.out, "No more matching documents.")
			return true
		}
		printHits(u.out, result.Hits, len(shown)+1)
		shown = append(shown, result.Hits...)
		return true
	}

	if !fetchNext() {
		return
	}

	for {
		fmt.Fprintln(u.out, "  n - more results")
		fmt.Fprintln(u.out, "  d - show a document")
		fmt.Fprintln(u.out, "  q - new search")
		fmt.Fprintln(u.out, "  e - back")

		choice, ok := u.prompt("> ")
		if !ok {
			return
		}
		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "n":
			if len(shown) < total {
				if !fetchNext() {
					return
				}
			} else {
				fmt.Fprintln(u.out, "No more matching documents.")
			}
		case "d":
			u.showDocument(shown)
		case "q":
			u.querySession()
			return
		case "e":
			return
		default:
			fmt.Fprintln(u.out, "Unknown option.")
		}
	}
}

// showDocument prints the stored article behind one of the listed results.
func (u *ui) showDocument(shown []services.HitResult) {
	raw, ok := u.prompt("Result number: ")
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > len(shown) {
		fmt.Fprintln(u.out, "No such result.")
		return
	}

	article, err := u.eng.Document(shown[n-1].DocumentID)
	if err != nil {
		fmt.Fprintf(u.out, "Document unavailable: %v\n", err)
		return
	}

	fmt.Fprintln(u.out)
	fmt.Fprintf(u.out, "Article Name: %s\n", article.Title)
	fmt.Fprintf(u.out, "Publication Date: %s\n", article.Published)
	if article.Author != "" {
		fmt.Fprintf(u.out, "Author: %s\n", article.Author)
	}
	fmt.Fprintln(u.out)
	fmt.Fprintln(u.out, article.Text)
}

func (u *ui) prompt(label string) (string, bool) {
	fmt.Fprint(u.out, label)
	if !u.in.Scan() {
		return "", false
	}
	return u.in.Text(), true
}

// printHits renders ranked hits with their article metadata, numbering
// them from startRank.
func printHits(w io.Writer, hits []services.HitResult, startRank int) {
	for i, hit := range hits {
		title := hit.Title
		if title == "" {
			title = hit.DocumentID
		}
		fmt.Fprintf(w, "%2d) Article Name: %s\n", startRank+i, title)
		fmt.Fprintf(w, "    Publication Date: %s\n", hit.Published)
		fmt.Fprintf(w, "    Matches: %d\n", hit.Frequency)
	}
}

func printStatsTo(w io.Writer, stats services.EngineStats) {
	fmt.Fprintf(w, "Indexes: %d words, %d persons, %d organizations, %d stored documents\n",
		stats.Words, stats.Persons, stats.Organizations, stats.Documents)
}
