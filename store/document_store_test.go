package store

import (
	"errors"
	"path/filepath"
	"testing"

	internalErrors "github.com/ATKuehn/supersearch/internal/errors"
	"github.com/ATKuehn/supersearch/model"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "documents.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleArticle(title string) *model.Article {
	return &model.Article{
		UUID:      "uuid-" + title,
		Title:     title,
		Author:    "Jane Reporter",
		Published: "2018-03-01T09:00:00.000+02:00",
		Text:      "Some article body mentioning markets and policy.",
		Thread:    model.Thread{SiteFull: "www.example-news.com"},
		Entities: model.Entities{
			Persons:       []model.Entity{{Name: "jane reporter", Sentiment: "none"}},
			Organizations: []model.Entity{{Name: "Reuters", Sentiment: "neutral"}},
		},
	}
}

func TestPutAndGet(t *testing.T) {
	s := newTestStore(t)

	want := sampleArticle("Markets rally")
	if err := s.Put("data/news_0001.json", want); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := s.Get("data/news_0001.json")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != want.Title || got.Published != want.Published || got.Text != want.Text {
		t.Errorf("Get() returned %+v, want %+v", got, want)
	}
	if len(got.Entities.Organizations) != 1 || got.Entities.Organizations[0].Name != "Reuters" {
		t.Errorf("Get() lost entity data: %+v", got.Entities)
	}
}

func TestGetMissingDocument(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("never/indexed.json")
	if !errors.Is(err, internalErrors.ErrDocumentNotFound) {
		t.Fatalf("Get() on a missing ID = %v, want ErrDocumentNotFound", err)
	}
}

func TestPutBatchAndCount(t *testing.T) {
	s := newTestStore(t)

	batch := map[string]*model.Article{
		"a.json": sampleArticle("First"),
		"b.json": sampleArticle("Second"),
		"c.json": sampleArticle("Third"),
	}
	if err := s.PutBatch(batch); err != nil {
		t.Fatalf("PutBatch() failed: %v", err)
	}

	if got := s.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	for docID := range batch {
		if !s.Has(docID) {
			t.Errorf("Has(%q) = false, want true", docID)
		}
	}
	if s.Has("d.json") {
		t.Error("Has() reported a document that was never stored")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("a.json", sampleArticle("Old title")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := s.Put("a.json", sampleArticle("New title")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, err := s.Get("a.json")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != "New title" {
		t.Errorf("Get() after overwrite returned title %q, want %q", got.Title, "New title")
	}
	if got := s.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("a.json", sampleArticle("Gone soon")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	if got := s.Count(); got != 0 {
		t.Errorf("Count() after Clear() = %d, want 0", got)
	}
	if s.Has("a.json") {
		t.Error("Has() reported a document after Clear()")
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Put("a.json", sampleArticle("Durable")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get("a.json")
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if got.Title != "Durable" {
		t.Errorf("Get() after reopen returned title %q, want %q", got.Title, "Durable")
	}
}
