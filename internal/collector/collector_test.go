package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/medialens/medialens/internal/feed"
	"github.com/medialens/medialens/internal/store"
	"github.com/medialens/medialens/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), discardLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return s
}

func registerSource(t *testing.T, s *store.Store, slug string) {
	t.Helper()
	err := s.SaveMediaSource(context.Background(), models.MediaSource{
		Name:    slug,
		Slug:    slug,
		Country: "Testland",
	})
	if err != nil {
		t.Fatalf("SaveMediaSource(%s): %v", slug, err)
	}
}

// fakeParser returns canned articles without any network access.
type fakeParser struct {
	name     string
	articles []models.Article
	err      error
}

func (f *fakeParser) Name() string                  { return f.name }
func (f *fakeParser) Run(ctx context.Context) error { return f.err }
func (f *fakeParser) Articles() []models.Article    { return f.articles }

func withFakes(c *Collector, fakes map[string]*fakeParser) {
	c.newParser = func(name string, cfg feed.Config, log *slog.Logger) parserRunner {
		if p, ok := fakes[name]; ok {
			return p
		}
		return &fakeParser{name: name}
	}
}

func TestCleanArticle(t *testing.T) {
	cleaned, stats := CleanArticle("Ukraine &amp; Russia", "<p>Talks   resume  today.</p>")
	if cleaned != "Ukraine & Russia. Talks resume today." {
		t.Errorf("cleaned = %q", cleaned)
	}
	if stats.HTMLEntities != 1 {
		t.Errorf("HTMLEntities = %d", stats.HTMLEntities)
	}
	if stats.HTMLTags != 1 {
		t.Errorf("HTMLTags = %d", stats.HTMLTags)
	}
}

func TestCleanArticlePlainText(t *testing.T) {
	cleaned, stats := CleanArticle("Simple Title", "No markup here.")
	if cleaned != "Simple Title. No markup here." {
		t.Errorf("cleaned = %q", cleaned)
	}
	if stats.HTMLTags != 0 || stats.HTMLEntities != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	in := []models.Article{
		{Title: "A", Description: "x", Link: "first"},
		{Title: "A", Description: "x", Link: "second"},
		{Title: "B", Description: "y"},
	}
	out := dedupe(in)
	if len(out) != 2 {
		t.Fatalf("got %d articles, want 2", len(out))
	}
	if out[0].Link != "first" {
		t.Errorf("kept %q, want the first occurrence", out[0].Link)
	}
}

func TestCollectStoresArticles(t *testing.T) {
	s := newTestStore(t)
	registerSource(t, s, "bbc")
	c := New(s, discardLogger())
	withFakes(c, map[string]*fakeParser{
		"bbc": {name: "bbc", articles: []models.Article{
			{
				Source:          "bbc",
				Title:           "Vote &amp; Count",
				Description:     "<b>Results</b> due.",
				Link:            "https://example.com/vote",
				PublicationDate: "2025-03-01 10:00:00",
				FeedURL:         "https://bbc.example/rss",
			},
			{
				Source:          "bbc",
				Title:           "Vote &amp; Count",
				Description:     "<b>Results</b> due.",
				Link:            "https://example.com/vote-dup",
				PublicationDate: "2025-03-01 10:00:00",
			},
		}},
	})

	saved, err := c.Collect(context.Background(), []SourceSpec{
		{Name: "bbc", Feeds: map[string]string{"world": "https://bbc.example/rss"}},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if saved["bbc"] != 1 {
		t.Errorf("saved = %v, want 1 after dedup", saved)
	}

	grouped, err := s.ArticlesByDay(context.Background(), "2025-03-01")
	if err != nil {
		t.Fatalf("ArticlesByDay: %v", err)
	}
	got := grouped["bbc"]
	if len(got) != 1 {
		t.Fatalf("stored %d articles, want 1", len(got))
	}
	if got[0].CleanContent != "Vote & Count. Results due." {
		t.Errorf("CleanContent = %q", got[0].CleanContent)
	}
	if got[0].ID != ArticleID("Vote &amp; Count", "<b>Results</b> due.") {
		t.Errorf("ID = %q, not the content digest", got[0].ID)
	}
	if len(got[0].Categories) != 1 || got[0].Categories[0] != "world" {
		t.Errorf("Categories = %v, want feed-name fallback", got[0].Categories)
	}
}

func TestCollectSkipsUnregisteredSources(t *testing.T) {
	s := newTestStore(t)
	c := New(s, discardLogger())
	withFakes(c, map[string]*fakeParser{
		"ghost": {name: "ghost", articles: []models.Article{
			{Source: "ghost", Title: "T", Description: "D", PublicationDate: "2025-03-01 10:00:00"},
		}},
	})

	saved, err := c.Collect(context.Background(), []SourceSpec{
		{Name: "ghost", Feeds: map[string]string{"main": "https://ghost.example/rss"}},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if _, ok := saved["ghost"]; ok {
		t.Error("unregistered source was collected")
	}
	n, _ := s.CountArticles(context.Background(), "")
	if n != 0 {
		t.Errorf("articles stored for unregistered source: %d", n)
	}
}

func TestCollectIsolatesSourceFailures(t *testing.T) {
	s := newTestStore(t)
	registerSource(t, s, "bbc")
	registerSource(t, s, "nbc")
	c := New(s, discardLogger())
	withFakes(c, map[string]*fakeParser{
		"bbc": {name: "bbc", err: errors.New("feeds unreachable")},
		"nbc": {name: "nbc", articles: []models.Article{
			{Source: "nbc", Title: "T", Description: "D", PublicationDate: "2025-03-01 10:00:00"},
		}},
	})

	saved, err := c.Collect(context.Background(), []SourceSpec{
		{Name: "bbc", Feeds: map[string]string{"world": "u1"}},
		{Name: "nbc", Feeds: map[string]string{"news": "u2"}},
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if _, ok := saved["bbc"]; ok {
		t.Error("failed source reported as saved")
	}
	if saved["nbc"] != 1 {
		t.Errorf("healthy source saved = %d, want 1", saved["nbc"])
	}
}

func TestCollectRecollectionIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	registerSource(t, s, "bbc")
	c := New(s, discardLogger())
	fakes := map[string]*fakeParser{
		"bbc": {name: "bbc", articles: []models.Article{
			{Source: "bbc", Title: "Same Story", Description: "Same text.", PublicationDate: "2025-03-01 10:00:00"},
		}},
	}
	withFakes(c, fakes)
	specs := []SourceSpec{{Name: "bbc", Feeds: map[string]string{"world": "u"}}}

	if _, err := c.Collect(context.Background(), specs); err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	saved, err := c.Collect(context.Background(), specs)
	if err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if saved["bbc"] != 0 {
		t.Errorf("re-collection saved %d, want 0", saved["bbc"])
	}
	n, _ := s.CountArticles(context.Background(), "")
	if n != 1 {
		t.Errorf("CountArticles = %d, want 1", n)
	}
}
