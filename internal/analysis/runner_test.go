package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/medialens/medialens/internal/llm"
	"github.com/medialens/medialens/internal/store"
	"github.com/medialens/medialens/pkg/models"
)

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

func seedArticles(t *testing.T, s *store.Store, source, day string, n int) {
	t.Helper()
	ctx := context.Background()
	id, err := s.LookupOrCreateSource(ctx, source)
	if err != nil {
		t.Fatalf("LookupOrCreateSource: %v", err)
	}
	for i := 0; i < n; i++ {
		a := models.Article{
			ID:              source + string(rune('a'+i)),
			SourceID:        id,
			Source:          source,
			Title:           "T",
			Description:     "D",
			CleanContent:    "T. D.",
			PublicationDate: day + " 10:00:00",
		}
		if _, err := s.InsertArticle(ctx, a); err != nil {
			t.Fatalf("InsertArticle: %v", err)
		}
	}
}

func newTestRunner(t *testing.T, s *store.Store, client llm.Client) *Runner {
	t.Helper()
	r := NewRunner(s, fastEngine(client), discardLogger())
	r.sleep = func(context.Context, time.Duration) error { return nil }
	r.now = func() time.Time {
		return time.Date(2025, 3, 2, 6, 0, 0, 0, time.UTC)
	}
	return r
}

func TestRunnerPersistsReports(t *testing.T) {
	s := newTestStore(t)
	seedArticles(t, s, "bbc", "2025-03-01", 2)
	seedArticles(t, s, "nbc", "2025-03-01", 1)

	r := newTestRunner(t, s, &scriptedClient{})
	saved, err := r.Run(context.Background(), TargetPreviousDay)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	got, err := s.GetAnalysis(context.Background(), "bbc", "2025-03-01")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got.NumArticles != 2 {
		t.Errorf("NumArticles = %d", got.NumArticles)
	}
	if got.ID == "" {
		t.Error("report id not assigned")
	}
}

// failingFor fails every Chat call for one source's content marker.
type failingClient struct {
	scriptedClient
	failSource string
}

func (c *failingClient) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	// The source name appears in the prompt's persona line.
	if len(messages) > 0 && strings.Contains(messages[0].Content, c.failSource+" articles from") {
		return nil, errors.New("model rejects this source")
	}
	return c.scriptedClient.Chat(ctx, messages, opts)
}

func TestRunnerIsolatesFailedSources(t *testing.T) {
	s := newTestStore(t)
	seedArticles(t, s, "bbc", "2025-03-01", 1)
	seedArticles(t, s, "nbc", "2025-03-01", 1)

	r := newTestRunner(t, s, &failingClient{failSource: "bbc"})
	saved, err := r.Run(context.Background(), TargetPreviousDay)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want only the healthy source", saved)
	}
	if _, err := s.GetAnalysis(context.Background(), "bbc", "2025-03-01"); !errors.Is(err, store.ErrNotFound) {
		t.Error("failed source's report was persisted")
	}
	if _, err := s.GetAnalysis(context.Background(), "nbc", "2025-03-01"); err != nil {
		t.Errorf("healthy source missing: %v", err)
	}
}

func TestRunnerNoArticlesForDay(t *testing.T) {
	s := newTestStore(t)
	r := newTestRunner(t, s, &scriptedClient{})
	saved, err := r.Run(context.Background(), TargetPreviousDay)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if saved != 0 {
		t.Errorf("saved = %d, want 0", saved)
	}
}

func TestRunnerReplacesPreviousReport(t *testing.T) {
	s := newTestStore(t)
	seedArticles(t, s, "bbc", "2025-03-01", 1)

	r := newTestRunner(t, s, &scriptedClient{})
	if _, err := r.Run(context.Background(), TargetPreviousDay); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := r.Run(context.Background(), TargetPreviousDay); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	n, err := s.CountAnalyses(context.Background())
	if err != nil || n != 1 {
		t.Errorf("CountAnalyses = %d, %v, want one row per source and day", n, err)
	}
}
