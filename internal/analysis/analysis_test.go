package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/medialens/medialens/internal/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleResponse = `numbers_of_articles=19
main_narrative_theme_1=Border security
main_narrative_coverage_1=25.0%
main_narrative_examples_1=Title A,Title B
main_narrative_theme_2=Energy prices
main_narrative_coverage_2=20.0
main_narrative_examples_2=Title C
main_narrative_confidence=0.9
sentiment_positive_percentage=30.0
sentiment_negative_percentage=50.0
sentiment_neutral_percentage=20.0
sentiment_confidence=0.85
bias_political_score=7.2
bias_political_leaning=Right
bias_supporting_evidence=Emphasis on enforcement
bias_confidence=0.88
values_promoted_value_1=Public Safety
values_promoted_examples_1=Title A
values_promoted_confidence=0.87`

func TestParseReport(t *testing.T) {
	r := ParseReport(sampleResponse, discardLogger())

	if r.NumArticles != 19 {
		t.Errorf("NumArticles = %d", r.NumArticles)
	}
	if r.Narratives[0].Theme == nil || *r.Narratives[0].Theme != "Border security" {
		t.Errorf("theme 1 = %v", r.Narratives[0].Theme)
	}
	if r.Narratives[0].Coverage != 25.0 {
		t.Errorf("coverage 1 = %v, want %% suffix stripped", r.Narratives[0].Coverage)
	}
	if r.Narratives[2].Theme != nil {
		t.Errorf("absent theme 3 should be nil, got %q", *r.Narratives[2].Theme)
	}
	if r.Narratives[2].Coverage != 0 {
		t.Errorf("absent coverage 3 = %v, want 0", r.Narratives[2].Coverage)
	}
	if r.BiasScore != 5.0 {
		t.Errorf("BiasScore = %v, want clamped to 5.0", r.BiasScore)
	}
	if r.BiasLeaning == nil || *r.BiasLeaning != "Right" {
		t.Errorf("BiasLeaning = %v", r.BiasLeaning)
	}
	if r.SentimentNegative != 50.0 {
		t.Errorf("SentimentNegative = %v", r.SentimentNegative)
	}
	if r.Values[0].Value == nil || *r.Values[0].Value != "Public Safety" {
		t.Errorf("value 1 = %v", r.Values[0].Value)
	}
	if r.Values[1].Value != nil {
		t.Errorf("absent value 2 should be nil")
	}
}

func TestParseReportToleratesGarbage(t *testing.T) {
	r := ParseReport("bias_political_score=not-a-number\nrandom noise line\nunknown_key=x\nmain_narrative_coverage_1=", discardLogger())
	if r.BiasScore != 0 {
		t.Errorf("BiasScore = %v, want 0 default", r.BiasScore)
	}
	if r.Narratives[0].Coverage != 0 {
		t.Errorf("empty coverage = %v, want 0", r.Narratives[0].Coverage)
	}
}

func TestParseReportNegativeClamp(t *testing.T) {
	r := ParseReport("bias_political_score=-9.3", discardLogger())
	if r.BiasScore != -5.0 {
		t.Errorf("BiasScore = %v, want clamped to -5.0", r.BiasScore)
	}
}

func TestBuildPrompt(t *testing.T) {
	long := strings.Repeat("x", 450)
	p := BuildPrompt("bbc", "March 1, 2025", []string{"First article.", long, ""})

	if !strings.Contains(p, "Article 1: First article....") {
		t.Error("first article missing or unnumbered")
	}
	if !strings.Contains(p, "Article 2: "+strings.Repeat("x", ArticleCharLimit)+"...") {
		t.Error("long article not truncated to the character limit")
	}
	if strings.Contains(p, strings.Repeat("x", ArticleCharLimit+1)) {
		t.Error("truncation exceeded the limit")
	}
	if strings.Contains(p, "Article 3") {
		t.Error("empty article should be skipped")
	}
	if !strings.Contains(p, "bbc articles from March 1, 2025") {
		t.Error("source and date not interpolated")
	}
	if !strings.Contains(p, "numbers_of_articles=[total]") {
		t.Error("output schema missing")
	}
	if !strings.Contains(p, "STRICT RULES:") || !strings.Contains(p, "FORMAT EXAMPLE:") {
		t.Error("rules or example section missing")
	}
}

func TestBuildPromptNoArticles(t *testing.T) {
	p := BuildPrompt("bbc", "March 1, 2025", nil)
	if !strings.Contains(p, "No articles found") {
		t.Error("empty input should produce the no-articles marker")
	}
}

// scriptedClient returns canned responses or errors per call.
type scriptedClient struct {
	calls     int
	responses []string
	errs      []error
	prompts   []string
}

func (c *scriptedClient) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	idx := c.calls
	c.calls++
	if len(messages) > 0 {
		c.prompts = append(c.prompts, messages[0].Content)
	}
	if idx < len(c.errs) && c.errs[idx] != nil {
		return nil, c.errs[idx]
	}
	resp := sampleResponse
	if idx < len(c.responses) {
		resp = c.responses[idx]
	}
	return &llm.Response{Content: resp, Model: "deepseek-chat"}, nil
}

func fastEngine(client llm.Client, opts ...EngineOption) *Engine {
	e := NewEngine(client, discardLogger(), opts...)
	e.sleep = func(context.Context, time.Duration) error { return nil }
	return e
}

func titles(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Article body %d", i)
	}
	return out
}

func TestAnalyzeSourceSingleChunk(t *testing.T) {
	client := &scriptedClient{}
	e := fastEngine(client)

	r := e.AnalyzeSource(context.Background(), "bbc", "2025-03-01", titles(3))
	if r.Failed() {
		t.Fatalf("unexpected failure: %s", r.Err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
	if r.Source != "bbc" || r.AnalysisDate != "2025-03-01" {
		t.Errorf("identity = %s/%s", r.Source, r.AnalysisDate)
	}
	if r.NumArticles != 3 {
		t.Errorf("NumArticles = %d, want the real count, not the model's claim", r.NumArticles)
	}
	if !strings.Contains(client.prompts[0], "March 1, 2025") {
		t.Error("prompt missing human-readable date")
	}
}

func TestAnalyzeSourceChunksLargeBatches(t *testing.T) {
	client := &scriptedClient{}
	slept := 0
	e := fastEngine(client, WithChunkSize(10))
	e.sleep = func(context.Context, time.Duration) error { slept++; return nil }

	r := e.AnalyzeSource(context.Background(), "bbc", "2025-03-01", titles(25))
	if r.Failed() {
		t.Fatalf("unexpected failure: %s", r.Err)
	}
	if client.calls != 3 {
		t.Errorf("calls = %d, want 3 chunks", client.calls)
	}
	if slept != 2 {
		t.Errorf("pauses = %d, want between chunks only", slept)
	}
	if r.NumArticles != 25 {
		t.Errorf("NumArticles = %d, want total across chunks", r.NumArticles)
	}
	// First chunk's analysis wins for the analytic fields.
	if r.Narratives[0].Theme == nil || *r.Narratives[0].Theme != "Border security" {
		t.Errorf("theme = %v", r.Narratives[0].Theme)
	}
}

func TestAnalyzeSourceRetriesWholeSource(t *testing.T) {
	client := &scriptedClient{errs: []error{nil, errors.New("boom")}}
	e := fastEngine(client, WithChunkSize(10))

	r := e.AnalyzeSource(context.Background(), "bbc", "2025-03-01", titles(15))
	if r.Failed() {
		t.Fatalf("unexpected failure: %s", r.Err)
	}
	// Attempt 1: chunk1 ok, chunk2 fails. Attempt 2: both chunks again.
	if client.calls != 4 {
		t.Errorf("calls = %d, want 4 (full-source retry)", client.calls)
	}
}

func TestAnalyzeSourceFailsAfterRetries(t *testing.T) {
	errAlways := errors.New("model down")
	client := &scriptedClient{errs: []error{errAlways, errAlways, errAlways, errAlways, errAlways}}
	e := fastEngine(client)
	var pauses []time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	start := time.Now()
	r := e.AnalyzeSource(context.Background(), "bbc", "2025-03-01", titles(2))
	if !r.Failed() {
		t.Fatal("expected failed report")
	}
	if r.NumArticles != 2 || r.AnalysisDate != "2025-03-01" {
		t.Errorf("failed report metadata = %+v", r)
	}
	if client.calls != 5 {
		t.Errorf("calls = %d, want 5 attempts", client.calls)
	}
	// The retry backoff (4s doubling to 32s) must run through the
	// engine's sleeper, not a real timer.
	want := []time.Duration{4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second}
	if len(pauses) != len(want) {
		t.Fatalf("pauses = %v, want %v", pauses, want)
	}
	for i, d := range want {
		if pauses[i] != d {
			t.Errorf("pause %d = %v, want %v", i+1, pauses[i], d)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("failure path took %v of wall time", elapsed)
	}
}

func TestAnalyzeSourceEmptyInput(t *testing.T) {
	e := fastEngine(&scriptedClient{})
	r := e.AnalyzeSource(context.Background(), "bbc", "2025-03-01", nil)
	if !r.Failed() {
		t.Error("empty input should fail, not fabricate a report")
	}
}

func TestTargetDate(t *testing.T) {
	now := time.Date(2025, 3, 2, 4, 30, 0, 0, time.UTC)
	if got := TargetDate(TargetPreviousDay, now); got != "2025-03-01" {
		t.Errorf("previous_day = %q", got)
	}
	if got := TargetDate(TargetCurrentDay, now); got != "2025-03-02" {
		t.Errorf("current_day = %q", got)
	}
	if got := TargetDate("bogus", now); got != "2025-03-01" {
		t.Errorf("unknown strategy = %q, want previous-day default", got)
	}
}
