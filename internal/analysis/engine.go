package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/medialens/medialens/internal/llm"
	"github.com/medialens/medialens/internal/retry"
	"github.com/medialens/medialens/pkg/models"
	"github.com/medialens/medialens/pkg/utils"
)

// Engine analyzes one publisher's articles at a time through the chat
// model.
type Engine struct {
	client      llm.Client
	log         *slog.Logger
	chunkSize   int
	chunkDelay  time.Duration
	temperature float64
	maxTokens   int

	sleep func(context.Context, time.Duration) error
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithChunkSize overrides the articles-per-call limit.
func WithChunkSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithChunkDelay sets the pause between chunk calls for the same source.
func WithChunkDelay(d time.Duration) EngineOption {
	return func(e *Engine) { e.chunkDelay = d }
}

// WithSampling overrides the temperature and completion budget used for
// analysis calls.
func WithSampling(temperature float64, maxTokens int) EngineOption {
	return func(e *Engine) {
		if temperature > 0 {
			e.temperature = temperature
		}
		if maxTokens > 0 {
			e.maxTokens = maxTokens
		}
	}
}

// NewEngine creates an analysis engine on top of a chat client.
func NewEngine(client llm.Client, log *slog.Logger, opts ...EngineOption) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		client:      client,
		log:         log.With("component", "analysis"),
		chunkSize:   DefaultChunkSize,
		chunkDelay:  120 * time.Second,
		temperature: 0.1,
		maxTokens:   1200,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoff binds a retry preset to the engine's sleeper so every pause,
// retry backoff included, runs through the same seam.
func (e *Engine) backoff(p retry.Policy) retry.Policy {
	p.Sleep = e.sleep
	return p
}

// VerifyKey checks that the model endpoint accepts our credentials with a
// minimal test call. Failure is reported, not fatal: the caller decides
// whether to proceed.
func (e *Engine) VerifyKey(ctx context.Context) bool {
	err := retry.Do(ctx, e.backoff(retry.KeyCheck), func(ctx context.Context) error {
		_, err := e.client.Chat(ctx, []llm.Message{
			llm.SystemMessage("Test: Return 'OK'"),
		}, &llm.ChatOptions{MaxTokens: 10})
		return err
	})
	if err != nil {
		e.log.Error("API key verification failed", "err", err)
		return false
	}
	return true
}

// AnalyzeSource runs the full analysis for one publisher's articles on
// the given UTC day ("2006-01-02"). The articles are sent in chunks; the
// whole source is retried as a unit on any chunk failure so a partially
// analyzed source never produces a half-built report. A failed source
// comes back as a report with Err set.
func (e *Engine) AnalyzeSource(ctx context.Context, source, day string, articles []string) models.AnalysisReport {
	failed := func(err error) models.AnalysisReport {
		return models.AnalysisReport{
			Source:       source,
			AnalysisDate: day,
			NumArticles:  len(articles),
			Err:          err.Error(),
		}
	}
	if len(articles) == 0 {
		return failed(fmt.Errorf("no articles to analyze"))
	}

	date, err := time.Parse(utils.DBDateLayout, day)
	if err != nil {
		return failed(fmt.Errorf("invalid analysis day %q: %w", day, err))
	}
	humanDate := utils.HumanDate(date)

	e.log.Info("starting analysis", "source", source, "articles", len(articles), "date", day)

	var report models.AnalysisReport
	err = retry.Do(ctx, e.backoff(retry.Analysis), func(ctx context.Context) error {
		var first *models.AnalysisReport
		for i := 0; i < len(articles); i += e.chunkSize {
			end := min(i+e.chunkSize, len(articles))
			prompt := BuildPrompt(source, humanDate, articles[i:end])

			resp, err := e.client.Chat(ctx, []llm.Message{llm.SystemMessage(prompt)},
				&llm.ChatOptions{Temperature: e.temperature, MaxTokens: e.maxTokens})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i/e.chunkSize+1, err)
			}

			parsed := ParseReport(resp.Content, e.log)
			if first == nil {
				first = &parsed
			}
			// Pause only when another chunk for this source follows.
			if end < len(articles) {
				e.log.Info("chunk analyzed, pausing", "source", source,
					"chunk", i/e.chunkSize+1, "delay", e.chunkDelay)
				if err := e.sleep(ctx, e.chunkDelay); err != nil {
					return err
				}
			}
		}
		report = *first
		return nil
	})
	if err != nil {
		e.log.Error("analysis failed", "source", source, "err", err)
		return failed(err)
	}

	report.Source = source
	report.AnalysisDate = day
	report.NumArticles = len(articles)
	e.log.Info("analysis complete", "source", source, "articles", len(articles), "date", humanDate)
	return report
}
