package analysis

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/medialens/medialens/internal/store"
	"github.com/medialens/medialens/pkg/utils"
)

// TargetDay selects which UTC day an analysis run covers.
type TargetDay string

const (
	TargetPreviousDay TargetDay = "previous_day"
	TargetCurrentDay  TargetDay = "current_day"
)

// TargetDate resolves a strategy to a concrete UTC day. Unknown
// strategies get the previous-day default.
func TargetDate(strategy TargetDay, now time.Time) string {
	day := now.UTC()
	if strategy != TargetCurrentDay {
		day = day.AddDate(0, 0, -1)
	}
	return day.Format(utils.DBDateLayout)
}

// Runner drives a full analysis pass: it loads the target day's articles
// grouped by publisher, analyzes each publisher, and persists the
// successful reports.
type Runner struct {
	store  *store.Store
	engine *Engine
	log    *slog.Logger

	// InterSourceDelay is the pause between publishers, applied only
	// when another publisher follows.
	InterSourceDelay time.Duration

	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewRunner creates an analysis runner.
func NewRunner(st *store.Store, engine *Engine, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		store:            st,
		engine:           engine,
		log:              log.With("component", "analyzer"),
		InterSourceDelay: 120 * time.Second,
		sleep:            sleepCtx,
		now:              time.Now,
	}
}

// Run analyzes every publisher with articles on the strategy's target
// day. Publisher failures are isolated; their reports are logged and
// dropped, never stored. Returns the number of reports saved.
func (r *Runner) Run(ctx context.Context, strategy TargetDay) (int, error) {
	if !r.engine.VerifyKey(ctx) {
		// The key may still work for full calls; individual sources
		// fail on their own if it does not.
		r.log.Warn("proceeding despite failed key verification")
	}

	day := TargetDate(strategy, r.now())
	grouped, err := r.store.ArticlesByDay(ctx, day)
	if err != nil {
		return 0, err
	}
	if len(grouped) == 0 {
		r.log.Warn("no articles found for target day", "date", day)
		return 0, nil
	}

	sources := make([]string, 0, len(grouped))
	for name := range grouped {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	r.log.Info("starting analysis run", "date", day, "sources", len(sources))

	saved := 0
	for i, source := range sources {
		articles := grouped[source]
		contents := make([]string, 0, len(articles))
		for _, a := range articles {
			if a.CleanContent != "" {
				contents = append(contents, a.CleanContent)
			}
		}

		report := r.engine.AnalyzeSource(ctx, source, day, contents)
		if report.Failed() {
			r.log.Error("skipping failed source", "source", source, "err", report.Err)
		} else {
			report.ID = uuid.NewString()
			report.SourceID = articles[0].SourceID
			if err := r.store.UpsertAnalysis(ctx, report); err != nil {
				r.log.Error("saving analysis failed", "source", source, "err", err)
			} else {
				r.log.Info("analysis saved", "source", source, "date", day)
				saved++
			}
		}

		if i < len(sources)-1 && r.InterSourceDelay > 0 {
			r.log.Info("pausing before next source", "delay", r.InterSourceDelay)
			if err := r.sleep(ctx, r.InterSourceDelay); err != nil {
				return saved, err
			}
		}
	}
	r.log.Info("analysis run finished", "date", day, "saved", saved)
	return saved, nil
}
