// MediaLens — RSS news collection & AI media-bias analysis
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/medialens/medialens/internal/analysis"
	"github.com/medialens/medialens/internal/collector"
	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/llm"
	"github.com/medialens/medialens/internal/report"
	"github.com/medialens/medialens/internal/store"
	"github.com/medialens/medialens/pkg/models"
	"github.com/medialens/medialens/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config + logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "medialens",
	Short: "MediaLens — RSS news collection & AI media-bias analysis",
	Long: `MediaLens collects articles from news publishers' RSS feeds, stores
them in SQLite, and runs daily per-publisher media-bias analysis
through the DeepSeek chat API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = newLogger(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(statusCmd)
}

// newLogger builds the application logger from config.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openStore opens the database and ensures the schema exists.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MediaLens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Collect Command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect articles from the configured RSS feeds",
	Long: `Fetch every enabled publisher's RSS feeds, clean and deduplicate the
entries, and store new articles in the database. Publishers missing
from the media-source registry are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sources := cfg.Collection.EnabledSources()
		if only, _ := cmd.Flags().GetString("source"); only != "" {
			sources = filterSources(sources, only)
			if len(sources) == 0 {
				return fmt.Errorf("no enabled source named %q", only)
			}
		}

		specs := make([]collector.SourceSpec, 0, len(sources))
		for _, s := range sources {
			specs = append(specs, collector.SourceSpec{
				Name:          s.Name,
				Variant:       s.Variant,
				Feeds:         s.FeedMap(),
				MinDelay:      s.MinDelay(cfg.Collection),
				MaxDelay:      s.MaxDelay(cfg.Collection),
				LookbackHours: cfg.Collection.LookbackHours,
			})
		}

		fmt.Printf("🚀 Collecting from %d source(s)\n", len(specs))
		saved, err := collector.New(st, logger).Collect(ctx, specs)
		if err != nil {
			return err
		}

		total := 0
		for _, name := range sortedKeys(saved) {
			fmt.Printf("  ✅ %-15s %d new article(s)\n", name, saved[name])
			total += saved[name]
		}
		fmt.Printf("💾 Saved %d new article(s)\n", total)
		return nil
	},
}

func init() {
	collectCmd.Flags().String("source", "", "collect a single source by name")
}

func filterSources(sources []config.SourceConfig, name string) []config.SourceConfig {
	var out []config.SourceConfig
	for _, s := range sources {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run AI media-bias analysis on collected articles",
	Long: `Analyze the target day's articles per publisher through the DeepSeek
chat API and store one report per publisher per day. The target day is
yesterday unless configured (or overridden) otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		client, err := llm.NewDeepSeekClient(cfg.LLM.APIKey,
			llm.WithModel(cfg.LLM.Model),
			llm.WithBaseURL(cfg.LLM.BaseURL),
			llm.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second}),
			llm.WithRateLimit(cfg.LLM.RateLimit, cfg.LLM.RateBurst))
		if err != nil {
			return err
		}

		engine := analysis.NewEngine(client, logger,
			analysis.WithChunkSize(cfg.Analysis.ChunkSize),
			analysis.WithChunkDelay(time.Duration(cfg.Analysis.ChunkDelaySec)*time.Second),
			analysis.WithSampling(cfg.Analysis.Temperature, cfg.Analysis.MaxTokens))

		runner := analysis.NewRunner(st, engine, logger)
		runner.InterSourceDelay = time.Duration(cfg.Analysis.InterSourceDelaySec) * time.Second

		target := analysis.TargetDay(cfg.Analysis.TargetDay)
		if t, _ := cmd.Flags().GetString("target"); t != "" {
			target = analysis.TargetDay(t)
		}

		fmt.Printf("🚀 Analyzing articles for %s\n", analysis.TargetDate(target, time.Now().UTC()))
		saved, err := runner.Run(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("💾 Saved %d analysis report(s)\n", saved)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("target", "", "target day: previous_day or current_day")
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a day's analysis reports as a digest",
	Long: `Render the stored analysis reports for one day as an HTML page or
plain text. The day defaults to the configured analysis target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		day, _ := cmd.Flags().GetString("day")
		if day == "" {
			day = analysis.TargetDate(analysis.TargetDay(cfg.Analysis.TargetDay), time.Now().UTC())
		}
		if _, err := time.Parse(utils.DBDateLayout, day); err != nil {
			return fmt.Errorf("invalid --day %q, want YYYY-MM-DD", day)
		}

		reports, err := st.AnalysesByDay(ctx, day)
		if err != nil {
			return err
		}
		media, err := st.AllMediaSources(ctx)
		if err != nil {
			return err
		}
		bySlug := make(map[string]models.MediaSource, len(media))
		for _, m := range media {
			bySlug[m.Slug] = m
		}

		rcfg := report.Config{Format: report.FormatHTML}
		if f, _ := cmd.Flags().GetString("format"); f == "text" {
			rcfg.Format = report.FormatText
		}

		out, err := report.Generate(day, reports, bySlug, rcfg)
		if err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("output"); path != "" {
			if err := os.WriteFile(path, []byte(out), 0644); err != nil {
				return err
			}
			fmt.Printf("💾 Digest written to %s\n", path)
			return nil
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("day", "", "day to render (YYYY-MM-DD, default: analysis target day)")
	reportCmd.Flags().String("format", "html", "output format: html or text")
	reportCmd.Flags().String("output", "", "write to file instead of stdout")
}

// --- Sources Commands ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the media-source registry and configured feeds",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered media sources with their calculated bias",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		sources, err := st.AllMediaSources(ctx)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			fmt.Println("⚠️  No media sources registered. Run 'medialens db init' to seed them.")
			return nil
		}

		for _, m := range sources {
			bias := "unrated"
			if b := m.CalculatedBias(); b != nil {
				bias = fmt.Sprintf("%s (%.2f, confidence %.2f)", b.Label, b.Score, b.Confidence)
			}
			fmt.Printf("  %s %-20s %-12s %s\n", m.FlagEmoji, m.Name, m.Slug, bias)
		}
		return nil
	},
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every configured feed URL for reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		type probe struct {
			source, feed, url string
			err               error
		}

		var probes []probe
		for _, s := range cfg.Collection.EnabledSources() {
			for _, f := range s.Feeds {
				probes = append(probes, probe{source: s.Name, feed: f.Name, url: f.URL})
			}
		}
		if len(probes) == 0 {
			fmt.Println("⚠️  No enabled sources configured.")
			return nil
		}

		fmt.Printf("🔍 Probing %d feed(s)\n", len(probes))
		client := &http.Client{Timeout: 15 * time.Second}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i := range probes {
			p := &probes[i]
			g.Go(func() error {
				p.err = probeFeed(gctx, client, p.url)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		failed := 0
		for _, p := range probes {
			if p.err != nil {
				failed++
				fmt.Printf("  ❌ %s/%s: %v\n", p.source, p.feed, p.err)
			} else {
				fmt.Printf("  ✅ %s/%s\n", p.source, p.feed)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d feeds unreachable", failed, len(probes))
		}
		return nil
	},
}

// probeFeed issues a lightweight GET and reports non-2xx as an error.
func probeFeed(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range utils.RandomBrowserHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesCheckCmd)
}

// --- DB Commands ---

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema and seed the media-source registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Printf("🛠️  Schema ready at %s\n", cfg.Storage.Path)

		seedPath := cfg.Storage.MediaSeed
		if p, _ := cmd.Flags().GetString("seed"); p != "" {
			seedPath = p
		}
		seeds, err := store.LoadMediaSeed(seedPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Printf("⚠️  No media seed at %s, registry left as-is\n", seedPath)
				return nil
			}
			return err
		}
		n, err := st.SeedMediaSources(ctx, seeds)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Seeded %d media source(s)\n", n)
		return nil
	},
}

var dbVacuumCmd = &cobra.Command{
	Use:   "vacuum",
	Short: "Run a full VACUUM on the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Println("🧹 Vacuuming database")
		if err := st.Vacuum(ctx); err != nil {
			return err
		}
		fmt.Println("✅ Done")
		return nil
	},
}

var dbOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run incremental vacuum, optimize, and a WAL checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		fmt.Println("🧹 Optimizing database")
		if err := st.Optimize(ctx); err != nil {
			return err
		}
		fmt.Println("✅ Done")
		return nil
	},
}

func init() {
	dbInitCmd.Flags().String("seed", "", "media-sources seed file (default: storage.media_seed)")
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbVacuumCmd)
	dbCmd.AddCommand(dbOptimizeCmd)
}

// --- Status Command ---

// pingEndpoint checks the model endpoint's reachability for the status
// display.
func pingEndpoint(ctx context.Context) string {
	client, err := llm.NewDeepSeekClient(cfg.LLM.APIKey,
		llm.WithBaseURL(cfg.LLM.BaseURL),
		llm.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	if err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pctx); err != nil {
		return fmt.Sprintf("❌ %v", err)
	}
	return fmt.Sprintf("✅ %s reachable", cfg.LLM.BaseURL)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  MediaLens — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:   %s (%s)\n", version, commit)
		fmt.Printf("  Time:      %s UTC\n", time.Now().UTC().Format(utils.DBTimeLayout))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Database:      %s\n", cfg.Storage.Path)
		fmt.Printf("    Sources:       %d enabled / %d configured\n",
			len(cfg.Collection.EnabledSources()), len(cfg.Collection.Sources))
		fmt.Printf("    Lookback:      %dh\n", cfg.Collection.LookbackHours)
		fmt.Printf("    Model:         %s\n", cfg.LLM.Model)
		fmt.Printf("    Target Day:    %s\n", cfg.Analysis.TargetDay)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}
		if cfg.LLM.APIKey != "" {
			fmt.Printf("    %-20s %s\n", "Endpoint:", pingEndpoint(ctx))
		}
		fmt.Println()

		// Database counts
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		articles, err := st.CountArticles(ctx, "")
		if err != nil {
			return err
		}
		analyses, err := st.CountAnalyses(ctx)
		if err != nil {
			return err
		}
		media, err := st.AllMediaSources(ctx)
		if err != nil {
			return err
		}
		fmt.Println("  Database:")
		fmt.Printf("    Articles:      %d\n", articles)
		fmt.Printf("    Analyses:      %d\n", analyses)
		fmt.Printf("    Media Sources: %d\n", len(media))
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
