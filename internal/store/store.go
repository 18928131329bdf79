// Package store persists articles, analysis reports, and the media-source
// registry in SQLite. One writer at a time is assumed; the busy timeout
// covers the collector and analyzer overlapping on the same file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database used by the pipeline.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// pragmas tune the connection for a long-lived single-process workload.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
	"PRAGMA cache_size=-64000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=60000",
	"PRAGMA auto_vacuum=INCREMENTAL",
}

// Open opens (or creates) the database at path and applies the tuning
// pragmas. Use ":memory:" for an ephemeral database in tests.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// modernc's driver serializes per-connection; a single connection
	// avoids table-lock races between pool members.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	return &Store{db: db, log: log.With("component", "store")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// InitSchema creates all tables and indexes if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			source_id  INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id               TEXT PRIMARY KEY,
			source_id        INTEGER NOT NULL,
			raw_title        TEXT,
			raw_description  TEXT,
			clean_content    TEXT,
			categories       TEXT,
			link             TEXT,
			created_at       TEXT DEFAULT CURRENT_TIMESTAMP,
			publication_date TEXT NOT NULL,
			FOREIGN KEY (source_id) REFERENCES sources(source_id) ON DELETE RESTRICT
		)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id                             TEXT PRIMARY KEY,
			source_id                      INTEGER NOT NULL,
			analysis_date                  TEXT NOT NULL,
			numbers_of_articles            INTEGER NOT NULL,
			main_narrative_theme_1         TEXT DEFAULT NULL,
			main_narrative_coverage_1      REAL DEFAULT 0.0,
			main_narrative_examples_1      TEXT DEFAULT NULL,
			main_narrative_theme_2         TEXT DEFAULT NULL,
			main_narrative_coverage_2      REAL DEFAULT 0.0,
			main_narrative_examples_2      TEXT DEFAULT NULL,
			main_narrative_theme_3         TEXT DEFAULT NULL,
			main_narrative_coverage_3      REAL DEFAULT 0.0,
			main_narrative_examples_3      TEXT DEFAULT NULL,
			main_narrative_theme_4         TEXT DEFAULT NULL,
			main_narrative_coverage_4      REAL DEFAULT 0.0,
			main_narrative_examples_4      TEXT DEFAULT NULL,
			main_narrative_theme_5         TEXT DEFAULT NULL,
			main_narrative_coverage_5      REAL DEFAULT 0.0,
			main_narrative_examples_5      TEXT DEFAULT NULL,
			main_narrative_confidence      REAL DEFAULT 0.0,
			sentiment_positive_percentage  REAL DEFAULT 0.0,
			sentiment_negative_percentage  REAL DEFAULT 0.0,
			sentiment_neutral_percentage   REAL DEFAULT 0.0,
			sentiment_confidence           REAL DEFAULT 0.0,
			bias_political_score           REAL DEFAULT 0.0,
			bias_political_leaning         TEXT DEFAULT NULL,
			bias_supporting_evidence       TEXT DEFAULT NULL,
			bias_confidence                REAL DEFAULT 0.0,
			values_promoted_value_1        TEXT DEFAULT NULL,
			values_promoted_examples_1     TEXT DEFAULT NULL,
			values_promoted_value_2        TEXT DEFAULT NULL,
			values_promoted_examples_2     TEXT DEFAULT NULL,
			values_promoted_value_3        TEXT DEFAULT NULL,
			values_promoted_examples_3     TEXT DEFAULT NULL,
			values_promoted_confidence     REAL DEFAULT 0.0,
			created_at                     TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (source_id) REFERENCES sources(source_id) ON DELETE RESTRICT,
			UNIQUE (source_id, analysis_date)
		)`,
		`CREATE TABLE IF NOT EXISTS media_sources (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			name               TEXT UNIQUE NOT NULL,
			source_id          INTEGER NOT NULL,
			country            TEXT NOT NULL,
			flag_emoji         TEXT NOT NULL DEFAULT '',
			logo_url           TEXT NOT NULL DEFAULT '',
			founded_year       INTEGER,
			website            TEXT NOT NULL DEFAULT '',
			description        TEXT,
			owner              TEXT,
			ownership_category TEXT,
			last_updated       TEXT,
			ad_fontes_bias                        REAL,
			ad_fontes_reliability                 REAL,
			ad_fontes_rating_url                  TEXT,
			ad_fontes_date_rated                  TEXT,
			allsides_bias                         REAL,
			allsides_reliability                  REAL,
			allsides_rating_url                   TEXT,
			allsides_date_rated                   TEXT,
			media_bias_fact_check_bias            REAL,
			media_bias_fact_check_reliability     REAL,
			media_bias_fact_check_rating_url      TEXT,
			media_bias_fact_check_date_rated      TEXT,
			FOREIGN KEY (source_id) REFERENCES sources(source_id) ON DELETE RESTRICT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_source_id ON articles (source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_publication_date ON articles (publication_date)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_source_id ON analyses (source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_analysis_date ON analyses (analysis_date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	s.log.Info("database schema initialized")
	return nil
}

// Vacuum rebuilds the database file to reclaim space.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("store: vacuum: %w", err)
	}
	return nil
}

// Optimize runs the cheap maintenance pass: incremental vacuum, query
// planner statistics, and a WAL checkpoint.
func (s *Store) Optimize(ctx context.Context) error {
	for _, stmt := range []string{
		"PRAGMA incremental_vacuum",
		"PRAGMA optimize",
		"PRAGMA wal_checkpoint(FULL)",
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: optimize: %w", err)
		}
	}
	return nil
}
