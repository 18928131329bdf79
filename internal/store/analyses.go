package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/medialens/medialens/pkg/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// UpsertAnalysis writes an analysis report, replacing any previous report
// for the same (source, day). Failed reports must not reach this method.
func (s *Store) UpsertAnalysis(ctx context.Context, r models.AnalysisReport) error {
	if r.Failed() {
		return fmt.Errorf("store: refusing to persist failed analysis for %s", r.Source)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analyses (
			id, source_id, analysis_date, numbers_of_articles,
			main_narrative_theme_1, main_narrative_coverage_1, main_narrative_examples_1,
			main_narrative_theme_2, main_narrative_coverage_2, main_narrative_examples_2,
			main_narrative_theme_3, main_narrative_coverage_3, main_narrative_examples_3,
			main_narrative_theme_4, main_narrative_coverage_4, main_narrative_examples_4,
			main_narrative_theme_5, main_narrative_coverage_5, main_narrative_examples_5,
			main_narrative_confidence,
			sentiment_positive_percentage, sentiment_negative_percentage,
			sentiment_neutral_percentage, sentiment_confidence,
			bias_political_score, bias_political_leaning,
			bias_supporting_evidence, bias_confidence,
			values_promoted_value_1, values_promoted_examples_1,
			values_promoted_value_2, values_promoted_examples_2,
			values_promoted_value_3, values_promoted_examples_3,
			values_promoted_confidence
		) VALUES (?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourceID, r.AnalysisDate, r.NumArticles,
		r.Narratives[0].Theme, r.Narratives[0].Coverage, r.Narratives[0].Examples,
		r.Narratives[1].Theme, r.Narratives[1].Coverage, r.Narratives[1].Examples,
		r.Narratives[2].Theme, r.Narratives[2].Coverage, r.Narratives[2].Examples,
		r.Narratives[3].Theme, r.Narratives[3].Coverage, r.Narratives[3].Examples,
		r.Narratives[4].Theme, r.Narratives[4].Coverage, r.Narratives[4].Examples,
		r.NarrativeConfidence,
		r.SentimentPositive, r.SentimentNegative,
		r.SentimentNeutral, r.SentimentConfidence,
		r.BiasScore, r.BiasLeaning,
		r.BiasEvidence, r.BiasConfidence,
		r.Values[0].Value, r.Values[0].Examples,
		r.Values[1].Value, r.Values[1].Examples,
		r.Values[2].Value, r.Values[2].Examples,
		r.ValuesConfidence)
	if err != nil {
		return fmt.Errorf("store: upsert analysis %s/%s: %w", r.Source, r.AnalysisDate, err)
	}
	return nil
}

const analysisSelect = `
	SELECT s.name, a.id, a.source_id, a.analysis_date, a.numbers_of_articles,
		a.main_narrative_theme_1, a.main_narrative_coverage_1, a.main_narrative_examples_1,
		a.main_narrative_theme_2, a.main_narrative_coverage_2, a.main_narrative_examples_2,
		a.main_narrative_theme_3, a.main_narrative_coverage_3, a.main_narrative_examples_3,
		a.main_narrative_theme_4, a.main_narrative_coverage_4, a.main_narrative_examples_4,
		a.main_narrative_theme_5, a.main_narrative_coverage_5, a.main_narrative_examples_5,
		a.main_narrative_confidence,
		a.sentiment_positive_percentage, a.sentiment_negative_percentage,
		a.sentiment_neutral_percentage, a.sentiment_confidence,
		a.bias_political_score, a.bias_political_leaning,
		a.bias_supporting_evidence, a.bias_confidence,
		a.values_promoted_value_1, a.values_promoted_examples_1,
		a.values_promoted_value_2, a.values_promoted_examples_2,
		a.values_promoted_value_3, a.values_promoted_examples_3,
		a.values_promoted_confidence
	FROM analyses a
	JOIN sources s ON s.source_id = a.source_id`

func scanAnalysis(row rowScanner) (*models.AnalysisReport, error) {
	var r models.AnalysisReport
	err := row.Scan(
		&r.Source, &r.ID, &r.SourceID, &r.AnalysisDate, &r.NumArticles,
		&r.Narratives[0].Theme, &r.Narratives[0].Coverage, &r.Narratives[0].Examples,
		&r.Narratives[1].Theme, &r.Narratives[1].Coverage, &r.Narratives[1].Examples,
		&r.Narratives[2].Theme, &r.Narratives[2].Coverage, &r.Narratives[2].Examples,
		&r.Narratives[3].Theme, &r.Narratives[3].Coverage, &r.Narratives[3].Examples,
		&r.Narratives[4].Theme, &r.Narratives[4].Coverage, &r.Narratives[4].Examples,
		&r.NarrativeConfidence,
		&r.SentimentPositive, &r.SentimentNegative,
		&r.SentimentNeutral, &r.SentimentConfidence,
		&r.BiasScore, &r.BiasLeaning,
		&r.BiasEvidence, &r.BiasConfidence,
		&r.Values[0].Value, &r.Values[0].Examples,
		&r.Values[1].Value, &r.Values[1].Examples,
		&r.Values[2].Value, &r.Values[2].Examples,
		&r.ValuesConfidence)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetAnalysis loads the report for a publisher slug and UTC day.
func (s *Store) GetAnalysis(ctx context.Context, source, day string) (*models.AnalysisReport, error) {
	row := s.db.QueryRowContext(ctx,
		analysisSelect+" WHERE s.name = ? AND a.analysis_date = ?", source, day)
	r, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get analysis %s/%s: %w", source, day, err)
	}
	return r, nil
}

// AnalysesByDay loads every publisher's report for a UTC day, ordered by
// source name.
func (s *Store) AnalysesByDay(ctx context.Context, day string) ([]models.AnalysisReport, error) {
	rows, err := s.db.QueryContext(ctx,
		analysisSelect+" WHERE a.analysis_date = ? ORDER BY s.name", day)
	if err != nil {
		return nil, fmt.Errorf("store: analyses for %s: %w", day, err)
	}
	defer rows.Close()

	var reports []models.AnalysisReport
	for rows.Next() {
		r, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("store: analyses for %s: %w", day, err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: analyses for %s: %w", day, err)
	}
	return reports, nil
}

// CountAnalyses returns the number of stored analysis reports.
func (s *Store) CountAnalyses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count analyses: %w", err)
	}
	return n, nil
}
