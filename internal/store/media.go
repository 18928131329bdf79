package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/medialens/medialens/pkg/models"
)

// SaveMediaSource upserts a publisher's registry entry, creating its
// sources row when needed.
func (s *Store) SaveMediaSource(ctx context.Context, m models.MediaSource) error {
	sourceID, err := s.LookupOrCreateSource(ctx, m.Slug)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO media_sources (
			name, source_id, country, flag_emoji, logo_url, founded_year,
			website, description, owner, ownership_category, last_updated,
			ad_fontes_bias, ad_fontes_reliability,
			ad_fontes_rating_url, ad_fontes_date_rated,
			allsides_bias, allsides_reliability,
			allsides_rating_url, allsides_date_rated,
			media_bias_fact_check_bias, media_bias_fact_check_reliability,
			media_bias_fact_check_rating_url, media_bias_fact_check_date_rated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, sourceID, m.Country, m.FlagEmoji, m.LogoURL, nullableInt(m.FoundedYear),
		m.Website, m.Description, m.Owner, m.OwnershipCategory,
		time.Now().UTC().Format("2006-01-02 15:04:05"),
		m.AdFontes.Bias, m.AdFontes.Reliability,
		m.AdFontes.RatingURL, m.AdFontes.DateRated,
		m.AllSides.Bias, m.AllSides.Reliability,
		m.AllSides.RatingURL, m.AllSides.DateRated,
		m.MBFC.Bias, m.MBFC.Reliability,
		m.MBFC.RatingURL, m.MBFC.DateRated)
	if err != nil {
		return fmt.Errorf("store: save media source %q: %w", m.Name, err)
	}
	return nil
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

// SeedMediaSources writes every registry entry, returning the number saved.
func (s *Store) SeedMediaSources(ctx context.Context, sources []models.MediaSource) (int, error) {
	saved := 0
	for _, m := range sources {
		if err := s.SaveMediaSource(ctx, m); err != nil {
			return saved, err
		}
		saved++
	}
	s.log.Info("media sources seeded", "count", saved)
	return saved, nil
}

// HasMediaSource reports whether a publisher slug is in the registry.
// Collection is skipped for publishers that are not.
func (s *Store) HasMediaSource(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM media_sources ms
		JOIN sources s ON s.source_id = ms.source_id
		WHERE s.name = ?`, slug).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: check media source %q: %w", slug, err)
	}
	return n > 0, nil
}

// MediaSourceBySlug loads one registry entry by publisher slug.
func (s *Store) MediaSourceBySlug(ctx context.Context, slug string) (*models.MediaSource, error) {
	row := s.db.QueryRowContext(ctx, mediaSelect+" WHERE s.name = ?", slug)
	m, err := scanMediaSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: media source %q: %w", slug, err)
	}
	return m, nil
}

// AllMediaSources returns every registry entry ordered by name.
func (s *Store) AllMediaSources(ctx context.Context) ([]models.MediaSource, error) {
	rows, err := s.db.QueryContext(ctx, mediaSelect+" ORDER BY ms.name")
	if err != nil {
		return nil, fmt.Errorf("store: list media sources: %w", err)
	}
	defer rows.Close()

	var out []models.MediaSource
	for rows.Next() {
		m, err := scanMediaSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

const mediaSelect = `
	SELECT ms.name, s.name, ms.country, ms.flag_emoji, ms.logo_url,
	       ms.founded_year, ms.website, ms.description, ms.owner,
	       ms.ownership_category,
	       ms.ad_fontes_bias, ms.ad_fontes_reliability,
	       ms.ad_fontes_rating_url, ms.ad_fontes_date_rated,
	       ms.allsides_bias, ms.allsides_reliability,
	       ms.allsides_rating_url, ms.allsides_date_rated,
	       ms.media_bias_fact_check_bias, ms.media_bias_fact_check_reliability,
	       ms.media_bias_fact_check_rating_url, ms.media_bias_fact_check_date_rated
	FROM media_sources ms
	JOIN sources s ON s.source_id = ms.source_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaSource(row rowScanner) (*models.MediaSource, error) {
	var m models.MediaSource
	var founded sql.NullInt64
	var description, owner, ownership sql.NullString
	var afURL, afDate, asURL, asDate, mbURL, mbDate sql.NullString
	err := row.Scan(&m.Name, &m.Slug, &m.Country, &m.FlagEmoji, &m.LogoURL,
		&founded, &m.Website, &description, &owner, &ownership,
		&m.AdFontes.Bias, &m.AdFontes.Reliability, &afURL, &afDate,
		&m.AllSides.Bias, &m.AllSides.Reliability, &asURL, &asDate,
		&m.MBFC.Bias, &m.MBFC.Reliability, &mbURL, &mbDate)
	if err != nil {
		return nil, err
	}
	m.FoundedYear = int(founded.Int64)
	m.Description = description.String
	m.Owner = owner.String
	m.OwnershipCategory = ownership.String
	m.AdFontes.RatingURL, m.AdFontes.DateRated = afURL.String, afDate.String
	m.AllSides.RatingURL, m.AllSides.DateRated = asURL.String, asDate.String
	m.MBFC.RatingURL, m.MBFC.DateRated = mbURL.String, mbDate.String
	return &m, nil
}
