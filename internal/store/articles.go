package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/medialens/medialens/pkg/models"
)

// LookupOrCreateSource returns the source_id for a publisher slug,
// inserting the row on first use.
func (s *Store) LookupOrCreateSource(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT source_id FROM sources WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sources (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("store: create source %q: %w", name, err)
	}
	return res.LastInsertId()
}

// InsertArticle stores an article, ignoring it when the same id is already
// present. Returns true when a new row was written.
func (s *Store) InsertArticle(ctx context.Context, a models.Article) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO articles
			(id, source_id, raw_title, raw_description,
			 clean_content, categories, link, publication_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SourceID, a.Title, a.Description,
		a.CleanContent, strings.Join(a.Categories, ","), a.Link, a.PublicationDate)
	if err != nil {
		return false, fmt.Errorf("store: insert article %q: %w", a.Title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ArticlesByDay returns the articles published on the given UTC day
// ("2006-01-02"), grouped by publisher slug.
func (s *Store) ArticlesByDay(ctx context.Context, day string) (map[string][]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.source_id, s.name, a.raw_title, a.raw_description,
		       a.clean_content, a.categories, a.link, a.publication_date
		FROM articles a
		JOIN sources s ON s.source_id = a.source_id
		WHERE date(a.publication_date) = ?
		ORDER BY s.name, a.publication_date`, day)
	if err != nil {
		return nil, fmt.Errorf("store: articles for %s: %w", day, err)
	}
	defer rows.Close()

	grouped := make(map[string][]models.Article)
	for rows.Next() {
		var a models.Article
		var categories string
		if err := rows.Scan(&a.ID, &a.SourceID, &a.Source, &a.Title, &a.Description,
			&a.CleanContent, &categories, &a.Link, &a.PublicationDate); err != nil {
			return nil, err
		}
		if categories != "" {
			a.Categories = strings.Split(categories, ",")
		}
		grouped[a.Source] = append(grouped[a.Source], a)
	}
	return grouped, rows.Err()
}

// CountArticles returns the number of stored articles, total or for one
// UTC day when day is non-empty.
func (s *Store) CountArticles(ctx context.Context, day string) (int, error) {
	var n int
	var err error
	if day == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM articles WHERE date(publication_date) = ?", day).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("store: count articles: %w", err)
	}
	return n, nil
}
