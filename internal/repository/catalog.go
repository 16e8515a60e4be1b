package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Query translates an immutable CatalogFilter into SQL and returns matching
// books. Callers describe criteria; this is the only place that knows the
// storage query language.
func (r *Repository) Query(ctx context.Context, filter domain.CatalogFilter, order domain.CatalogOrder, limit int) ([]domain.Book, error) {
	qb := psql.Select(
		"id", "title", "genre", "author", "publisher", "tags",
		"rating", "total_readers", "recent_additions", "published_at",
		"visible", "is_free", "page_count", "created_at",
	).From("books")

	if len(filter.Genres) > 0 {
		qb = qb.Where(sq.Eq{"genre": filter.Genres})
	}
	if filter.Author != "" {
		qb = qb.Where(sq.Eq{"author": filter.Author})
	}
	if len(filter.ExcludeIDs) > 0 {
		qb = qb.Where(sq.NotEq{"id": filter.ExcludeIDs})
	}
	if filter.MinRating > 0 {
		qb = qb.Where(sq.GtOrEq{"rating": filter.MinRating})
	}
	if filter.MinRecentAdditions > 0 {
		qb = qb.Where(sq.GtOrEq{"recent_additions": filter.MinRecentAdditions})
	}
	if !filter.PublishedAfter.IsZero() {
		qb = qb.Where(sq.GtOrEq{"published_at": filter.PublishedAfter})
	}
	if filter.VisibleOnly {
		qb = qb.Where(sq.Eq{"visible": true})
	}

	switch order {
	case domain.OrderByRecentAdditions:
		qb = qb.OrderBy("recent_additions DESC", "rating DESC")
	case domain.OrderByPublishedAt:
		qb = qb.OrderBy("published_at DESC", "rating DESC")
	default:
		qb = qb.OrderBy("rating DESC")
	}
	qb = qb.Limit(uint64(limit))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build catalog query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Genre, &b.Author, &b.Publisher, &b.Tags,
			&b.Rating, &b.TotalReaders, &b.RecentAdditions, &b.PublishedAt,
			&b.Visible, &b.IsFree, &b.PageCount, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}
