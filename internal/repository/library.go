package repository

import (
	"context"
	"fmt"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

const libraryColumns = `b.id, b.title, b.genre, b.author, b.publisher, b.tags,
	b.rating, b.total_readers, b.recent_additions, b.published_at, b.visible,
	b.is_free, b.page_count, b.created_at,
	ul.rating, ul.progress_percent, ul.added_at`

// HeldItems returns the user's full library with book attributes, newest
// additions first.
func (r *Repository) HeldItems(ctx context.Context, userID int64) ([]domain.LibraryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+libraryColumns+`
		FROM user_library ul
		JOIN books b ON b.id = ul.book_id
		WHERE ul.user_id = $1
		ORDER BY ul.added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query library for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []domain.LibraryEntry
	for rows.Next() {
		e, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library entries: %w", err)
	}
	return entries, nil
}

// CoReaderLibraries returns the complete libraries of every other user who
// holds at least one of the given books, keyed by user id.
func (r *Repository) CoReaderLibraries(ctx context.Context, userID int64, bookIDs []int64) (map[int64][]domain.LibraryEntry, error) {
	if len(bookIDs) == 0 {
		return map[int64][]domain.LibraryEntry{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT ul.user_id, `+libraryColumns+`
		FROM user_library ul
		JOIN books b ON b.id = ul.book_id
		WHERE ul.user_id IN (
			SELECT DISTINCT user_id FROM user_library
			WHERE book_id = ANY($1) AND user_id <> $2
		)`,
		bookIDs, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query co-reader libraries for user %d: %w", userID, err)
	}
	defer rows.Close()

	libs := make(map[int64][]domain.LibraryEntry)
	for rows.Next() {
		var ownerID int64
		var e domain.LibraryEntry
		if err := rows.Scan(
			&ownerID,
			&e.Book.ID, &e.Book.Title, &e.Book.Genre, &e.Book.Author, &e.Book.Publisher,
			&e.Book.Tags, &e.Book.Rating, &e.Book.TotalReaders, &e.Book.RecentAdditions,
			&e.Book.PublishedAt, &e.Book.Visible, &e.Book.IsFree, &e.Book.PageCount,
			&e.Book.CreatedAt, &e.Rating, &e.ProgressPercent, &e.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan co-reader entry: %w", err)
		}
		libs[ownerID] = append(libs[ownerID], e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate co-reader entries: %w", err)
	}
	return libs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLibraryEntry(row rowScanner) (domain.LibraryEntry, error) {
	var e domain.LibraryEntry
	err := row.Scan(
		&e.Book.ID, &e.Book.Title, &e.Book.Genre, &e.Book.Author, &e.Book.Publisher,
		&e.Book.Tags, &e.Book.Rating, &e.Book.TotalReaders, &e.Book.RecentAdditions,
		&e.Book.PublishedAt, &e.Book.Visible, &e.Book.IsFree, &e.Book.PageCount,
		&e.Book.CreatedAt, &e.Rating, &e.ProgressPercent, &e.AddedAt,
	)
	if err != nil {
		return e, fmt.Errorf("scan library entry: %w", err)
	}
	return e, nil
}
