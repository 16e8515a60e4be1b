package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// Persist upserts one row per (user, book) pair. Feedback fields survive
// regeneration: a dismissal stays dismissed even when the book is recommended
// again before the row expires.
func (r *Repository) Persist(ctx context.Context, userID int64, recs []domain.Candidate, generatedAt, expiresAt time.Time) error {
	if len(recs) == 0 {
		return nil
	}

	rows := make([]string, 0, len(recs))
	args := make([]any, 0, len(recs)*7)
	for _, rec := range recs {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, userID, rec.BookID, string(rec.Source), rec.Score, rec.Reasons, generatedAt, expiresAt)
	}

	query := `INSERT INTO recommendations
		(user_id, book_id, source, score, reasons, generated_at, expires_at)
		VALUES ` + strings.Join(rows, ", ") + `
		ON CONFLICT (user_id, book_id) DO UPDATE SET
			source = EXCLUDED.source,
			score = EXCLUDED.score,
			reasons = EXCLUDED.reasons,
			generated_at = EXCLUDED.generated_at,
			expires_at = EXCLUDED.expires_at`

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert recommendations for user %d: %w", userID, err)
	}
	return nil
}

// PruneExpired removes the user's rows generated before the cutoff.
func (r *Repository) PruneExpired(ctx context.Context, userID int64, before time.Time) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM recommendations WHERE user_id = $1 AND generated_at < $2`,
		userID, before,
	)
	if err != nil {
		return fmt.Errorf("prune recommendations for user %d: %w", userID, err)
	}
	return nil
}

// GetActive returns non-expired, non-dismissed recommendations, best first.
func (r *Repository) GetActive(ctx context.Context, userID int64, limit int) ([]domain.StoredRecommendation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, book_id, source, score, reasons, generated_at,
			expires_at, clicked_at, dismissed
		FROM recommendations
		WHERE user_id = $1 AND expires_at > now() AND dismissed = FALSE
		ORDER BY score DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query active recommendations for user %d: %w", userID, err)
	}
	defer rows.Close()

	var recs []domain.StoredRecommendation
	for rows.Next() {
		var rec domain.StoredRecommendation
		var source string
		if err := rows.Scan(
			&rec.UserID, &rec.BookID, &source, &rec.Score, &rec.Reasons,
			&rec.GeneratedAt, &rec.ExpiresAt, &rec.ClickedAt, &rec.Dismissed,
		); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		rec.Source = domain.Source(source)
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return recs, nil
}

// MarkClicked records a click timestamp on the stored pair.
func (r *Repository) MarkClicked(ctx context.Context, userID, bookID int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE recommendations SET clicked_at = $3 WHERE user_id = $1 AND book_id = $2`,
		userID, bookID, at,
	)
	if err != nil {
		return fmt.Errorf("mark clicked user=%d book=%d: %w", userID, bookID, err)
	}
	return nil
}

// MarkDismissed flags the stored pair so it drops out of active queries.
func (r *Repository) MarkDismissed(ctx context.Context, userID, bookID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE recommendations SET dismissed = TRUE WHERE user_id = $1 AND book_id = $2`,
		userID, bookID,
	)
	if err != nil {
		return fmt.Errorf("mark dismissed user=%d book=%d: %w", userID, bookID, err)
	}
	return nil
}
