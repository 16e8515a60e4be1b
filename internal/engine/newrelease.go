package engine

import (
	"context"
	"math"
	"time"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// newReleaseScorer surfaces recent releases inside the user's favorite
// genres. Without favorite genres there is nothing to match against and the
// scorer contributes nothing.
type newReleaseScorer struct {
	catalog Catalog
}

func (newReleaseScorer) Source() domain.Source { return domain.SourceNewRelease }

func (s newReleaseScorer) Score(ctx context.Context, sc *ScoreContext) ([]domain.Candidate, error) {
	if len(sc.Profile.FavoriteGenres) == 0 {
		return nil, nil
	}

	cutoff := sc.Now.Add(-time.Duration(newReleaseWindowDays) * 24 * time.Hour)
	books, err := s.catalog.Query(ctx, domain.CatalogFilter{
		Genres:         sc.Profile.FavoriteGenres,
		ExcludeIDs:     sc.HeldIDs,
		PublishedAfter: cutoff,
		VisibleOnly:    true,
	}, domain.OrderByPublishedAt, newReleaseLimit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(books))
	for _, b := range books {
		daysSince := sc.Now.Sub(b.PublishedAt).Hours() / 24.0
		recency := math.Max(0, 1.0-daysSince/newReleaseWindowDays)

		rankScore := 0.0
		if rank := genreRank(sc.Profile, b.Genre); rank >= 0 {
			rankScore = 1.0 - float64(rank)*newReleaseGenreDecay
		}
		score := newReleaseRecencyW*recency +
			newReleaseRatingW*(b.Rating/5.0) +
			newReleaseGenreRankW*rankScore

		out = append(out, domain.Candidate{
			BookID:  b.ID,
			Title:   b.Title,
			Genre:   b.Genre,
			Score:   clamp01(score),
			Source:  domain.SourceNewRelease,
			Reasons: []string{"new_release", "similar_genre"},
		})
	}
	return out, nil
}
