package engine

import (
	"context"
	"math"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// trendingScorer surfaces books with momentum: at least trendingMinAdditions
// new acquisitions in the rolling window, ranked by acquisition count then
// rating.
type trendingScorer struct {
	catalog Catalog
}

func (trendingScorer) Source() domain.Source { return domain.SourceTrending }

func (s trendingScorer) Score(ctx context.Context, sc *ScoreContext) ([]domain.Candidate, error) {
	books, err := s.catalog.Query(ctx, domain.CatalogFilter{
		ExcludeIDs:         sc.HeldIDs,
		MinRecentAdditions: trendingMinAdditions,
		VisibleOnly:        true,
	}, domain.OrderByRecentAdditions, trendingLimit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Candidate, 0, len(books))
	for _, b := range books {
		genreBonus := 0.0
		if genreRank(sc.Profile, b.Genre) >= 0 {
			genreBonus = 1.0
		}
		score := trendingAddsWeight*math.Min(float64(b.RecentAdditions)/trendingSaturation, 1.0) +
			trendingRatingWeight*(b.Rating/5.0) +
			trendingGenreWeight*genreBonus

		reasons := []string{"popular_now"}
		if b.Rating >= highlyRatedThreshold {
			reasons = append(reasons, "highly_rated")
		}
		out = append(out, domain.Candidate{
			BookID:  b.ID,
			Title:   b.Title,
			Genre:   b.Genre,
			Score:   clamp01(score),
			Source:  domain.SourceTrending,
			Reasons: reasons,
		})
	}
	return out, nil
}
