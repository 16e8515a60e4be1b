package engine

import (
	"context"
	"math"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// contentBasedScorer runs two passes over the catalog: one per favorite
// genre, one per favorite author. A book surfaced by both passes stays
// duplicated here; the blender keeps the higher score.
type contentBasedScorer struct {
	catalog Catalog
}

func (contentBasedScorer) Source() domain.Source { return domain.SourceContentBased }

func (s contentBasedScorer) Score(ctx context.Context, sc *ScoreContext) ([]domain.Candidate, error) {
	var out []domain.Candidate

	for i, genre := range sc.Profile.FavoriteGenres {
		weight := 1.0 - float64(i)*genrePassDecay
		books, err := s.catalog.Query(ctx, domain.CatalogFilter{
			Genres:      []string{genre},
			ExcludeIDs:  sc.HeldIDs,
			MinRating:   sc.Profile.AvgRating - genreRatingSlack,
			VisibleOnly: true,
		}, domain.OrderByRating, genrePassLimit)
		if err != nil {
			return out, err
		}
		for _, b := range books {
			reasons := []string{"similar_genre"}
			if b.Rating >= highlyRatedThreshold {
				reasons = append(reasons, "highly_rated")
			}
			out = append(out, domain.Candidate{
				BookID:  b.ID,
				Title:   b.Title,
				Genre:   b.Genre,
				Score:   clamp01(weight * contentScore(b, sc.Profile)),
				Source:  domain.SourceContentBased,
				Reasons: reasons,
			})
		}
	}

	for i, author := range sc.Profile.FavoriteAuthors {
		weight := 1.0 - float64(i)*creatorPassDecay
		books, err := s.catalog.Query(ctx, domain.CatalogFilter{
			Author:      author,
			ExcludeIDs:  sc.HeldIDs,
			VisibleOnly: true,
		}, domain.OrderByRating, creatorPassLimit)
		if err != nil {
			return out, err
		}
		for _, b := range books {
			reasons := []string{"same_creator"}
			if b.Rating >= highlyRatedThreshold {
				reasons = append(reasons, "highly_rated")
			}
			out = append(out, domain.Candidate{
				BookID:  b.ID,
				Title:   b.Title,
				Genre:   b.Genre,
				Score:   clamp01(weight * contentScore(b, sc.Profile)),
				Source:  domain.SourceContentBased,
				Reasons: reasons,
			})
		}
	}

	return out, nil
}

// contentScore blends rating, genre affinity, author affinity and readership
// into one [0,1] value.
func contentScore(b domain.Book, profile *domain.UserProfile) float64 {
	genreMatch := 0.0
	if rank := genreRank(profile, b.Genre); rank >= 0 {
		genreMatch = 1.0 - float64(rank)*genrePassDecay
	}
	creatorMatch := 0.0
	if hasAuthor(profile, b.Author) {
		creatorMatch = 1.0
	}
	readers := math.Min(float64(b.TotalReaders)/readersSaturation, 1.0)

	return contentRatingWeight*(b.Rating/5.0) +
		contentGenreWeight*genreMatch +
		contentCreatorWeight*creatorMatch +
		contentReadersWeight*readers
}
