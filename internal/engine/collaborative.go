package engine

import (
	"context"
	"sort"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// collaborativeScorer recommends books that similar readers rated highly and
// mostly finished. It needs no catalog access: everything it scores comes
// from the co-reader libraries already fetched for similarity.
type collaborativeScorer struct{}

func (collaborativeScorer) Source() domain.Source { return domain.SourceCollaborative }

func (collaborativeScorer) Score(_ context.Context, sc *ScoreContext) ([]domain.Candidate, error) {
	if len(sc.Similar) == 0 {
		return nil, nil
	}

	var out []domain.Candidate
	for _, su := range sc.Similar {
		lib := sc.CoLibraries[su.UserID]
		// Deterministic candidate order within one co-reader.
		sort.SliceStable(lib, func(i, j int) bool { return lib[i].Book.ID < lib[j].Book.ID })
		for _, e := range lib {
			if e.Rating == nil || *e.Rating < collabMinRating || e.ProgressPercent <= collabMinProgress {
				continue
			}
			if sc.holds(e.Book.ID) {
				continue
			}
			score := (*e.Rating / 5.0) * su.Similarity
			if genreRank(sc.Profile, e.Book.Genre) >= 0 {
				score *= collabGenreBoost
			}
			if *e.Rating >= collabHighRating {
				score *= collabHighRatingBump
			}
			out = append(out, domain.Candidate{
				BookID:  e.Book.ID,
				Title:   e.Book.Title,
				Genre:   e.Book.Genre,
				Score:   clamp01(score),
				Source:  domain.SourceCollaborative,
				Reasons: []string{"collaborative_filtering", "similar_readers"},
			})
		}
	}
	return out, nil
}
