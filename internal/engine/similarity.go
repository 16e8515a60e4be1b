package engine

import (
	"math"
	"sort"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// findSimilarUsers ranks co-readers by library overlap and rating agreement.
// Users sharing fewer than max(2, 10% of the requester's library) books are
// dropped. Returns at most maxSimilarUsers, most similar first; ties go to
// the higher shared-item count.
func findSimilarUsers(entries []domain.LibraryEntry, coLibraries map[int64][]domain.LibraryEntry) []domain.SimilarUser {
	if len(entries) < minInteractions {
		return nil
	}

	myRatings := make(map[int64]float64)
	held := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		held[e.Book.ID] = struct{}{}
		if e.Rating != nil {
			myRatings[e.Book.ID] = *e.Rating
		}
	}

	minShared := int(math.Ceil(minSharedFraction * float64(len(entries))))
	if minShared < minSharedFloor {
		minShared = minSharedFloor
	}

	similar := make([]domain.SimilarUser, 0, len(coLibraries))
	for userID, lib := range coLibraries {
		shared := 0
		var diffSum float64
		var diffCount int
		for _, e := range lib {
			if _, ok := held[e.Book.ID]; !ok {
				continue
			}
			shared++
			if mine, ok := myRatings[e.Book.ID]; ok && e.Rating != nil {
				diffSum += math.Abs(mine - *e.Rating)
				diffCount++
			}
		}
		if shared < minShared {
			continue
		}

		avgDiff := neutralRatingDiff
		if diffCount > 0 {
			avgDiff = diffSum / float64(diffCount)
		}
		agreement := 1.0 - math.Min(avgDiff/5.0, 1.0)
		union := len(entries) + len(lib) - shared
		jaccard := 0.0
		if union > 0 {
			jaccard = float64(shared) / float64(union)
		}

		similar = append(similar, domain.SimilarUser{
			UserID:      userID,
			Similarity:  jaccardWeight*jaccard + ratingAgreeWeight*agreement,
			SharedItems: shared,
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Similarity != similar[j].Similarity {
			return similar[i].Similarity > similar[j].Similarity
		}
		if similar[i].SharedItems != similar[j].SharedItems {
			return similar[i].SharedItems > similar[j].SharedItems
		}
		// Map iteration order is random; pin it down.
		return similar[i].UserID < similar[j].UserID
	})
	if len(similar) > maxSimilarUsers {
		similar = similar[:maxSimilarUsers]
	}
	return similar
}
