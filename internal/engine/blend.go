package engine

import (
	"math"
	"sort"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// SourceList is one producer's output, tagged with its source for allocation.
type SourceList struct {
	Source     domain.Source
	Candidates []domain.Candidate
}

func allocationPct(source domain.Source) int {
	switch source {
	case domain.SourceCollaborative:
		return allocCollaborativePct
	case domain.SourceContentBased:
		return allocContentBasedPct
	case domain.SourceTrending:
		return allocTrendingPct
	case domain.SourceNewRelease:
		return allocNewReleasePct
	}
	return 0
}

// Blend merges candidate lists into the final ranking: each source is first
// truncated to its share of the limit, duplicates collapse to the
// highest-scoring candidate, and the result is sorted by score descending and
// cut to limit. Ties keep first-encountered order, which follows producer
// order because lists arrive collaborative-first.
func Blend(lists []SourceList, limit int) []domain.Candidate {
	merged := make([]domain.Candidate, 0, limit*2)
	index := make(map[int64]int)

	for _, list := range lists {
		cands := make([]domain.Candidate, len(list.Candidates))
		copy(cands, list.Candidates)
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].Score > cands[j].Score
		})
		// Ceiling so small limits still admit at least one per source.
		alloc := (limit*allocationPct(list.Source) + 99) / 100
		if len(cands) > alloc {
			cands = cands[:alloc]
		}
		for _, c := range cands {
			if at, seen := index[c.BookID]; seen {
				if c.Score > merged[at].Score {
					merged[at] = c
				}
				continue
			}
			index[c.BookID] = len(merged)
			merged = append(merged, c)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	for i := range merged {
		merged[i].Score = math.Round(merged[i].Score*scoreRoundUnit) / scoreRoundUnit
	}
	return merged
}
