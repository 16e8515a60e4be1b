package engine

import "time"

// Heuristic tuning constants. The per-index decay rates intentionally differ
// between scorers; do not unify them without re-tuning against production
// click-through data.
const (
	// Profile derivation.
	readProgressThreshold      = 10.0 // progress % above which a held book counts as read
	completedProgressThreshold = 90.0
	topGenres                  = 5
	topAuthors                 = 5
	topPublishers              = 3
	topTags                    = 10
	defaultAvgRating           = 3.5
	shortPageThreshold         = 20
	mediumPageThreshold        = 50
	activityWindow             = 30 * 24 * time.Hour
	highActivityAdds           = 10
	mediumActivityAdds         = 3
	recencyWindowDays          = 30.0

	// Similarity.
	minInteractions     = 3 // below this the collaborative signal is unreliable
	minSharedFloor      = 2
	minSharedFraction   = 0.10
	jaccardWeight       = 0.7
	ratingAgreeWeight   = 0.3
	neutralRatingDiff   = 2.5 // assumed when two users share no rated books
	maxSimilarUsers     = 20

	// Collaborative scorer.
	collabMinRating      = 4.0
	collabMinProgress    = 50.0
	collabGenreBoost     = 1.2
	collabHighRating     = 4.5
	collabHighRatingBump = 1.1

	// Content-based scorer.
	genrePassDecay       = 0.15
	genrePassLimit       = 5
	genreRatingSlack     = 0.5
	creatorPassDecay     = 0.2
	creatorPassLimit     = 3
	contentRatingWeight  = 0.4
	contentGenreWeight   = 0.3
	contentCreatorWeight = 0.2
	contentReadersWeight = 0.1
	readersSaturation    = 1000.0
	highlyRatedThreshold = 4.0

	// Trending scorer.
	trendingMinAdditions = 5
	trendingLimit        = 15
	trendingAddsWeight   = 0.5
	trendingRatingWeight = 0.3
	trendingGenreWeight  = 0.2
	trendingSaturation   = 50.0

	// New-release scorer.
	newReleaseWindowDays   = 14.0
	newReleaseLimit        = 10
	newReleaseRecencyW     = 0.4
	newReleaseRatingW      = 0.3
	newReleaseGenreRankW   = 0.3
	newReleaseGenreDecay   = 0.1
)

// Target share of the requested limit per source, applied before blending so
// one prolific source cannot crowd the others out.
const (
	allocCollaborativePct = 35
	allocContentBasedPct  = 30
	allocTrendingPct      = 20
	allocNewReleasePct    = 15
	scoreRoundUnit        = 1000 // final scores carry 3 decimal places
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
