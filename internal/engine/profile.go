package engine

import (
	"sort"
	"time"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// BuildProfile derives a preference profile from a user's library. Preference
// lists come from read items only (progress above 10%); activity and
// diversity metrics use the full held set. A user with zero history yields a
// valid profile with empty lists and default baselines.
func BuildProfile(userID int64, entries []domain.LibraryEntry, now time.Time) *domain.UserProfile {
	profile := &domain.UserProfile{
		UserID:          userID,
		AvgRating:       defaultAvgRating,
		PreferredLength: domain.LengthMedium,
		ActivityLevel:   domain.ActivityLow,
		TotalHeld:       len(entries),
	}

	var read []domain.LibraryEntry
	for _, e := range entries {
		if e.ProgressPercent > readProgressThreshold {
			read = append(read, e)
		}
	}
	profile.TotalRead = len(read)

	genres := newTally()
	authors := newTally()
	publishers := newTally()
	tags := newTally()
	for _, e := range read {
		genres.add(e.Book.Genre)
		authors.add(e.Book.Author)
		publishers.add(e.Book.Publisher)
		for _, t := range e.Book.Tags {
			tags.add(t)
		}
	}
	profile.FavoriteGenres = genres.top(topGenres)
	profile.FavoriteAuthors = authors.top(topAuthors)
	profile.FavoritePublishers = publishers.top(topPublishers)
	profile.FavoriteTags = tags.top(topTags)

	var ratingSum float64
	var rated int
	for _, e := range entries {
		if e.Rating != nil {
			ratingSum += *e.Rating
			rated++
		}
	}
	if rated > 0 {
		profile.AvgRating = ratingSum / float64(rated)
	}

	if len(read) > 0 {
		pages := 0
		for _, e := range read {
			pages += e.Book.PageCount
		}
		avgPages := pages / len(read)
		switch {
		case avgPages < shortPageThreshold:
			profile.PreferredLength = domain.LengthShort
		case avgPages < mediumPageThreshold:
			profile.PreferredLength = domain.LengthMedium
		default:
			profile.PreferredLength = domain.LengthLong
		}
	}

	recentAdds := 0
	cutoff := now.Add(-activityWindow)
	var lastAdded time.Time
	distinctGenres := map[string]struct{}{}
	completed := 0
	for _, e := range entries {
		if e.AddedAt.After(cutoff) {
			recentAdds++
		}
		if e.AddedAt.After(lastAdded) {
			lastAdded = e.AddedAt
		}
		distinctGenres[e.Book.Genre] = struct{}{}
		if e.ProgressPercent >= completedProgressThreshold {
			completed++
		}
	}
	switch {
	case recentAdds >= highActivityAdds:
		profile.ActivityLevel = domain.ActivityHigh
	case recentAdds >= mediumActivityAdds:
		profile.ActivityLevel = domain.ActivityMedium
	}
	profile.GenreDiversity = len(distinctGenres)
	if len(entries) > 0 {
		profile.CompletionRate = float64(completed) / float64(len(entries))
		days := now.Sub(lastAdded).Hours() / 24.0
		profile.RecencyScore = clamp01(1.0 - days/recencyWindowDays)
	}

	return profile
}

// tally counts string occurrences and reports the most frequent entries,
// ties broken by first-encountered order.
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if key == "" {
		return
	}
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) top(n int) []string {
	keys := make([]string, len(t.order))
	copy(keys, t.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.counts[keys[i]] > t.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
