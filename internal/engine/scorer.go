package engine

import (
	"context"
	"time"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// Library supplies a user's held items and the libraries of users who share
// at least one book with them. Implemented by the repository; tests use
// in-memory fakes.
type Library interface {
	HeldItems(ctx context.Context, userID int64) ([]domain.LibraryEntry, error)
	CoReaderLibraries(ctx context.Context, userID int64, bookIDs []int64) (map[int64][]domain.LibraryEntry, error)
}

// Catalog answers read-only catalog queries described by an explicit filter.
type Catalog interface {
	Query(ctx context.Context, filter domain.CatalogFilter, order domain.CatalogOrder, limit int) ([]domain.Book, error)
}

// ScoreContext carries the shared inputs of one generation call. Scorers only
// read from it, so the four of them can run concurrently.
type ScoreContext struct {
	Profile     *domain.UserProfile
	Held        map[int64]struct{}
	HeldIDs     []int64
	Similar     []domain.SimilarUser
	CoLibraries map[int64][]domain.LibraryEntry
	Now         time.Time
}

func (sc *ScoreContext) holds(bookID int64) bool {
	_, ok := sc.Held[bookID]
	return ok
}

// Scorer is one candidate producer. Implementations are the closed set of
// four sources; the engine iterates them in a fixed order.
type Scorer interface {
	Source() domain.Source
	Score(ctx context.Context, sc *ScoreContext) ([]domain.Candidate, error)
}

// genreRank returns the index of genre in the profile's favorites, or -1.
func genreRank(profile *domain.UserProfile, genre string) int {
	for i, g := range profile.FavoriteGenres {
		if g == genre {
			return i
		}
	}
	return -1
}

func hasAuthor(profile *domain.UserProfile, author string) bool {
	for _, a := range profile.FavoriteAuthors {
		if a == author {
			return true
		}
	}
	return false
}
