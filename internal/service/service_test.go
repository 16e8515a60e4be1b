package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfwise/recommendation-service/internal/domain"
	"github.com/shelfwise/recommendation-service/internal/engine"
)

// ---- fakes ----

type fakeUsers struct {
	ids []int64
}

func (f *fakeUsers) UserExists(_ context.Context, userID int64) (bool, error) {
	for _, id := range f.ids {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) GetUserIDsPaginated(_ context.Context, page, limit int) ([]int64, error) {
	return f.ids, nil
}

func (f *fakeUsers) CountUsers(_ context.Context) (int, error) {
	return len(f.ids), nil
}

type storeKey struct {
	userID int64
	bookID int64
}

type fakeStore struct {
	rows map[storeKey]*domain.StoredRecommendation
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[storeKey]*domain.StoredRecommendation)}
}

func (f *fakeStore) Persist(_ context.Context, userID int64, recs []domain.Candidate, generatedAt, expiresAt time.Time) error {
	for _, rec := range recs {
		key := storeKey{userID, rec.BookID}
		row := &domain.StoredRecommendation{
			UserID:      userID,
			BookID:      rec.BookID,
			Source:      rec.Source,
			Score:       rec.Score,
			Reasons:     rec.Reasons,
			GeneratedAt: generatedAt,
			ExpiresAt:   expiresAt,
		}
		if old, ok := f.rows[key]; ok {
			row.ClickedAt = old.ClickedAt
			row.Dismissed = old.Dismissed
		}
		f.rows[key] = row
	}
	return nil
}

func (f *fakeStore) PruneExpired(_ context.Context, userID int64, before time.Time) error {
	for key, row := range f.rows {
		if key.userID == userID && row.GeneratedAt.Before(before) {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeStore) GetActive(_ context.Context, userID int64, limit int) ([]domain.StoredRecommendation, error) {
	now := time.Now()
	var out []domain.StoredRecommendation
	for key, row := range f.rows {
		if key.userID != userID || row.Dismissed || row.ExpiresAt.Before(now) {
			continue
		}
		out = append(out, *row)
	}
	// Insertion sort by score desc keeps the fake dependency-free.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MarkClicked(_ context.Context, userID, bookID int64, at time.Time) error {
	if row, ok := f.rows[storeKey{userID, bookID}]; ok {
		row.ClickedAt = &at
	}
	return nil
}

func (f *fakeStore) MarkDismissed(_ context.Context, userID, bookID int64) error {
	if row, ok := f.rows[storeKey{userID, bookID}]; ok {
		row.Dismissed = true
	}
	return nil
}

type cacheKey struct {
	userID int64
	limit  int
}

type fakeCache struct {
	results       map[cacheKey][]domain.Candidate
	profiles      map[int64]*domain.UserProfile
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		results:  make(map[cacheKey][]domain.Candidate),
		profiles: make(map[int64]*domain.UserProfile),
	}
}

func (f *fakeCache) GetRecommendations(_ context.Context, userID int64, limit int) ([]domain.Candidate, bool, error) {
	recs, ok := f.results[cacheKey{userID, limit}]
	return recs, ok, nil
}

func (f *fakeCache) SetRecommendations(_ context.Context, userID int64, limit int, recs []domain.Candidate) error {
	f.results[cacheKey{userID, limit}] = recs
	return nil
}

func (f *fakeCache) GetProfile(_ context.Context, userID int64) (*domain.UserProfile, bool, error) {
	p, ok := f.profiles[userID]
	return p, ok, nil
}

func (f *fakeCache) SetProfile(_ context.Context, profile *domain.UserProfile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeCache) InvalidateUser(_ context.Context, userID int64) error {
	f.invalidations++
	for key := range f.results {
		if key.userID == userID {
			delete(f.results, key)
		}
	}
	delete(f.profiles, userID)
	return nil
}

type fakeLibrary struct {
	held   map[int64][]domain.LibraryEntry
	coLibs map[int64][]domain.LibraryEntry
}

func (f fakeLibrary) HeldItems(_ context.Context, userID int64) ([]domain.LibraryEntry, error) {
	return f.held[userID], nil
}

func (f fakeLibrary) CoReaderLibraries(_ context.Context, _ int64, _ []int64) (map[int64][]domain.LibraryEntry, error) {
	return f.coLibs, nil
}

type fakeCatalog struct {
	books []domain.Book
}

func (f fakeCatalog) Query(_ context.Context, filter domain.CatalogFilter, _ domain.CatalogOrder, limit int) ([]domain.Book, error) {
	var out []domain.Book
	for _, b := range f.books {
		if len(out) >= limit {
			break
		}
		excluded := false
		for _, id := range filter.ExcludeIDs {
			if b.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, b)
		}
	}
	return out, nil
}

// ---- fixtures ----

func ratingPtr(v float64) *float64 { return &v }

func testService(t *testing.T) (*Service, *fakeStore, *fakeCache) {
	t.Helper()
	now := time.Now()
	five := ratingPtr(5.0)
	lib := fakeLibrary{
		held: map[int64][]domain.LibraryEntry{
			1: {
				libEntry(1, "fantasy", 80, five, now),
				libEntry(2, "fantasy", 80, five, now),
				libEntry(3, "mystery", 80, five, now),
			},
		},
		coLibs: map[int64][]domain.LibraryEntry{
			2: {
				libEntry(1, "fantasy", 90, five, now),
				libEntry(2, "fantasy", 90, five, now),
				libEntry(9, "fantasy", 90, five, now),
			},
		},
	}
	catalog := fakeCatalog{books: []domain.Book{
		{ID: 60, Title: "Pick", Genre: "fantasy", Rating: 4.8, RecentAdditions: 40, TotalReaders: 500, PublishedAt: now.AddDate(0, 0, -3), Visible: true},
		{ID: 61, Title: "Other", Genre: "mystery", Rating: 4.2, RecentAdditions: 12, TotalReaders: 200, PublishedAt: now.AddDate(0, 0, -10), Visible: true},
	}}

	eng := engine.New(lib, catalog, time.Second)
	store := newFakeStore()
	cache := newFakeCache()
	svc := NewService(eng, &fakeUsers{ids: []int64{1, 5}}, store, cache, 7*24*time.Hour)
	return svc, store, cache
}

func libEntry(id int64, genre string, progress float64, rating *float64, added time.Time) domain.LibraryEntry {
	return domain.LibraryEntry{
		Book:            domain.Book{ID: id, Title: "Held", Genre: genre, Author: "N. Vale", Publisher: "Harbor House", PageCount: 300},
		Rating:          rating,
		ProgressPercent: progress,
		AddedAt:         added,
	}
}

// ---- tests ----

func TestGetRecommendationsInvalidLimit(t *testing.T) {
	svc, _, _ := testService(t)

	for _, limit := range []int{0, -1} {
		if _, err := svc.GetRecommendations(context.Background(), 1, limit); !errors.Is(err, domain.ErrInvalidLimit) {
			t.Errorf("limit %d: expected ErrInvalidLimit, got %v", limit, err)
		}
	}
}

func TestGetRecommendationsUnknownUser(t *testing.T) {
	svc, _, _ := testService(t)

	if _, err := svc.GetRecommendations(context.Background(), 404, 10); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetRecommendationsGeneratesAndCaches(t *testing.T) {
	svc, store, _ := testService(t)

	first, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CacheHit {
		t.Error("first call should be a cache miss")
	}
	if len(first.Recommendations) == 0 {
		t.Fatal("expected candidates")
	}
	if len(first.Recommendations) > 10 {
		t.Errorf("expected at most 10, got %d", len(first.Recommendations))
	}
	for i := 1; i < len(first.Recommendations); i++ {
		if first.Recommendations[i].Score > first.Recommendations[i-1].Score {
			t.Error("recommendations not sorted by score descending")
		}
	}
	if len(store.rows) != len(first.Recommendations) {
		t.Errorf("expected %d persisted rows, got %d", len(first.Recommendations), len(store.rows))
	}

	second, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second call should hit the cache")
	}
	if len(second.Recommendations) != len(first.Recommendations) {
		t.Fatalf("cached result differs in length")
	}
	for i := range first.Recommendations {
		if second.Recommendations[i].BookID != first.Recommendations[i].BookID {
			t.Errorf("cached result differs at %d", i)
		}
	}
}

func TestStoredRoundTrip(t *testing.T) {
	svc, _, _ := testService(t)

	generated, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := svc.GetStoredRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != len(generated.Recommendations) {
		t.Fatalf("expected %d stored rows, got %d", len(generated.Recommendations), len(stored))
	}
	for i, rec := range generated.Recommendations {
		if stored[i].BookID != rec.BookID || stored[i].Score != rec.Score || stored[i].Source != rec.Source {
			t.Errorf("row %d does not match persisted candidate: %+v vs %+v", i, stored[i], rec)
		}
	}
}

func TestTrackInteractionDismiss(t *testing.T) {
	svc, store, cache := testService(t)

	generated, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target := generated.Recommendations[0].BookID

	if err := svc.TrackInteraction(context.Background(), 1, target, "dismissed"); err != nil {
		t.Fatalf("track: %v", err)
	}
	if !store.rows[storeKey{1, target}].Dismissed {
		t.Error("expected row marked dismissed")
	}
	if cache.invalidations != 1 {
		t.Errorf("expected one cache invalidation, got %d", cache.invalidations)
	}

	stored, err := svc.GetStoredRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("stored: %v", err)
	}
	for _, rec := range stored {
		if rec.BookID == target {
			t.Error("dismissed book still in active set")
		}
	}

	// Cache was invalidated, so the next call regenerates.
	again, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.CacheHit {
		t.Error("expected cache miss after dismissal feedback")
	}
}

func TestTrackInteractionClick(t *testing.T) {
	svc, store, _ := testService(t)

	generated, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	target := generated.Recommendations[0].BookID

	if err := svc.TrackInteraction(context.Background(), 1, target, "clicked"); err != nil {
		t.Fatalf("track: %v", err)
	}
	if store.rows[storeKey{1, target}].ClickedAt == nil {
		t.Error("expected clicked_at set")
	}
}

func TestTrackInteractionInvalidAction(t *testing.T) {
	svc, _, cache := testService(t)

	err := svc.TrackInteraction(context.Background(), 1, 60, "purchased")
	if !errors.Is(err, domain.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if cache.invalidations != 0 {
		t.Error("invalid action must not touch the cache")
	}
}

func TestTrackInteractionInformationalAction(t *testing.T) {
	svc, store, cache := testService(t)

	if _, err := svc.GetRecommendations(context.Background(), 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(store.rows)

	if err := svc.TrackInteraction(context.Background(), 1, 60, "added_to_library"); err != nil {
		t.Fatalf("track: %v", err)
	}
	if len(store.rows) != before {
		t.Error("informational action must not change stored rows")
	}
	for _, row := range store.rows {
		if row.Dismissed || row.ClickedAt != nil {
			t.Error("informational action must not mutate feedback fields")
		}
	}
	if cache.invalidations != 1 {
		t.Error("library change must still invalidate the cache")
	}
}

func TestGetRecommendationsEmptyUserSucceeds(t *testing.T) {
	svc, _, _ := testService(t)

	// User 5 exists but holds nothing; all scorers may come back empty.
	result, err := svc.GetRecommendations(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("expected success for user with no history, got %v", err)
	}
	if result == nil {
		t.Fatal("expected a result")
	}
}

func TestInvalidateUserCache(t *testing.T) {
	svc, _, _ := testService(t)

	if _, err := svc.GetRecommendations(context.Background(), 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.InvalidateUserCache(context.Background(), 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	result, err := svc.GetRecommendations(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CacheHit {
		t.Error("expected regeneration after explicit invalidation")
	}
}
