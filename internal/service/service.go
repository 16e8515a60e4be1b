package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shelfwise/recommendation-service/internal/domain"
	"github.com/shelfwise/recommendation-service/internal/engine"
	"github.com/shelfwise/recommendation-service/internal/metrics"
)

const (
	maxLimit         = 50
	batchConcurrency = 10
	batchRecLimit    = 10
)

// Store is the persistence surface for blended results and feedback.
type Store interface {
	Persist(ctx context.Context, userID int64, recs []domain.Candidate, generatedAt, expiresAt time.Time) error
	PruneExpired(ctx context.Context, userID int64, before time.Time) error
	GetActive(ctx context.Context, userID int64, limit int) ([]domain.StoredRecommendation, error)
	MarkClicked(ctx context.Context, userID, bookID int64, at time.Time) error
	MarkDismissed(ctx context.Context, userID, bookID int64) error
}

// Users answers identity lookups and batch pagination.
type Users interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
}

// Cache memoizes blended results per (user, limit) and profiles per user.
type Cache interface {
	GetRecommendations(ctx context.Context, userID int64, limit int) ([]domain.Candidate, bool, error)
	SetRecommendations(ctx context.Context, userID int64, limit int, recs []domain.Candidate) error
	GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, bool, error)
	SetProfile(ctx context.Context, profile *domain.UserProfile) error
	InvalidateUser(ctx context.Context, userID int64) error
}

// Service wraps the pure scoring engine with caching, persistence and
// feedback handling. Cache-aside with singleflight coalescing: concurrent
// identical requests share one generation instead of storming the pipeline.
type Service struct {
	engine *engine.Engine
	users  Users
	store  Store
	cache  Cache
	group  singleflight.Group
	recTTL time.Duration
}

func NewService(eng *engine.Engine, users Users, store Store, cache Cache, recTTL time.Duration) *Service {
	return &Service{
		engine: eng,
		users:  users,
		store:  store,
		cache:  cache,
		recTTL: recTTL,
	}
}

func (s *Service) GetRecommendations(ctx context.Context, userID int64, limit int) (*domain.RecommendationResult, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	cached, found, err := s.cache.GetRecommendations(ctx, userID, limit)
	if err != nil {
		log.Printf("[service] cache get error for user %d: %v", userID, err)
	}
	if found {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return &domain.RecommendationResult{
			Recommendations: cached,
			CacheHit:        true,
		}, nil
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	key := fmt.Sprintf("%d:%d", userID, limit)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.generate(ctx, userID, limit)
	})
	if err != nil {
		return nil, err
	}

	return &domain.RecommendationResult{
		Recommendations: v.([]domain.Candidate),
		CacheHit:        false,
	}, nil
}

func (s *Service) generate(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	start := time.Now()

	profile, found, err := s.cache.GetProfile(ctx, userID)
	if err != nil {
		log.Printf("[service] profile cache get error for user %d: %v", userID, err)
	}
	if !found {
		// Profile failures are fatal; everything downstream depends on it.
		profile, err = s.engine.Profile(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("build profile: %w", err)
		}
		if cacheErr := s.cache.SetProfile(ctx, profile); cacheErr != nil {
			log.Printf("[service] profile cache set error for user %d: %v", userID, cacheErr)
		}
	}

	recs, err := s.engine.Generate(ctx, profile, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.store.Persist(ctx, userID, recs, now, now.Add(s.recTTL)); err != nil {
		return nil, fmt.Errorf("persist recommendations: %w", err)
	}
	if err := s.store.PruneExpired(ctx, userID, now.Add(-s.recTTL)); err != nil {
		log.Printf("[service] prune error for user %d: %v", userID, err)
	}

	if cacheErr := s.cache.SetRecommendations(ctx, userID, limit, recs); cacheErr != nil {
		log.Printf("[service] cache set error for user %d: %v", userID, cacheErr)
	}

	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	return recs, nil
}

// GetStoredRecommendations returns the persisted active set, best first.
func (s *Service) GetStoredRecommendations(ctx context.Context, userID int64, limit int) ([]domain.StoredRecommendation, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.store.GetActive(ctx, userID, limit)
}

// TrackInteraction records feedback against a stored recommendation and
// synchronously invalidates the user's cache so stale lists stop serving.
func (s *Service) TrackInteraction(ctx context.Context, userID, bookID int64, rawAction string) error {
	action, err := domain.ParseFeedbackAction(rawAction)
	if err != nil {
		return fmt.Errorf("%w: %q", err, rawAction)
	}

	switch action {
	case domain.ActionClicked:
		if err := s.store.MarkClicked(ctx, userID, bookID, time.Now()); err != nil {
			return err
		}
	case domain.ActionDismissed:
		if err := s.store.MarkDismissed(ctx, userID, bookID); err != nil {
			return err
		}
	default:
		// Informational only; no stored state changes.
		log.Printf("[service] user %d %s book %d", userID, action, bookID)
	}
	metrics.FeedbackEvents.WithLabelValues(string(action)).Inc()

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		return fmt.Errorf("invalidate cache for user %d: %w", userID, err)
	}
	return nil
}

// InvalidateUserCache is the explicit bust hook for collaborators, e.g. when
// the user's library changes outside this service.
func (s *Service) InvalidateUserCache(ctx context.Context, userID int64) error {
	return s.cache.InvalidateUser(ctx, userID)
}

func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	userIDs, err := s.users.GetUserIDsPaginated(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch user ids: %w", err)
	}

	totalUsers, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	// Process users concurrently with bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, batchConcurrency) // semaphore

	for i, userID := range userIDs {
		wg.Add(1)
		go func(idx int, uid int64) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = s.processUserForBatch(ctx, uid)
		}(i, userID)
	}
	wg.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	elapsed := time.Since(start).Milliseconds()

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: elapsed,
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single user, capturing errors.
func (s *Service) processUserForBatch(ctx context.Context, userID int64) domain.BatchUserResult {
	result, err := s.GetRecommendations(ctx, userID, batchRecLimit)
	if err != nil {
		log.Printf("[service] batch: failed for user %d: %v", userID, err)
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID:          userID,
		Recommendations: result.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

// Handle response error
func categorizeError(err error) (string, string) {
	if errors.Is(err, domain.ErrUserNotFound) {
		return "user_not_found", "user not found"
	}
	if errors.Is(err, domain.ErrNoSources) {
		return "no_sources", "all recommendation sources failed"
	}
	return "internal_error", "an unexpected error occurred"
}
