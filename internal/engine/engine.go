// Package engine implements the scoring pipeline: profile derivation,
// user similarity, the four candidate scorers and the blender. It is pure
// with respect to caching and persistence; those live in the service layer.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelfwise/recommendation-service/internal/domain"
	"github.com/shelfwise/recommendation-service/internal/metrics"
)

type Engine struct {
	library       Library
	catalog       Catalog
	scorers       []Scorer
	scorerTimeout time.Duration
}

func New(library Library, catalog Catalog, scorerTimeout time.Duration) *Engine {
	return &Engine{
		library: library,
		catalog: catalog,
		scorers: []Scorer{
			collaborativeScorer{},
			contentBasedScorer{catalog: catalog},
			trendingScorer{catalog: catalog},
			newReleaseScorer{catalog: catalog},
		},
		scorerTimeout: scorerTimeout,
	}
}

// Profile builds the user's preference profile from their current library.
func (e *Engine) Profile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	entries, err := e.library.HeldItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}
	return BuildProfile(userID, entries, time.Now()), nil
}

// Generate runs the full pipeline for one user and returns the blended,
// ranked candidate list. Individual scorer failures degrade to an empty
// contribution; only when every scorer fails does the call error out.
func (e *Engine) Generate(ctx context.Context, profile *domain.UserProfile, limit int) ([]domain.Candidate, error) {
	entries, err := e.library.HeldItems(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}

	sc := &ScoreContext{
		Profile: profile,
		Held:    make(map[int64]struct{}, len(entries)),
		HeldIDs: make([]int64, 0, len(entries)),
		Now:     time.Now(),
	}
	for _, en := range entries {
		sc.Held[en.Book.ID] = struct{}{}
		sc.HeldIDs = append(sc.HeldIDs, en.Book.ID)
	}

	// Collaborative signal needs at least minInteractions held items.
	coReadersFailed := false
	if len(entries) >= minInteractions {
		coLibs, err := e.library.CoReaderLibraries(ctx, profile.UserID, sc.HeldIDs)
		if err != nil {
			// Only the collaborative scorer depends on this; count it as a
			// failed source so an all-sources outage surfaces as ErrNoSources.
			log.Printf("[engine] co-reader lookup failed for user %d: %v", profile.UserID, err)
			metrics.ScorerFailures.WithLabelValues(string(domain.SourceCollaborative)).Inc()
			coReadersFailed = true
		} else {
			sc.CoLibraries = coLibs
			sc.Similar = findSimilarUsers(entries, coLibs)
		}
	}

	lists := make([]SourceList, len(e.scorers))
	failures := make([]bool, len(e.scorers))
	g, gctx := errgroup.WithContext(ctx)
	for i, scorer := range e.scorers {
		i, scorer := i, scorer
		if coReadersFailed && scorer.Source() == domain.SourceCollaborative {
			failures[i] = true
			lists[i] = SourceList{Source: scorer.Source()}
			continue
		}
		g.Go(func() error {
			scoreCtx := gctx
			if e.scorerTimeout > 0 {
				var cancel context.CancelFunc
				scoreCtx, cancel = context.WithTimeout(gctx, e.scorerTimeout)
				defer cancel()
			}
			start := time.Now()
			cands, err := scorer.Score(scoreCtx, sc)
			if err != nil {
				// Degrade to zero candidates rather than failing the blend.
				log.Printf("[engine] %s scorer failed for user %d: %v", scorer.Source(), profile.UserID, err)
				metrics.ScorerFailures.WithLabelValues(string(scorer.Source())).Inc()
				failures[i] = true
				cands = nil
			}
			metrics.ScorerDuration.WithLabelValues(string(scorer.Source())).Observe(time.Since(start).Seconds())
			lists[i] = SourceList{Source: scorer.Source(), Candidates: cands}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	allFailed := true
	for _, f := range failures {
		if !f {
			allFailed = false
			break
		}
	}
	if allFailed {
		return nil, domain.ErrNoSources
	}

	return Blend(lists, limit), nil
}
