package domain

import "time"

// Source identifies which scorer produced a candidate. The set is closed;
// the blender iterates producers in this order and never dispatches on
// free-form strings.
type Source string

const (
	SourceCollaborative Source = "collaborative"
	SourceContentBased  Source = "content_based"
	SourceTrending      Source = "trending"
	SourceNewRelease    Source = "new_release"
)

// Candidate is a scored recommendation produced within a single generation
// call. Candidates are never persisted directly; only the blended result is.
type Candidate struct {
	BookID  int64    `json:"book_id"`
	Title   string   `json:"title"`
	Genre   string   `json:"genre"`
	Score   float64  `json:"score"`
	Source  Source   `json:"source"`
	Reasons []string `json:"reasons"`
}

// StoredRecommendation is one persisted row of a blended result. Exactly one
// active row exists per (user, book) pair; regeneration overwrites by upsert.
type StoredRecommendation struct {
	UserID      int64      `json:"user_id"`
	BookID      int64      `json:"book_id"`
	Source      Source     `json:"source"`
	Score       float64    `json:"score"`
	Reasons     []string   `json:"reasons"`
	GeneratedAt time.Time  `json:"generated_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`
	Dismissed   bool       `json:"dismissed"`
}

type FeedbackAction string

const (
	ActionClicked        FeedbackAction = "clicked"
	ActionDismissed      FeedbackAction = "dismissed"
	ActionAddedToLibrary FeedbackAction = "added_to_library"
	ActionStartedReading FeedbackAction = "started_reading"
)

// ParseFeedbackAction validates a raw action string against the closed set.
func ParseFeedbackAction(raw string) (FeedbackAction, error) {
	switch FeedbackAction(raw) {
	case ActionClicked, ActionDismissed, ActionAddedToLibrary, ActionStartedReading:
		return FeedbackAction(raw), nil
	}
	return "", ErrInvalidAction
}

type RecommendationResult struct {
	Recommendations []Candidate
	CacheHit        bool
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchUserResult struct {
	UserID          int64       `json:"user_id"`
	Recommendations []Candidate `json:"recommendations,omitempty"`
	Status          BatchStatus `json:"status"`
	Error           string      `json:"error,omitempty"`
	Message         string      `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalUsers int               `json:"total_users"`
	Results    []BatchUserResult `json:"results"`
	Summary    BatchSummary      `json:"summary"`
	Metadata   BatchMeta         `json:"metadata"`
}
