package handler

import "github.com/shelfwise/recommendation-service/internal/domain"

type RecommendationResponse struct {
	UserID          int64                     `json:"user_id"`
	Recommendations []domain.Candidate        `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type StoredRecommendationResponse struct {
	UserID          int64                         `json:"user_id"`
	Recommendations []domain.StoredRecommendation `json:"recommendations"`
}

type FeedbackRequest struct {
	BookID int64  `json:"book_id"`
	Action string `json:"action"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
