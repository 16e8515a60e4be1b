package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwise/recommendation-service/internal/domain"
)

// GET /users/{userID}/recommendations
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}

	result, err := h.service.GetRecommendations(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, userID, err)
		return
	}

	resp := RecommendationResponse{
		UserID:          userID,
		Recommendations: result.Recommendations,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /users/{userID}/recommendations/stored
func (h *Handler) GetStoredRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, 10)
	if !ok {
		return
	}

	recs, err := h.service.GetStoredRecommendations(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, userID, err)
		return
	}

	writeJSON(w, http.StatusOK, StoredRecommendationResponse{
		UserID:          userID,
		Recommendations: recs,
	})
}

// POST /users/{userID}/recommendations/feedback
func (h *Handler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_body", "Expected JSON body with book_id and action")
		return
	}

	if err := h.service.TrackInteraction(r.Context(), userID, req.BookID, req.Action); err != nil {
		if errors.Is(err, domain.ErrInvalidAction) {
			writeError(w, http.StatusBadRequest, "invalid_action",
				fmt.Sprintf("Action %q is not recognized", req.Action))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /users/{userID}/recommendations/invalidate
func (h *Handler) InvalidateUserCache(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.InvalidateUserCache(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return 0, false
	}
	return userID, true
}

func parseLimit(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	limit := fallback
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func writeServiceError(w http.ResponseWriter, userID int64, err error) {
	// User not found
	if errors.Is(err, domain.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "user_not_found",
			fmt.Sprintf("User with ID %d does not exist", userID))
		return
	}
	// Every scorer failed
	if errors.Is(err, domain.ErrNoSources) {
		writeError(w, http.StatusServiceUnavailable, "no_sources",
			"No recommendation sources are available right now")
		return
	}
	// Request timeout
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
		return
	}
	if errors.Is(err, domain.ErrInvalidLimit) {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
