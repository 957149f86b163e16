package handlers

import (
	"math"
	"net/http"
	"strconv"

	"photo-rating-backend/internal/middleware"
	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// RatingHandler serves the evaluation feed and accepts ratings
type RatingHandler struct {
	ratingService *services.RatingService
	feedService   *services.FeedService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingService *services.RatingService, feedService *services.FeedService) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		feedService:   feedService,
	}
}

type rateRequest struct {
	Score *float64 `json:"score"`
}

// RatePhoto handles POST /api/rate-photo/{id}
func (h *RatingHandler) RatePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	photoID := chi.URLParam(r, "id")

	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, services.ErrInvalidScore, "Rating photo failed")
		return
	}
	if req.Score == nil || *req.Score != math.Trunc(*req.Score) {
		writeServiceError(w, r, services.ErrInvalidScore, "Rating photo failed")
		return
	}
	// out of int range collapses to an invalid score
	score := services.MaxScore + 1
	if math.Abs(*req.Score) <= services.MaxScore {
		score = int(*req.Score)
	}

	points, err := h.ratingService.Rate(ctx, photoID, userID, score)
	if err != nil {
		writeServiceError(w, r, err, "Rating photo failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":     "Photo rated",
		"photoId":     photoID,
		"score":       score,
		"points":      points,
		"raterPoints": points,
	})
}

// PhotosForEvaluation handles GET /api/photos-for-evaluation
func (h *RatingHandler) PhotosForEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	query := r.URL.Query()

	var filter models.CandidateFilter
	if gender := query.Get("gender"); gender != "" {
		filter.Gender = &gender
	}
	var ok bool
	if filter.MinAge, ok = parseAge(query.Get("minAge")); !ok {
		respondError(w, "minAge must be a non-negative integer", http.StatusBadRequest)
		return
	}
	if filter.MaxAge, ok = parseAge(query.Get("maxAge")); !ok {
		respondError(w, "maxAge must be a non-negative integer", http.StatusBadRequest)
		return
	}

	candidates, err := h.feedService.ListCandidates(ctx, userID, filter)
	if err != nil {
		writeServiceError(w, r, err, "Fetching photos failed")
		return
	}

	respondJSON(w, http.StatusOK, candidates)
}

// parseAge returns nil for an empty value
func parseAge(v string) (*int, bool) {
	if v == "" {
		return nil, true
	}
	age, err := strconv.Atoi(v)
	if err != nil || age < 0 {
		return nil, false
	}
	return &age, true
}
