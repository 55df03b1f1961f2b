package handlers

import (
	"net/http"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/models"
	"thrift-swap-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SwipeHandler handles swipe requests
type SwipeHandler struct {
	swipeService *services.SwipeService
}

// NewSwipeHandler creates a new swipe handler
func NewSwipeHandler(swipeService *services.SwipeService) *SwipeHandler {
	return &SwipeHandler{swipeService: swipeService}
}

// SwipeRequest represents the request body for recording a swipe
type SwipeRequest struct {
	ItemID    string `json:"item_id"`
	Direction string `json:"direction"`
}

// SwipeResponse carries the match a like produced, or null
type SwipeResponse struct {
	Success bool          `json:"success"`
	Match   *models.Match `json:"match"`
}

// Swipe handles POST /api/v1/swipe
func (h *SwipeHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req SwipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ItemID == "" {
		respondError(w, "item_id is required", http.StatusBadRequest)
		return
	}
	direction, ok := models.ParseDirection(req.Direction)
	if !ok {
		respondError(w, "direction must be left or right", http.StatusBadRequest)
		return
	}

	swipe, match, err := h.swipeService.RecordSwipe(ctx, userID, req.ItemID, direction)
	if err != nil {
		respondServiceError(w, r, err, "record swipe")
		return
	}

	event := log.Info().
		Str("user_id", userID).
		Str("item_id", req.ItemID).
		Str("direction", string(swipe.Direction))
	if match != nil {
		event = event.Str("match_id", match.ID)
	}
	event.Msg("Swipe recorded")

	respondJSON(w, http.StatusOK, SwipeResponse{Success: true, Match: match})
}
