package handlers

import (
	"net/http"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/models"
	"thrift-swap-backend/internal/services"
)

// MatchHandler lists the caller's matches
type MatchHandler struct {
	matchService *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// MatchesResponse is the body of GET /matches
type MatchesResponse struct {
	Matches []*models.MatchView `json:"matches"`
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	matches, err := h.matchService.ListMatches(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "list matches")
		return
	}

	respondJSON(w, http.StatusOK, MatchesResponse{Matches: matches})
}
