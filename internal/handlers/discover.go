package handlers

import (
	"net/http"
	"strconv"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/models"
	"thrift-swap-backend/internal/services"
)

// DiscoverHandler serves the swipe feed
type DiscoverHandler struct {
	discoveryService *services.DiscoveryService
}

// NewDiscoverHandler creates a new discover handler
func NewDiscoverHandler(discoveryService *services.DiscoveryService) *DiscoverHandler {
	return &DiscoverHandler{discoveryService: discoveryService}
}

// FeedResponse is the body of GET /discover
type FeedResponse struct {
	Items []*models.ClothingItem `json:"items"`
}

// GetFeed handles GET /api/v1/discover
func (h *DiscoverHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	items, err := h.discoveryService.NextBatch(ctx, userID, limit, models.ItemFilter{
		Category: query.Get("category"),
		Size:     query.Get("size"),
	})
	if err != nil {
		respondServiceError(w, r, err, "load discovery feed")
		return
	}

	respondJSON(w, http.StatusOK, FeedResponse{Items: items})
}
