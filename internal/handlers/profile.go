package handlers

import (
	"net/http"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/models"
	"thrift-swap-backend/internal/services"
)

// ProfileHandler handles the caller's profile
type ProfileHandler struct {
	profileService *services.ProfileService
	images         *services.ImageResolver
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, images *services.ImageResolver) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		images:         images,
	}
}

// ProfileResponse wraps a profile
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.profileService.Get(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}
	profile.AvatarURL = h.images.Resolve(ctx, profile.AvatarURL)

	respondJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}

// UpdateProfile handles PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.ProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.profileService.Update(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "update profile")
		return
	}
	profile.AvatarURL = h.images.Resolve(ctx, profile.AvatarURL)

	respondJSON(w, http.StatusOK, ProfileResponse{Profile: profile})
}
