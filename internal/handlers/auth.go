package handlers

import (
	"net/http"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles session endpoints backed by the identity provider
type AuthHandler struct {
	identityService *services.IdentityService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identityService *services.IdentityService) *AuthHandler {
	return &AuthHandler{identityService: identityService}
}

// SignOut handles POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token, ok := middleware.BearerToken(r)
	if !ok {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.identityService.SignOut(ctx, token); err != nil {
		respondServiceError(w, r, err, "sign out")
		return
	}

	log.Info().Str("user_id", middleware.GetUserID(ctx)).Msg("User signed out")
	w.WriteHeader(http.StatusNoContent)
}
