package handlers

import (
	"net/http"

	"thrift-swap-backend/internal/middleware"
	"thrift-swap-backend/internal/models"
	"thrift-swap-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles the conversation of a match
type MessageHandler struct {
	conversationService *services.ConversationService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(conversationService *services.ConversationService) *MessageHandler {
	return &MessageHandler{conversationService: conversationService}
}

// MessagesResponse is the body of GET /messages/{matchId}
type MessagesResponse struct {
	Messages []*models.Message `json:"messages"`
	Match    *models.Match     `json:"match"`
	UserID   string            `json:"userId"`
}

// PostMessageRequest represents the request body for posting a message
type PostMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse wraps a single posted message
type MessageResponse struct {
	Message *models.Message `json:"message"`
}

// ListMessages handles GET /api/v1/messages/{matchId}
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	matchID := chi.URLParam(r, "matchId")

	match, messages, err := h.conversationService.ListMessages(ctx, matchID, userID)
	if err != nil {
		respondServiceError(w, r, err, "list messages")
		return
	}

	respondJSON(w, http.StatusOK, MessagesResponse{
		Messages: messages,
		Match:    match,
		UserID:   userID,
	})
}

// PostMessage handles POST /api/v1/messages/{matchId}
func (h *MessageHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	matchID := chi.URLParam(r, "matchId")

	var req PostMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.conversationService.PostMessage(ctx, matchID, userID, req.Content)
	if err != nil {
		respondServiceError(w, r, err, "post message")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("match_id", matchID).
		Str("message_id", msg.ID).
		Msg("Message posted")

	respondJSON(w, http.StatusCreated, MessageResponse{Message: msg})
}
