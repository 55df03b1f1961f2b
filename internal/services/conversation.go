package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"thrift-swap-backend/internal/metrics"
	"thrift-swap-backend/internal/models"

	"github.com/google/uuid"
)

// MaxMessageLength is the longest message content accepted, in characters
const MaxMessageLength = 4000

// ConversationService reads and appends the message log of a match
type ConversationService struct {
	matches  *MatchService
	messages MessageStore
	notifier Notifier
}

// NewConversationService creates a new conversation service
func NewConversationService(matches *MatchService, messages MessageStore, notifier Notifier) *ConversationService {
	return &ConversationService{
		matches:  matches,
		messages: messages,
		notifier: notifier,
	}
}

// ListMessages returns the match and its messages in posting order
func (s *ConversationService) ListMessages(ctx context.Context, matchID, callerID string) (*models.Match, []*models.Message, error) {
	match, err := s.matches.GetForParticipant(ctx, matchID, callerID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.messages.ListByMatch(ctx, match.ID)
	if err != nil {
		return nil, nil, err
	}
	return match, messages, nil
}

// PostMessage appends trimmed content from callerID to the conversation
func (s *ConversationService) PostMessage(ctx context.Context, matchID, callerID, content string) (*models.Message, error) {
	match, err := s.matches.GetForParticipant(ctx, matchID, callerID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, invalid("content must be at most %d characters", MaxMessageLength)
	}

	msg := &models.Message{
		ID:        uuid.New().String(),
		MatchID:   match.ID,
		SenderID:  callerID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message: %w", err)
	}
	metrics.MessagesPostedTotal.Inc()

	if s.notifier != nil {
		s.notifier.MessagePosted(ctx, match, msg)
	}
	return msg, nil
}
