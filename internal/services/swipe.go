package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"thrift-swap-backend/internal/metrics"
	"thrift-swap-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SwipeService records swipes and hands likes to the match detector
type SwipeService struct {
	items   ItemStore
	swipes  SwipeStore
	matcher *MatchService
}

// NewSwipeService creates a new swipe service
func NewSwipeService(items ItemStore, swipes SwipeStore, matcher *MatchService) *SwipeService {
	return &SwipeService{
		items:   items,
		swipes:  swipes,
		matcher: matcher,
	}
}

// RecordSwipe stores the caller's decision on an item. A repeated swipe
// stores nothing and the first decision stands. For a like the resulting
// match, new or existing, is returned alongside the swipe.
func (s *SwipeService) RecordSwipe(ctx context.Context, swiperID, itemID string, direction models.Direction) (*models.Swipe, *models.Match, error) {
	if swiperID == "" {
		return nil, nil, ErrUnauthenticated
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, nil, invalid("item_id is required")
	}
	if !direction.IsValid() {
		return nil, nil, invalid("direction must be left or right")
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, nil, ErrNotFound
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if !item.IsActive {
		return nil, nil, ErrNotFound
	}

	swipe, created, err := s.swipes.Create(ctx, &models.Swipe{
		ID:        uuid.New().String(),
		SwiperID:  swiperID,
		ItemID:    itemID,
		Direction: direction,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record swipe: %w", err)
	}
	if created {
		metrics.SwipesTotal.WithLabelValues(string(swipe.Direction)).Inc()
	} else {
		log.Debug().
			Str("user_id", swiperID).
			Str("item_id", itemID).
			Msg("Duplicate swipe ignored")
	}

	match, err := s.matcher.EvaluateForMatch(ctx, swipe)
	if err != nil {
		return nil, nil, err
	}
	return swipe, match, nil
}
