package services

import (
	"context"
	"fmt"
	"time"

	"thrift-swap-backend/internal/metrics"
	"thrift-swap-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchService creates matches from likes and lists them for participants
type MatchService struct {
	items    ItemStore
	matches  MatchStore
	profiles ProfileStore
	notifier Notifier
	images   *ImageResolver
}

// NewMatchService creates a new match service
func NewMatchService(items ItemStore, matches MatchStore, profiles ProfileStore, notifier Notifier, images *ImageResolver) *MatchService {
	return &MatchService{
		items:    items,
		matches:  matches,
		profiles: profiles,
		notifier: notifier,
		images:   images,
	}
}

// EvaluateForMatch turns a stored like into a match between the swiper and
// the item's owner. Passes and self-likes yield no match. Repeated calls for
// the same (item, liker) return the one existing match.
func (s *MatchService) EvaluateForMatch(ctx context.Context, swipe *models.Swipe) (*models.Match, error) {
	if swipe == nil || !swipe.Direction.IsLike() {
		return nil, nil
	}

	item, err := s.items.GetByID(ctx, swipe.ItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == swipe.SwiperID {
		return nil, nil
	}

	match, created, err := s.matches.Create(ctx, &models.Match{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		LikerID:   swipe.SwiperID,
		OwnerID:   item.UserID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	s.resolveItem(ctx, match)

	if created {
		metrics.MatchesCreatedTotal.Inc()
		log.Info().
			Str("match_id", match.ID).
			Str("item_id", match.ItemID).
			Str("liker_id", match.LikerID).
			Str("owner_id", match.OwnerID).
			Msg("Match created")
		if s.notifier != nil {
			s.notifier.MatchCreated(ctx, match)
		}
	}
	return match, nil
}

// ListMatches returns every match the user takes part in, each annotated
// with the counterpart's profile summary
func (s *MatchService) ListMatches(ctx context.Context, userID string) ([]*models.MatchView, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	matches, err := s.matches.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Counterpart(userID))
	}
	profiles, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.MatchView, 0, len(matches))
	for _, m := range matches {
		s.resolveItem(ctx, m)
		other := m.Counterpart(userID)
		summary := profiles[other].Summary()
		if summary == nil {
			summary = &models.ProfileSummary{ID: other}
		}
		views = append(views, &models.MatchView{Match: *m, OtherUser: summary})
	}
	return views, nil
}

// GetForParticipant returns the match if userID is its liker or owner and
// ErrNotFound otherwise
func (s *MatchService) GetForParticipant(ctx context.Context, matchID, userID string) (*models.Match, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(matchID); err != nil {
		return nil, ErrNotFound
	}
	match, err := s.matches.GetForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	s.resolveItem(ctx, match)
	return match, nil
}

func (s *MatchService) resolveItem(ctx context.Context, match *models.Match) {
	if match.Item != nil {
		match.Item.ImageURL = s.images.Resolve(ctx, match.Item.ImageURL)
	}
}
