package services

import (
	"context"

	"thrift-swap-backend/internal/models"
)

// ProfileStore persists profiles
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	EnsureExists(ctx context.Context, id string) error
	Upsert(ctx context.Context, p *models.Profile) error
	GetMany(ctx context.Context, ids []string) (map[string]*models.Profile, error)
}

// ItemStore persists clothing items
type ItemStore interface {
	Create(ctx context.Context, item *models.ClothingItem) error
	GetByID(ctx context.Context, id string) (*models.ClothingItem, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.ClothingItem, error)
	ListDiscoverable(ctx context.Context, userID string, filter models.ItemFilter, limit int) ([]*models.ClothingItem, error)
	SetActive(ctx context.Context, id, ownerID string, active bool) (*models.ClothingItem, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// SwipeStore persists swipes with at-most-once semantics per (swiper, item)
type SwipeStore interface {
	Create(ctx context.Context, swipe *models.Swipe) (*models.Swipe, bool, error)
}

// MatchStore persists matches with at-most-once semantics per (item, liker)
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) (*models.Match, bool, error)
	GetForParticipant(ctx context.Context, id, userID string) (*models.Match, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Match, error)
}

// MessageStore persists the append-only conversation log
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByMatch(ctx context.Context, matchID string) ([]*models.Message, error)
}
