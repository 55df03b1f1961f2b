package services

import (
	"context"
	"strings"

	"thrift-swap-backend/internal/models"
)

// Discovery feed page sizes
const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

// DiscoveryService builds the swipe feed
type DiscoveryService struct {
	items  ItemStore
	images *ImageResolver
}

// NewDiscoveryService creates a new discovery service
func NewDiscoveryService(items ItemStore, images *ImageResolver) *DiscoveryService {
	return &DiscoveryService{
		items:  items,
		images: images,
	}
}

// NextBatch returns up to limit active items the user neither owns nor has
// swiped, newest first. An empty batch means the feed is exhausted.
func (s *DiscoveryService) NextBatch(ctx context.Context, userID string, limit int, filter models.ItemFilter) ([]*models.ClothingItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Size = strings.TrimSpace(filter.Size)

	items, err := s.items.ListDiscoverable(ctx, userID, filter, limit)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.ImageURL = s.images.Resolve(ctx, item.ImageURL)
		if item.Owner != nil {
			item.Owner.AvatarURL = s.images.Resolve(ctx, item.Owner.AvatarURL)
		}
	}
	return items, nil
}
