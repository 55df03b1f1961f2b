package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"thrift-swap-backend/internal/models"

	"github.com/google/uuid"
)

const (
	maxTitleLength       = 120
	maxDescriptionLength = 2000

	// MaxPrice is the largest price a NUMERIC(10, 2) column holds
	MaxPrice = 99999999.99
)

// ItemService handles clothing item business logic
type ItemService struct {
	items  ItemStore
	images *ImageResolver
}

// NewItemService creates a new item service
func NewItemService(items ItemStore, images *ImageResolver) *ItemService {
	return &ItemService{
		items:  items,
		images: images,
	}
}

// CreateItemInput holds the fields of a new listing
type CreateItemInput struct {
	Title       string
	Description string
	Size        string
	Category    string
	Condition   string
	ImageURL    string
	Price       *float64
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func validateChoice(field string, value *string, allowed []string) error {
	if value != nil && !slices.Contains(allowed, *value) {
		return invalid("%s must be one of: %s", field, strings.Join(allowed, ", "))
	}
	return nil
}

func (in CreateItemInput) validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalid("title must be at most %d characters", maxTitleLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) > maxDescriptionLength {
		return invalid("description must be at most %d characters", maxDescriptionLength)
	}
	if err := validateChoice("category", optional(in.Category), models.Categories); err != nil {
		return err
	}
	if err := validateChoice("size", optional(in.Size), models.Sizes); err != nil {
		return err
	}
	if err := validateChoice("condition", optional(in.Condition), models.Conditions); err != nil {
		return err
	}
	if in.Price != nil {
		switch p := *in.Price; {
		case math.IsNaN(p):
			return invalid("price must be a number")
		case p < 0:
			return invalid("price must not be negative")
		case p > MaxPrice:
			return invalid("price must be at most %.2f", MaxPrice)
		}
	}
	if ref := optional(in.ImageURL); ref != nil {
		if err := ValidateImageRef(*ref); err != nil {
			return err
		}
	}
	return nil
}

// Create lists a new item for ownerID
func (s *ItemService) Create(ctx context.Context, ownerID string, in CreateItemInput) (*models.ClothingItem, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := &models.ClothingItem{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: optional(in.Description),
		Size:        optional(in.Size),
		Category:    optional(in.Category),
		Condition:   optional(in.Condition),
		ImageURL:    optional(in.ImageURL),
		Price:       in.Price,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

// ListOwn returns all items listed by ownerID
func (s *ItemService) ListOwn(ctx context.Context, ownerID string) ([]*models.ClothingItem, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.images.ResolveItems(ctx, items)
	return items, nil
}

// Delete removes an item. Items of other users are reported as not found.
func (s *ItemService) Delete(ctx context.Context, ownerID, itemID string) error {
	if ownerID == "" {
		return ErrUnauthenticated
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return invalid("id is required")
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return ErrNotFound
	}
	return s.items.Delete(ctx, itemID, ownerID)
}

// SetActive hides an item from the feed or lists it again
func (s *ItemService) SetActive(ctx context.Context, ownerID, itemID string, active bool) (*models.ClothingItem, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrNotFound
	}
	item, err := s.items.SetActive(ctx, itemID, ownerID, active)
	if err != nil {
		return nil, err
	}
	item.ImageURL = s.images.Resolve(ctx, item.ImageURL)
	return item, nil
}
