package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"thrift-swap-backend/internal/models"
)

// ProfileService handles profile reads and edits
type ProfileService struct {
	profiles ProfileStore
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// ProfileInput holds the editable profile fields
type ProfileInput struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	AvatarURL   string `json:"avatar_url"`
}

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

// Get returns the caller's profile, creating an empty one on first access
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := s.profiles.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, userID)
}

// Update replaces the caller's profile fields
func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	p := &models.Profile{
		ID:          userID,
		DisplayName: optional(in.DisplayName),
		Bio:         optional(in.Bio),
		Location:    optional(in.Location),
		AvatarURL:   optional(in.AvatarURL),
		UpdatedAt:   time.Now().UTC(),
	}

	checks := []struct {
		field string
		value *string
		max   int
	}{
		{"display_name", p.DisplayName, 80},
		{"bio", p.Bio, 500},
		{"location", p.Location, 120},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := checkLength(c.field, *c.value, c.max); err != nil {
			return nil, err
		}
	}
	if p.AvatarURL != nil {
		if err := ValidateImageRef(*p.AvatarURL); err != nil {
			return nil, err
		}
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}
